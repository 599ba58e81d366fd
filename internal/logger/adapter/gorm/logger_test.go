package gorm_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	gormlogger "gorm.io/gorm/logger"

	adapter "github.com/confstore/confstore/internal/logger/adapter/gorm"
)

func ctxWithBuffer(t *testing.T) (context.Context, *bytes.Buffer) {
	t.Helper()

	buf := &bytes.Buffer{}
	l := zerolog.New(buf).Level(zerolog.TraceLevel)

	return l.WithContext(context.Background()), buf
}

func query() (string, int64) {
	return "SELECT * FROM `configs`", 2
}

func TestTrace(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	tests := []struct {
		name      string
		level     gormlogger.LogLevel
		threshold time.Duration
		begin     time.Time
		err       error
		want      string
	}{
		{
			name:  "error is logged",
			level: gormlogger.Warn,
			begin: time.Now(),
			err:   errors.New("deadlock"), //nolint:err113
			want:  `"level":"error"`,
		},
		{
			name:  "record not found is not an error",
			level: gormlogger.Warn,
			begin: time.Now(),
			err:   gormlogger.ErrRecordNotFound,
			want:  "",
		},
		{
			name:      "slow query warns",
			level:     gormlogger.Warn,
			threshold: time.Millisecond,
			begin:     time.Now().Add(-time.Second),
			want:      `"slow":true`,
		},
		{
			name:  "fast query is quiet on warn",
			level: gormlogger.Warn,
			begin: time.Now(),
			want:  "",
		},
		{
			name:  "info level traces every statement",
			level: gormlogger.Info,
			begin: time.Now(),
			want:  `"level":"trace"`,
		},
		{
			name:  "silent",
			level: gormlogger.Silent,
			begin: time.Now(),
			err:   errors.New("deadlock"), //nolint:err113
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, buf := ctxWithBuffer(t)

			l := adapter.New(tt.threshold).LogMode(tt.level)
			l.Trace(ctx, tt.begin, query, tt.err)

			if tt.want == "" {
				assert.Empty(t, buf.String())
				return
			}

			assert.Contains(t, buf.String(), tt.want)
			assert.Contains(t, buf.String(), "SELECT * FROM `configs`")
		})
	}
}

func TestMessages(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	ctx, buf := ctxWithBuffer(t)

	l := adapter.New(0).LogMode(gormlogger.Warn)
	l.Info(ctx, "hidden %d", 1)
	assert.Empty(t, buf.String())

	l.Warn(ctx, "shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")

	buf.Reset()
	l.Error(ctx, "failed %s", "migration")
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), "failed migration")
}

package config

// Supported gorm engines.
const (
	EngineMySQL    = "mysql"
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"
)

// DB holds the database configuration settings.
type DB struct {
	Extras       string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	GormEngine   string // mysql, postgres or sqlite
	Path         string // sqlite database file
	MaxOpenConns int
	MaxIdleConns int
}

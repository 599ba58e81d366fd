package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/confstore/confstore/internal/configstore"
	"github.com/confstore/confstore/internal/events"
)

func init() { //nolint: gochecknoinits
	publishCmd.PersistentFlags().StringVar(&publishOwner, "owner", "", "owner (createdBy) of the event")
	_ = publishCmd.MarkPersistentFlagRequired("owner")

	publishCmd.AddCommand(publishSetCmd, publishUnsetCmd)
	rootCmd.AddCommand(publishCmd)
}

var (
	publishOwner string

	// newPublisher opens the event transport for the publish commands.
	newPublisher = func(url string) (events.Publisher, error) {
		return events.NewNATSPublisher(url)
	}

	publishCmd = &cobra.Command{
		Use:   "publish",
		Short: "Publish a replication event to the configured NATS server",
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return loadConfig()
		},
	}

	publishSetCmd = &cobra.Command{
		Use:   "set KEY JSON",
		Short: "Publish config.set with a JSON object or array value",
		Args:  cobra.ExactArgs(2), //nolint:mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := configstore.ParseValue([]byte(args[1]))
			if err != nil {
				return err //nolint:wrapcheck
			}

			if !value.IsStructured() {
				return fmt.Errorf("%w: events only carry objects or arrays", configstore.ErrInvalidValue)
			}

			return publish(cmd, cfg.Events.SetSubject, events.SetEvent{
				Key:       args[0],
				Value:     value,
				CreatedBy: publishOwner,
			})
		},
	}

	publishUnsetCmd = &cobra.Command{
		Use:   "unset [KEY]",
		Short: "Publish config.unset, without KEY every config of the owner is removed",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			event := events.UnsetEvent{CreatedBy: publishOwner}
			if len(args) == 1 {
				event.Key = args[0]
			}

			return publish(cmd, cfg.Events.UnsetSubject, event)
		},
	}
)

func publish(cmd *cobra.Command, subject string, event any) error {
	pub, err := newPublisher(cfg.Events.URL)
	if err != nil {
		return err //nolint:wrapcheck
	}
	defer pub.Close()

	if err = pub.Publish(cmd.Context(), subject, event); err != nil {
		return err //nolint:wrapcheck
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "published %s\n", subject)

	return err //nolint:wrapcheck
}

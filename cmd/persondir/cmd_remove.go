package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/persondir/persondir/internal/metrics"
)

func removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove [person-id]",
		Short: "Remove a person from the directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			st, err := newStore(ctx, logger)
			if err != nil {
				return fmt.Errorf("remove: connecting to store: %w", err)
			}
			defer func() { _ = st.Close(ctx) }()

			if err := st.Delete(ctx, args[0]); err != nil {
				return fmt.Errorf("remove: %w", err)
			}

			metrics.Inc(metrics.PeopleDeleted)
			fmt.Printf("Removed person %s\n", args[0])
			return nil
		},
	}
}

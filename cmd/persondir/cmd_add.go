package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/persondir/persondir/internal/metrics"
	"github.com/persondir/persondir/internal/models"
)

func addCmd() *cobra.Command {
	var (
		age  uint32
		food string
	)

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a person to the directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			st, err := newStore(ctx, logger)
			if err != nil {
				return fmt.Errorf("add: connecting to store: %w", err)
			}
			defer func() { _ = st.Close(ctx) }()

			if err = st.EnsureConstraints(ctx); err != nil {
				return fmt.Errorf("add: ensuring constraints: %w", err)
			}

			// An unset --food flag means the favourite food is unknown,
			// which is not the same as --food "".
			var favourite *string
			if cmd.Flags().Changed("food") {
				favourite = &food
			}

			now := time.Now().UTC()
			rec := models.Record{
				ID: uuid.NewString(),
				Person: models.Person{
					Name:          args[0],
					Age:           age,
					FavouriteFood: favourite,
				},
				Source:    cfg.Directory.DefaultSource,
				CreatedAt: now,
				UpdatedAt: now,
			}

			if err := st.Upsert(ctx, rec); err != nil {
				return fmt.Errorf("add: upserting person: %w", err)
			}

			metrics.Inc(metrics.PeopleStored)
			fmt.Printf("Added person %s (%s, age %d, favourite food %s)\n",
				rec.ID, rec.Person.Name, rec.Person.Age, foodLabel(rec.Person.FavouriteFood))
			return nil
		},
	}

	cmd.Flags().Uint32Var(&age, "age", 0, "age in whole years")
	cmd.Flags().StringVar(&food, "food", "", "favourite food (omit the flag when unknown)")
	_ = cmd.MarkFlagRequired("age")
	return cmd
}

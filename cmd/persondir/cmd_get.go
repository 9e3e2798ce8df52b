package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/persondir/persondir/internal/codec"
)

func getCmd() *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "get [person-id]",
		Short: "Retrieve a single person by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			st, err := newStore(ctx, logger)
			if err != nil {
				return fmt.Errorf("get: connecting to store: %w", err)
			}
			defer func() { _ = st.Close(ctx) }()

			rec, err := st.Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("get: %w", err)
			}

			if outputJSON {
				out, err := codec.MarshalIndent(rec)
				if err != nil {
					return fmt.Errorf("get: marshaling JSON: %w", err)
				}
				fmt.Println(string(out))
				return nil
			}

			fmt.Printf("ID:             %s\n", rec.ID)
			fmt.Printf("Name:           %s\n", rec.Person.Name)
			fmt.Printf("Age:            %d\n", rec.Person.Age)
			fmt.Printf("Favourite food: %s\n", foodLabel(rec.Person.FavouriteFood))
			fmt.Printf("Source:         %s\n", rec.Source)
			fmt.Printf("Created:        %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false, "output as JSON")
	return cmd
}

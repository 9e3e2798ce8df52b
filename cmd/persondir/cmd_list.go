package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	var (
		limit  uint64
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List people in the directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			st, err := newStore(ctx, logger)
			if err != nil {
				return fmt.Errorf("list: connecting to store: %w", err)
			}
			defer func() { _ = st.Close(ctx) }()

			if limit == 0 {
				limit = cfg.Directory.PageSize
			}

			people, next, err := st.List(ctx, limit, cursor)
			if err != nil {
				return fmt.Errorf("list: fetching people: %w", err)
			}

			for i, rec := range people {
				fmt.Printf("[%d] %s (age %d, favourite food %s)\n",
					i+1, rec.Person.Name, rec.Person.Age, foodLabel(rec.Person.FavouriteFood))
				fmt.Printf("    ID: %s | Source: %s\n", rec.ID, rec.Source)
			}

			if len(people) == 0 {
				fmt.Println("No people found.")
			}

			if next != "" {
				fmt.Printf("\nMore results available: rerun with --cursor %s\n", next)
			}

			return nil
		},
	}

	cmd.Flags().Uint64Var(&limit, "limit", 0, "max results (0 = configured page size)")
	cmd.Flags().StringVar(&cursor, "cursor", "", "pagination cursor from a previous run")
	return cmd
}

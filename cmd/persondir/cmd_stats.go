package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show directory statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			st, err := newStore(ctx, logger)
			if err != nil {
				return fmt.Errorf("stats: connecting to store: %w", err)
			}
			defer func() { _ = st.Close(ctx) }()

			stats, err := st.Stats(ctx)
			if err != nil {
				return fmt.Errorf("stats: fetching statistics: %w", err)
			}

			fmt.Printf("Total people:        %d\n", stats.TotalPeople)
			fmt.Printf("With favourite food: %d\n\n", stats.WithFavouriteFood)

			fmt.Println("By age decade:")
			decades := make([]string, 0, len(stats.ByAgeDecade))
			for d := range stats.ByAgeDecade {
				decades = append(decades, d)
			}
			sort.Strings(decades)
			for _, d := range decades {
				fmt.Printf("  %-8s %d\n", d, stats.ByAgeDecade[d])
			}

			return nil
		},
	}
}

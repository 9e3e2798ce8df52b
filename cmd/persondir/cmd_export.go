package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/persondir/persondir/internal/models"
)

// csvRow renders one record as a CSV row. CSV collapses an unknown
// favourite food and an empty one into the same empty cell, and stamps
// created_at in UTC RFC 3339.
func csvRow(rec models.Record) []string {
	var food string
	if rec.Person.FavouriteFood != nil {
		food = *rec.Person.FavouriteFood
	}
	return []string{
		rec.ID,
		rec.Person.Name,
		fmt.Sprint(rec.Person.Age),
		food,
		rec.Source,
		rec.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func exportCmd() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all people to JSON or CSV",
		Long: `Export every person record to a JSON array or CSV.

JSON is the canonical format: an unknown favourite food is emitted as
null, distinct from "". CSV cannot express that distinction — both
render as an empty cell — so use JSON when the output will be parsed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			st, err := newStore(ctx, logger)
			if err != nil {
				return fmt.Errorf("export: connecting to store: %w", err)
			}
			defer func() { _ = st.Close(ctx) }()

			// Paginate through all people.
			var all []models.Record
			cursor := ""
			for {
				people, next, listErr := st.List(ctx, 500, cursor)
				if listErr != nil {
					return fmt.Errorf("export: listing people: %w", listErr)
				}
				all = append(all, people...)
				if next == "" {
					break
				}
				cursor = next
			}

			var w *os.File
			if output == "" || output == "-" {
				w = os.Stdout
			} else {
				w, err = os.Create(output)
				if err != nil {
					return fmt.Errorf("export: creating output file: %w", err)
				}
				defer func() { _ = w.Close() }()
			}

			if all == nil {
				all = []models.Record{}
			}

			switch format {
			case "json":
				body, encErr := newCodec().Marshal(all)
				if encErr != nil {
					return fmt.Errorf("export: encoding JSON: %w", encErr)
				}
				if _, writeErr := w.Write(append(body, '\n')); writeErr != nil {
					return fmt.Errorf("export: writing JSON: %w", writeErr)
				}
			case "csv":
				cw := csv.NewWriter(w)
				headers := []string{"id", "name", "age", "favourite_food", "source", "created_at"}
				if writeErr := cw.Write(headers); writeErr != nil {
					return fmt.Errorf("export: writing CSV header: %w", writeErr)
				}
				for _, rec := range all {
					if writeErr := cw.Write(csvRow(rec)); writeErr != nil {
						return fmt.Errorf("export: writing CSV row: %w", writeErr)
					}
				}
				cw.Flush()
				if flushErr := cw.Error(); flushErr != nil {
					return fmt.Errorf("export: flushing CSV: %w", flushErr)
				}
			default:
				return fmt.Errorf("export: unsupported format %q (use json or csv)", format)
			}

			if output != "" && output != "-" {
				fmt.Fprintf(os.Stderr, "Exported %d people to %s\n", len(all), output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "output format: json or csv")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file path (- for stdout)")
	return cmd
}

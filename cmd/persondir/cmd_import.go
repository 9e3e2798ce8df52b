package main

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/persondir/persondir/internal/metrics"
	"github.com/persondir/persondir/internal/models"
)

// importedPerson is the shape accepted by the import command. Name and Age
// are pointers so a missing field is distinguishable from a zero value;
// a missing favourite_food stays absent rather than becoming "".
type importedPerson struct {
	Name          *string `json:"name"`
	Age           *int64  `json:"age"`
	FavouriteFood *string `json:"favourite_food"`
}

func importCmd() *cobra.Command {
	var (
		filePath string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import people from a JSON or JSONL file",
		Long: `Import people from a JSON array file or JSONL (JSON Lines) file.

The JSON format is a JSON array of person objects with the keys
name, age and favourite_food. The JSONL format is one person object
per line. Omitting favourite_food imports the person with no known
favourite food; "favourite_food": "" imports an explicit empty value.

Use - as the file path to read from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()
			c := newCodec()

			// Open input source.
			var r io.Reader
			if filePath == "" || filePath == "-" {
				r = os.Stdin
			} else {
				f, openErr := os.Open(filePath)
				if openErr != nil {
					return fmt.Errorf("import: opening file: %w", openErr)
				}
				defer func() { _ = f.Close() }()
				r = f
			}

			// Parse people from the chosen format.
			var people []importedPerson
			switch strings.ToLower(format) {
			case "json":
				data, readErr := io.ReadAll(r)
				if readErr != nil {
					return fmt.Errorf("import: reading input: %w", readErr)
				}
				if decErr := c.Unmarshal(data, &people); decErr != nil {
					return fmt.Errorf("import: decoding JSON: %w", decErr)
				}
			case "jsonl":
				scanner := bufio.NewScanner(r)
				for scanner.Scan() {
					line := strings.TrimSpace(scanner.Text())
					if line == "" {
						continue
					}
					var p importedPerson
					if decErr := c.Unmarshal([]byte(line), &p); decErr != nil {
						return fmt.Errorf("import: decoding JSONL line: %w", decErr)
					}
					people = append(people, p)
				}
				if scanErr := scanner.Err(); scanErr != nil {
					return fmt.Errorf("import: reading JSONL: %w", scanErr)
				}
			default:
				return fmt.Errorf("import: unsupported format %q (use json or jsonl)", format)
			}

			st, err := newStore(ctx, logger)
			if err != nil {
				return fmt.Errorf("import: connecting to store: %w", err)
			}
			defer func() { _ = st.Close(ctx) }()

			if err = st.EnsureConstraints(ctx); err != nil {
				return fmt.Errorf("import: ensuring constraints: %w", err)
			}

			// Upsert each person.
			var imported, skipped int
			now := time.Now().UTC()
			for i := range people {
				p := &people[i]

				if p.Name == nil || p.Age == nil {
					skipped++
					continue
				}
				if *p.Age < 0 || *p.Age > math.MaxUint32 {
					skipped++
					continue
				}

				rec := models.Record{
					ID: uuid.NewString(),
					Person: models.Person{
						Name:          *p.Name,
						Age:           uint32(*p.Age),
						FavouriteFood: p.FavouriteFood,
					},
					Source:    "import",
					CreatedAt: now,
					UpdatedAt: now,
				}

				if upsertErr := st.Upsert(ctx, rec); upsertErr != nil {
					return fmt.Errorf("import: upserting person %q: %w", rec.Person.Name, upsertErr)
				}

				metrics.Inc(metrics.PeopleStored)
				imported++
			}

			fmt.Printf("Imported %d people (%d skipped)\n", imported, skipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "-", "path to input file (- for stdin)")
	cmd.Flags().StringVar(&format, "format", "json", "input format: json or jsonl")
	return cmd
}

package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/signsurvey/internal/ingest"
	"github.com/JonMunkholm/signsurvey/internal/store"
)

func newReconstructCmd() *cobra.Command {
	var (
		baseURL string
		limit   int
		compact bool
	)

	cmd := &cobra.Command{
		Use:   "reconstruct FILE",
		Short: "Convert a survey export to JSON photos without a server",
		Long: `Reconstruct reads a survey export and writes the photos it describes as a
JSON array to stdout. Rows that an import would reject are still written and
reported on stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open export: %w", err)
			}
			defer f.Close()

			if limit <= 0 {
				limit = math.MaxInt
			}
			// Preview never saves, so an empty store is enough.
			coord := ingest.NewCoordinator(store.NewMemory(), ingest.Options{PhotoBaseURL: baseURL}, nil)
			preview, err := coord.Preview(cmd.Context(), f, limit)
			if err != nil {
				return fmt.Errorf("%s: %s", args[0], ingest.FormatUserError(err))
			}

			for _, col := range preview.UnrecognizedColumns {
				fmt.Fprintf(cmd.ErrOrStderr(), "ignored column %q\n", col)
			}
			for _, fail := range preview.Failures {
				fmt.Fprintf(cmd.ErrOrStderr(), "row %d (line %d): %s\n", fail.Row, fail.Line, fail.Reason)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			if !compact {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(preview.Photos)
		},
	}

	cmd.Flags().StringVar(&baseURL, "photo-base-url", os.Getenv("PHOTO_BASE_URL"), "derive photo links from photo names")
	cmd.Flags().IntVar(&limit, "limit", 0, "reconstruct at most this many rows (0 for all)")
	cmd.Flags().BoolVar(&compact, "compact", false, "write one line of JSON")
	return cmd
}

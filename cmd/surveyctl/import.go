package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/signsurvey/internal/client"
	"github.com/JonMunkholm/signsurvey/internal/progress"
)

func newImportCmd(root *rootOptions) *cobra.Command {
	var maxFailures int

	cmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Upload survey exports and follow their progress",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(root.server)

			var failedFiles int
			for _, path := range args {
				tally, err := c.UploadPhotos(cmd.Context(), path, func(m progress.Message, t *progress.Tally) {
					printRunning(cmd.ErrOrStderr(), path, m, t)
				})
				if err != nil {
					failedFiles++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
					if errors.Is(err, progress.ErrIncomplete) && tally != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: stopped after %d batches, totals are not final\n", path, tally.Batches())
					}
					continue
				}
				if err := renderSummary(cmd.OutOrStdout(), path, tally, maxFailures); err != nil {
					return err
				}
			}

			if failedFiles > 0 {
				return fmt.Errorf("%d of %d imports did not complete", failedFiles, len(args))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxFailures, "max-failures", 20, "failed rows listed per file (0 for none)")
	return cmd
}

func printRunning(w io.Writer, path string, m progress.Message, t *progress.Tally) {
	if m.Type == progress.TypeComplete {
		return
	}
	cur := t.Current()
	fmt.Fprintf(w, "%s: batch %d, %d rows, %d saved, %d failed\n",
		path, t.Batches(), cur.Rows, cur.Succeeded, cur.Failed)
}

// renderSummary prints the authoritative totals and the first failed rows.
// Failed rows are listed by their zero-based index among the data rows, the
// same numbering reconstruct uses for its "row N" warnings.
func renderSummary(w io.Writer, path string, tally *progress.Tally, maxFailures int) error {
	totals, results, err := tally.Final()
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(path)
	t.AppendHeader(table.Row{"Rows", "Saved", "Failed"})
	t.AppendRow(table.Row{totals.Rows, totals.Succeeded, totals.Failed})
	t.Render()

	if totals.Failed == 0 || maxFailures <= 0 {
		return nil
	}

	f := table.NewWriter()
	f.SetOutputMirror(w)
	f.SetStyle(table.StyleLight)
	f.AppendHeader(table.Row{"Row index", "Reason"})
	listed := 0
	for i, r := range results {
		if r.Success {
			continue
		}
		if listed == maxFailures {
			f.AppendFooter(table.Row{"", fmt.Sprintf("%d more", totals.Failed-listed)})
			break
		}
		f.AppendRow(table.Row{i, r.Reason})
		listed++
	}
	f.Render()
	return nil
}

package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/signsurvey/internal/client"
)

func newGetCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get PHOTO",
		Short: "Print one stored photo as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			photo, err := client.New(root.server).GetPhoto(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(photo)
		},
	}
}

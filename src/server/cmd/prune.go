package cmd

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/veedubyou/stem-separator/src/server/internal/separation/layout"
)

const defaultRetention = 7 * 24 * time.Hour

func newPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete job outputs older than the given age",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return errors.Newf("--older-than must be positive, got %s", olderThan)
			}

			uploadDir, outputDir := storageDirs(ctx.environment)
			storageLayout, err := layout.NewLayout(uploadDir, outputDir)
			if err != nil {
				return err
			}

			pruned, err := storageLayout.Prune(olderThan, time.Now())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, jobID := range pruned {
				fmt.Fprintln(out, jobID)
			}
			fmt.Fprintf(out, "Pruned %d job(s)\n", len(pruned))
			return nil
		},
	}

	pruneCmd.Flags().DurationVar(&olderThan, "older-than", defaultRetention, "Remove job outputs last modified before this long ago")

	return pruneCmd
}

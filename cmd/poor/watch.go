package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/reergymerej/poor-nosql/internal/mirror"
)

var watchInterval time.Duration

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchInterval, "interval", mirror.DefaultSyncInterval, "Minimum time between rebuilds")
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the SQLite mirror in sync as the dataset changes",
	Long: `Watch the dataset file and rebuild the SQLite mirror after each change.

Rebuilds are rate limited by --interval. Runs until interrupted.

Example:
  poor watch --interval 5s`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	db := mustOpenStore()
	defer db.Close()

	m := mustOpenMirror(db.Path())
	w := mirror.NewWatcher(m, db, watchInterval)

	if humanOutput {
		outputHuman("Watching %s (mirror: %s)\n", db.Path(), m.Path())
	}

	err := w.Run(cmd.Context(), func(records int) {
		if humanOutput {
			outputHuman("Synced mirror: %d records\n", records)
		} else {
			outputJSON(SyncResult{Mirror: m.Path(), Records: records, Action: "rebuilt"})
		}
	})
	if err != nil {
		exitWithStoreError(err)
	}
	return nil
}

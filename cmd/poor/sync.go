package main

import (
	"github.com/spf13/cobra"
)

var syncForce bool

// SyncResult is the response for the sync command.
type SyncResult struct {
	Mirror  string `json:"mirror"`
	Records int    `json:"records"`
	Action  string `json:"action"` // "rebuilt" or "skipped"
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "Rebuild even if the mirror is in sync")
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Rebuild the SQLite mirror from the dataset",
	Long: `Rebuild the SQLite mirror used by 'poor sql' from the JSON dataset.

The mirror records the hash of the file it was built from; the rebuild is
skipped when the dataset has not changed.

Example:
  poor sync`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db := mustOpenStore()
	defer db.Close()

	snap, err := db.Snapshot(ctx)
	if err != nil {
		exitWithStoreError(err)
	}

	m := mustOpenMirror(db.Path())
	result := SyncResult{Mirror: m.Path()}

	needsSync, err := m.NeedsSync(ctx, snap.Hash)
	if err != nil {
		exitWithError(ExitError, "checking sync status: %v", err)
	}

	if !needsSync && !syncForce {
		result.Records = len(snap.Dataset)
		result.Action = "skipped"
	} else {
		count, err := m.Sync(ctx, snap)
		if err != nil {
			exitWithError(ExitError, "syncing mirror: %v", err)
		}
		result.Records = count
		result.Action = "rebuilt"
	}

	if humanOutput {
		if result.Action == "skipped" {
			outputHuman("Mirror already in sync (skipped)\n")
		} else {
			outputHuman("Synced mirror: %d records (rebuilt)\n", result.Records)
		}
	} else {
		outputJSON(result)
	}

	return nil
}

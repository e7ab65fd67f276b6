package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/reergymerej/poor-nosql/internal/store"
)

// InfoResult is the response for the info command.
type InfoResult struct {
	*store.Info
	MirrorPath   string    `json:"mirror_path"`
	MirrorInSync bool      `json:"mirror_in_sync"`
	LastSync     time.Time `json:"last_sync,omitempty"`
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show information about the dataset file",
	Long: `Display the dataset path, record count, file size, content hash, the
next id that would be assigned, and the SQLite mirror's sync status.

Example:
  poor info --human`,
	Args: cobra.NoArgs,
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db := mustOpenStore()
	defer db.Close()

	info, err := db.Info(ctx)
	if err != nil {
		exitWithStoreError(err)
	}

	m := mustOpenMirror(db.Path())
	result := InfoResult{Info: info, MirrorPath: m.Path()}
	if needsSync, err := m.NeedsSync(ctx, info.Hash); err == nil {
		result.MirrorInSync = !needsSync
	}
	if last, err := m.LastSync(ctx); err == nil {
		result.LastSync = last
	}

	if humanOutput {
		outputHuman("Store: %s (%s)\n\n", info.Path, formatBytes(info.Size))
		outputHuman("Records: %d\n", info.Records)
		outputHuman("Next ID: %d\n", info.NextID)
		outputHuman("Hash:    %s\n\n", info.Hash)
		outputHuman("Mirror: %s\n", result.MirrorPath)
		if !result.LastSync.IsZero() {
			outputHuman("Last Sync: %s\n", result.LastSync.Format("2006-01-02T15:04:05Z"))
		}
		if result.MirrorInSync {
			outputHuman("Sync Status: In sync\n")
		} else {
			outputHuman("Sync Status: Out of sync (run 'poor sync')\n")
		}
	} else {
		outputJSON(result)
	}

	return nil
}

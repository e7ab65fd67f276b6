package main

import (
	"github.com/spf13/cobra"
)

var sqlCSV bool
var sqlJSONL bool
var sqlSync bool

func init() {
	rootCmd.AddCommand(sqlCmd)
	sqlCmd.Flags().BoolVar(&sqlCSV, "csv", false, "Output CSV")
	sqlCmd.Flags().BoolVar(&sqlJSONL, "jsonl", false, "Output JSONL")
	sqlCmd.Flags().BoolVar(&sqlSync, "sync", false, "Rebuild the mirror first if it is stale")
}

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run read-only SQL against the SQLite mirror",
	Long: `Execute a read-only SQL query against the SQLite mirror of the dataset.

The mirror has one table, records(id INTEGER, data TEXT), where data is the
record as JSON. Use json_extract to reach fields.

Examples:
  poor sql "SELECT id, json_extract(data, '$.foo') AS foo FROM records"
  poor sql --sync "SELECT COUNT(*) AS n FROM records" --csv`,
	Args: cobra.ExactArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db := mustOpenStore()
	defer db.Close()

	info, err := db.Info(ctx)
	if err != nil {
		exitWithStoreError(err)
	}

	m := mustOpenMirror(db.Path())
	needsSync, err := m.NeedsSync(ctx, info.Hash)
	if err != nil {
		exitWithError(ExitError, "checking sync status: %v", err)
	}
	if needsSync {
		if !sqlSync {
			exitWithError(ExitMirrorStale, "mirror not synced, run 'poor sync' first")
		}
		snap, err := db.Snapshot(ctx)
		if err != nil {
			exitWithStoreError(err)
		}
		if _, err := m.Sync(ctx, snap); err != nil {
			exitWithError(ExitError, "syncing mirror: %v", err)
		}
	}

	records, err := m.Query(ctx, args[0])
	if err != nil {
		exitWithError(ExitDataError, "SQL error: %v", err)
	}

	switch {
	case sqlCSV:
		outputCSV(records)
	case sqlJSONL:
		outputJSONL(records)
	case humanOutput:
		outputTable(records)
	default:
		outputJSON(records)
	}

	return nil
}

package main

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var updateFile string

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().StringVarP(&updateFile, "file", "f", "", "Path to a JSON object file")
}

var updateCmd = &cobra.Command{
	Use:   "update <id> [json]",
	Short: "Replace a record",
	Long: `Replace the record stored under id with new data.

This is a replacement, not a merge: fields missing from the new data are
dropped. The id is preserved.

Examples:
  poor update 0 '{"donkey":"face"}'
  poor update 0 --file record.json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runUpdate,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil || id < 0 {
		exitWithError(ExitDataError, "invalid id %q: must be a non-negative integer", args[0])
	}

	var data []byte
	switch {
	case updateFile != "":
		data, err = os.ReadFile(updateFile)
		if err != nil {
			exitWithError(ExitError, "reading file: %v", err)
		}
	case len(args) == 2:
		data = []byte(args[1])
	default:
		exitWithError(ExitError, "no input provided: use inline JSON or --file")
	}

	record, err := parseRecord(data)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	db := mustOpenStore()
	defer db.Close()

	updated, err := db.Update(cmd.Context(), id, record)
	if err != nil {
		exitWithStoreError(err)
	}

	if humanOutput {
		outputHuman("Updated record %d\n", id)
	} else {
		outputJSON(updated)
	}

	return nil
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/reergymerej/poor-nosql/internal/store"
)

var readCSV bool
var readJSONLOut bool

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().BoolVar(&readCSV, "csv", false, "Output CSV")
	readCmd.Flags().BoolVar(&readJSONLOut, "jsonl", false, "Output JSONL")
}

var readCmd = &cobra.Command{
	Use:   "read <id|criteria>",
	Short: "Read records by id or criteria",
	Long: `Read a single record by id, or every record matching a criteria object.

A criteria object maps field names to operator specs. All fields must match.
Supported operators:
  $in   field value equals one of the listed values

Examples:
  poor read 0
  poor read '{"color": {"$in": ["red", "blue"]}}'
  poor read '{}' --csv`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

func runRead(cmd *cobra.Command, args []string) error {
	criteria, err := store.ParseCriteria([]byte(args[0]))
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	db := mustOpenStore()
	defer db.Close()

	records, err := db.Read(cmd.Context(), criteria)
	if err != nil {
		exitWithStoreError(err)
	}

	switch {
	case readCSV:
		outputCSV(records)
	case readJSONLOut:
		outputJSONL(records)
	case humanOutput:
		outputTable(records)
	default:
		// A bare id reads one record, not a list.
		if _, ok := criteria.(store.ID); ok {
			outputJSON(records[0])
		} else {
			outputJSON(records)
		}
	}

	return nil
}

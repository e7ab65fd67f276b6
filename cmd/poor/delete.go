package main

import (
	"github.com/spf13/cobra"

	"github.com/reergymerej/poor-nosql/internal/store"
)

// DeleteResult is the response for the delete command.
type DeleteResult struct {
	Deleted []int `json:"deleted"`
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id|criteria>",
	Short: "Delete records by id or criteria",
	Long: `Delete one record by id, or every record matching a criteria object.

Deleting an absent id is an error. Criteria that match nothing delete nothing.

Examples:
  poor delete 0
  poor delete '{"status": {"$in": ["done"]}}'`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	criteria, err := store.ParseCriteria([]byte(args[0]))
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	db := mustOpenStore()
	defer db.Close()

	removed, err := db.Delete(cmd.Context(), criteria)
	if err != nil {
		exitWithStoreError(err)
	}

	if humanOutput {
		if len(removed) == 1 {
			outputHuman("Deleted 1 record\n")
		} else {
			outputHuman("Deleted %d records\n", len(removed))
		}
	} else {
		outputJSON(DeleteResult{Deleted: removed})
	}

	return nil
}

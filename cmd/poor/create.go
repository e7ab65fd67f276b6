package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

var createFile string
var createStdin bool

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().StringVarP(&createFile, "file", "f", "", "Path to JSON/JSONL file")
	createCmd.Flags().BoolVar(&createStdin, "stdin", false, "Read JSON/JSONL from stdin")
}

var createCmd = &cobra.Command{
	Use:   "create [json]",
	Short: "Create one or more records",
	Long: `Create records and assign each a fresh integer id.

Input may be a single object, an array of objects, or JSONL. A batch is
written to disk once; if any record fails, nothing is written.

Examples:
  # Single record from argument
  poor create '{"foo":"bar"}'

  # A batch
  poor create '[{"a":1},{"a":2}]'

  # From a file or stdin
  poor create --file records.json
  cat records.jsonl | poor create --stdin`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCreate,
}

func runCreate(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error

	switch {
	case createStdin:
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			exitWithError(ExitError, "reading from stdin: %v", err)
		}
	case createFile != "":
		data, err = os.ReadFile(createFile)
		if err != nil {
			exitWithError(ExitError, "reading file: %v", err)
		}
	case len(args) == 1:
		data = []byte(args[0])
	default:
		exitWithError(ExitError, "no input provided: use inline JSON, --file, or --stdin")
	}

	records, err := parseRecords(data)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	db := mustOpenStore()
	defer db.Close()

	created, err := db.Create(cmd.Context(), records...)
	if err != nil {
		exitWithStoreError(err)
	}

	if humanOutput {
		if len(created) == 1 {
			outputHuman("Created 1 record\n")
		} else {
			outputHuman("Created %d records\n", len(created))
		}
		outputTable(created)
	} else {
		outputJSON(created)
	}

	return nil
}

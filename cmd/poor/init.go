package main

import (
	"github.com/spf13/cobra"

	"github.com/reergymerej/poor-nosql/internal/store"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an empty dataset file",
	Long: `Create an empty dataset file ({}) at the configured path.

An existing file is left untouched.

Example:
  poor init --db ./data/db.json`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	path := mustResolveDBPath()

	created, err := store.Init(path)
	if err != nil {
		exitWithError(ExitStorageError, "initializing store: %v", err)
	}

	status := "created"
	if !created {
		status = "exists"
	}

	if humanOutput {
		if created {
			outputHuman("Created %s\n", path)
		} else {
			outputHuman("%s already exists\n", path)
		}
	} else {
		outputJSON(StatusResponse{Status: status, Path: path})
	}

	return nil
}

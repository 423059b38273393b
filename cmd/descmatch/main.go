// Package main is the entry point for the descmatch CLI.
//
// Usage:
//
//	descmatch [flags] <command> [args]
//
// Commands:
//
//	import  - Store a JSON feature file (keypoints + descriptors)
//	list    - List stored feature sets
//	delete  - Remove a stored feature set
//	match   - Match two stored feature sets and print the ranked matches
//	nearest - Find the stored descriptors closest to one query descriptor
//
// A .env file in the working directory may set DESCMATCH_DB and
// DESCMATCH_CONFIG.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/viant/descmatch/cmd/descmatch/commands"
)

func main() {
	_ = godotenv.Load()

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

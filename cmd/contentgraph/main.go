// Command contentgraph is a command line client for GraphQL content delivery
// APIs: it builds queries from definition files, inspects the schema, runs
// queries and serves a local mock API.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errCommandFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

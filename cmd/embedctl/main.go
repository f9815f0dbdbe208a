// Command embedctl calls tools on a JSON-RPC tool server from the shell.
//
//	embedctl generate --normalize "first text" "second text"
//	embedctl call embeddings_get_status --args '{"task_id":"t1"}'
//
// The server endpoints come from a YAML file passed with --config or from
// TOOLCALL_* environment variables.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

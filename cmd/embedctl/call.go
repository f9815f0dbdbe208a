package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aleph-Alpha/embedtools/v1/toolcall"
)

func newCallCmd(opts options) *cobra.Command {
	var rawArgs string

	cmd := &cobra.Command{
		Use:   "call tool",
		Short: "Invoke an arbitrary tool and print its result",
		Long: `Invoke a tool with the JSON object given in --args. Jobs started by the
tool are polled until they finish.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var toolArgs map[string]any
			if err := json.Unmarshal([]byte(rawArgs), &toolArgs); err != nil {
				return fmt.Errorf("--args must be a JSON object: %w", err)
			}

			var client *toolcall.Client
			return run(cmd.Context(), opts, func(ctx context.Context) error {
				result, err := client.Invoke(ctx, args[0], toolArgs)
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), opts.output(), result.Value)
			}, &client)
		},
	}

	cmd.Flags().StringVar(&rawArgs, "args", "{}", "tool arguments as a JSON object")
	return cmd
}

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Aleph-Alpha/embedtools/v1/embedding"
)

type generateOutput struct {
	Embeddings [][]float64 `json:"embeddings" yaml:"embeddings"`
}

func newGenerateCmd(opts options) *cobra.Command {
	var genOpts embedding.GenerateOptions

	cmd := &cobra.Command{
		Use:   "generate [flags] text...",
		Short: "Embed one or more texts",
		Long:  `Embed every argument and print one vector per text, in argument order.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var client *embedding.Client
			return run(cmd.Context(), opts, func(ctx context.Context) error {
				vectors, err := client.Generate(ctx, args, genOpts)
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), opts.output(), generateOutput{Embeddings: vectors})
			}, &client)
		},
	}

	cmd.Flags().BoolVar(&genOpts.Normalize, "normalize", false, "ask the server for unit-length vectors")
	cmd.Flags().BoolVar(&genOpts.UseWorkerPool, "worker-pool", false, "ask the server to use its worker pool")
	return cmd
}

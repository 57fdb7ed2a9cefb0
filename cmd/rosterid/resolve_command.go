package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"rosterid/internal/ingest"
	"rosterid/internal/resolver"
	id "rosterid/pkg/domain"
	"rosterid/pkg/requestcontext"
)

// resolverActor performs every mutation of a batch run.
const resolverActor = "resolver"

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var kindFlag, inputFlag string
	var seasons []int

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a batch of season records read as JSON lines",
		Example: `  rosterid resolve --kind player --input players.jsonl
  cat teams.jsonl | rosterid resolve --kind team --seasons 2023,2024`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := id.ParseEntityKind(kindFlag)
			if err != nil {
				return fmt.Errorf("--kind: %w", err)
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			input, closeInput, err := openInput(cmd, inputFlag)
			if err != nil {
				return err
			}
			defer closeInput()

			runCtx := requestcontext.WithActor(cmd.Context(), resolverActor)
			a, err := buildApp(runCtx, cfg)
			if err != nil {
				return err
			}
			defer a.close()

			r, err := a.resolver()
			if err != nil {
				return err
			}
			report, err := r.Run(runCtx, ingest.NewJSONLinesFeed(input), resolver.Options{Kind: kind, Seasons: seasons})
			if err != nil {
				return err
			}
			return writeJSON(cmd, report)
		},
	}
	cmd.Flags().StringVar(&kindFlag, "kind", "", "Record kind: player or team")
	cmd.Flags().StringVarP(&inputFlag, "input", "i", "-", "JSON lines file, - for stdin")
	cmd.Flags().IntSliceVar(&seasons, "seasons", nil, "Only resolve these seasons")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

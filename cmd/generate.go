package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"sheet_ai_server/internal/api"
	"sheet_ai_server/internal/output"
	"sheet_ai_server/internal/render"
	"sheet_ai_server/internal/types"
)

var outDir string

var generateCmd = &cobra.Command{
	Use:   "generate [prompt]",
	Short: "Generate a single workbook from a prompt and keep it on disk",
	Example: `  sheet-ai-server generate "Create a budget sheet with Income and Expenses columns"
  sheet-ai-server generate --out ./reports "Monthly sales by region with a total row"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := strings.Join(args, " ")
		prompt, err := types.ValidatePrompt(types.GenerationRequest{Prompt: &raw})
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		// Files written here are kept; the store never schedules their removal.
		store, err := output.NewStore(outDir, 0, logger.Named("output"))
		if err != nil {
			return err
		}
		pipeline := api.NewPipeline(newGenerator(cfg, logger), render.NewRenderer(store, logger.Named("render")))

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		file, err := pipeline.Run(ctx, prompt)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return errors.New("generation interrupted")
			}
			return fmt.Errorf("generation failed (%s): %w", types.KindOf(err), err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), file.Path)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory to write the workbook to")
}

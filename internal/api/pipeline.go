package api

import (
	"context"

	"sheet_ai_server/internal/output"
	"sheet_ai_server/internal/types"
)

// SheetGenerator turns a prompt into sheet definitions.
type SheetGenerator interface {
	GenerateSheets(ctx context.Context, prompt string) (*types.GenerationPayload, error)
}

// WorkbookRenderer writes sheet definitions to a spreadsheet file.
type WorkbookRenderer interface {
	Render(payload *types.GenerationPayload) (*output.File, error)
}

// Pipeline is the generate-then-render sequence shared by the HTTP endpoint and the CLI.
type Pipeline struct {
	generator SheetGenerator
	renderer  WorkbookRenderer
}

func NewPipeline(generator SheetGenerator, renderer WorkbookRenderer) *Pipeline {
	return &Pipeline{generator: generator, renderer: renderer}
}

// Run returns the rendered file. Errors are *types.GenerationError values whose Kind tells
// which stage failed.
func (p *Pipeline) Run(ctx context.Context, prompt string) (*output.File, error) {
	payload, err := p.generator.GenerateSheets(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return p.renderer.Render(payload)
}

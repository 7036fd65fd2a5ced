package render

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"sheet_ai_server/internal/output"
	"sheet_ai_server/internal/types"
	"sheet_ai_server/internal/utils"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	defaultSheet  = "Sheet1"
	maxColWidth   = 255
	maxNameDraws  = 10
	maxNameRunes  = 31
	generatedName = "Sheet-"
)

// Renderer writes generated sheet definitions to xlsx files in an output store.
type Renderer struct {
	store  *output.Store
	logger *zap.Logger
}

func NewRenderer(store *output.Store, logger *zap.Logger) *Renderer {
	return &Renderer{store: store, logger: logger}
}

// Render builds a workbook with one worksheet per sheet definition, in order, and saves it
// under a unique name.
func (r *Renderer) Render(payload *types.GenerationPayload) (*output.File, error) {
	if payload == nil || len(payload.Sheets) == 0 {
		return nil, types.NewGenerationError(types.KindRender, errors.New("no sheet definitions to render"))
	}

	wb := excelize.NewFile()
	defer wb.Close()

	names := newSheetNames()
	for i, def := range payload.Sheets {
		name := names.resolve(def.Name)
		if err := addSheet(wb, i, name); err != nil {
			return nil, types.NewGenerationError(types.KindRender, fmt.Errorf("failed to add sheet %q: %w", name, err))
		}
		if err := writeSheet(wb, name, def); err != nil {
			return nil, types.NewGenerationError(types.KindRender, fmt.Errorf("failed to write sheet %q: %w", name, err))
		}
	}

	f, file, err := r.store.Create()
	if err != nil {
		return nil, types.NewGenerationError(types.KindIO, err)
	}
	if err := wb.Write(f); err != nil {
		f.Close()
		os.Remove(file.Path)
		return nil, types.NewGenerationError(types.KindIO, fmt.Errorf("failed to write workbook %s: %w", file.Name, err))
	}
	if err := f.Close(); err != nil {
		os.Remove(file.Path)
		return nil, types.NewGenerationError(types.KindIO, fmt.Errorf("failed to close workbook %s: %w", file.Name, err))
	}

	r.logger.Info("Workbook rendered",
		zap.String("file", file.Name),
		zap.Int("sheets", len(payload.Sheets)),
	)
	return file, nil
}

// addSheet reuses the workbook's default sheet for the first definition.
func addSheet(wb *excelize.File, index int, name string) error {
	if index == 0 {
		if name == defaultSheet {
			return nil
		}
		return wb.SetSheetName(defaultSheet, name)
	}
	_, err := wb.NewSheet(name)
	return err
}

func writeSheet(wb *excelize.File, name string, def types.SheetDefinition) error {
	if len(def.Headers) > 0 {
		headers := def.Headers
		if err := wb.SetSheetRow(name, "A1", &headers); err != nil {
			return fmt.Errorf("header row: %w", err)
		}
		if style, ok := headerStyle(def.HeaderStyle); ok {
			id, err := wb.NewStyle(style)
			if err != nil {
				return fmt.Errorf("header style: %w", err)
			}
			last, _ := excelize.CoordinatesToCellName(len(def.Headers), 1)
			if err := wb.SetCellStyle(name, "A1", last, id); err != nil {
				return fmt.Errorf("header style: %w", err)
			}
		}
	}

	for r, row := range def.Rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if s, ok := value.(string); ok && strings.HasPrefix(s, "=") {
				err = wb.SetCellFormula(name, cell, s[1:])
			} else {
				err = wb.SetCellValue(name, cell, value)
			}
			if err != nil {
				return fmt.Errorf("cell %s: %w", cell, err)
			}
		}
	}

	for c, width := range def.ColumnWidths {
		// zero means "not provided"
		if width <= 0 {
			continue
		}
		if width > maxColWidth {
			width = maxColWidth
		}
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if err := wb.SetColWidth(name, col, col, width); err != nil {
			return fmt.Errorf("column %s width: %w", col, err)
		}
	}
	return nil
}

// sheetNames keeps worksheet names unique within one workbook. Excel compares them case-insensitively.
type sheetNames struct {
	used map[string]bool
}

func newSheetNames() *sheetNames {
	return &sheetNames{used: make(map[string]bool)}
}

// resolve shortens name to Excel's 31-character limit and appends " (n)" to duplicates,
// trimming the base so the suffixed name still fits.
func (n *sheetNames) resolve(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return n.generate()
	}
	candidate := truncateRunes(name, maxNameRunes)
	for i := 2; n.used[strings.ToLower(candidate)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		candidate = truncateRunes(name, maxNameRunes-utf8.RuneCountInString(suffix)) + suffix
	}
	n.used[strings.ToLower(candidate)] = true
	return candidate
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimRight(string([]rune(s)[:n]), " ")
}

func (n *sheetNames) generate() string {
	var name string
	for i := 0; i < maxNameDraws; i++ {
		name = generatedName + utils.RandomID(4)
		if !n.used[strings.ToLower(name)] {
			break
		}
	}
	n.used[strings.ToLower(name)] = true
	return name
}

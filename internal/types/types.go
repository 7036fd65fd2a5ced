package types

import (
	"encoding/json"
	"fmt"
)

// GenerationRequest is the body accepted by POST /api/generate.
type GenerationRequest struct {
	Prompt *string `json:"prompt"`
}

// GenerationPayload represents the structure expected from the LLM.
type GenerationPayload struct {
	Sheets []SheetDefinition `json:"sheets"`
}

// SheetDefinition describes one worksheet of the generated workbook.
type SheetDefinition struct {
	Name         string       `json:"name"`
	Headers      []any        `json:"headers"`
	Rows         [][]any      `json:"rows"`
	HeaderStyle  *HeaderStyle `json:"headerStyle,omitempty"`
	ColumnWidths []float64    `json:"columnWidths,omitempty"`
}

// HeaderStyle is applied to every cell of the header row. Zero fields are left untouched.
type HeaderStyle struct {
	Bold      bool                  `json:"bold"`
	FontColor Color                 `json:"fontColor"`
	FillColor Color                 `json:"fillColor"`
	Border    map[string]BorderEdge `json:"border,omitempty"`
	Alignment *Alignment            `json:"alignment,omitempty"`
}

// BorderEdge is one side of a cell border, e.g. {"style": "thin", "color": {"argb": "FF000000"}}.
type BorderEdge struct {
	Style string `json:"style"`
	Color Color  `json:"color"`
}

// Alignment mirrors the alignment options a model usually emits for header cells.
type Alignment struct {
	Horizontal   string `json:"horizontal"`
	Vertical     string `json:"vertical"`
	WrapText     bool   `json:"wrapText"`
	ShrinkToFit  bool   `json:"shrinkToFit"`
	Indent       int    `json:"indent"`
	TextRotation int    `json:"textRotation"`
}

// Color is an ARGB hex value. It decodes from either "FFFF0000" or {"argb": "FFFF0000"}.
type Color string

func (c *Color) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = Color(s)
		return nil
	}
	var obj struct {
		ARGB string `json:"argb"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("color must be a hex string or {\"argb\": ...}: %w", err)
	}
	*c = Color(obj.ARGB)
	return nil
}

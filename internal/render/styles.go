package render

import (
	"sort"
	"strings"

	"sheet_ai_server/internal/types"

	"github.com/xuri/excelize/v2"
)

// borderStyles maps border style names to excelize's numeric border styles.
var borderStyles = map[string]int{
	"thin":             1,
	"medium":           2,
	"dashed":           3,
	"dotted":           4,
	"thick":            5,
	"double":           6,
	"hair":             7,
	"mediumdashed":     8,
	"dashdot":          9,
	"mediumdashdot":    10,
	"dashdotdot":       11,
	"mediumdashdotdot": 12,
	"slantdashdot":     13,
}

var borderSides = map[string]string{
	"left":         "left",
	"right":        "right",
	"top":          "top",
	"bottom":       "bottom",
	"diagonal":     "diagonalDown",
	"diagonaldown": "diagonalDown",
	"diagonalup":   "diagonalUp",
}

var horizontalAlignments = map[string]string{
	"left":             "left",
	"center":           "center",
	"right":            "right",
	"fill":             "fill",
	"justify":          "justify",
	"centercontinuous": "centerContinuous",
	"distributed":      "distributed",
}

var verticalAlignments = map[string]string{
	"top":         "top",
	"middle":      "center",
	"center":      "center",
	"bottom":      "bottom",
	"justify":     "justify",
	"distributed": "distributed",
}

// headerStyle converts a HeaderStyle into an excelize style. Only the attributes present in hs
// are set; ok is false when nothing would be applied.
func headerStyle(hs *types.HeaderStyle) (style *excelize.Style, ok bool) {
	if hs == nil {
		return nil, false
	}
	style = &excelize.Style{}

	fontColor, hasFontColor := rgb(hs.FontColor)
	if hs.Bold || hasFontColor {
		style.Font = &excelize.Font{Bold: hs.Bold, Color: fontColor}
		ok = true
	}
	if fill, hasFill := rgb(hs.FillColor); hasFill {
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fill}}
		ok = true
	}
	if borders := borders(hs.Border); len(borders) > 0 {
		style.Border = borders
		ok = true
	}
	if a := alignment(hs.Alignment); a != nil {
		style.Alignment = a
		ok = true
	}
	return style, ok
}

func borders(edges map[string]types.BorderEdge) []excelize.Border {
	sides := make([]string, 0, len(edges))
	for side := range edges {
		sides = append(sides, side)
	}
	sort.Strings(sides)

	var out []excelize.Border
	for _, side := range sides {
		edge := edges[side]
		name, ok := borderSides[strings.ToLower(side)]
		if !ok {
			continue
		}
		n, ok := borderStyles[strings.ToLower(edge.Style)]
		if !ok {
			continue
		}
		color, ok := rgb(edge.Color)
		if !ok {
			color = "000000"
		}
		out = append(out, excelize.Border{Type: name, Style: n, Color: color})
	}
	return out
}

func alignment(a *types.Alignment) *excelize.Alignment {
	if a == nil {
		return nil
	}
	out := &excelize.Alignment{
		Horizontal:   horizontalAlignments[strings.ToLower(a.Horizontal)],
		Vertical:     verticalAlignments[strings.ToLower(a.Vertical)],
		WrapText:     a.WrapText,
		ShrinkToFit:  a.ShrinkToFit,
		Indent:       a.Indent,
		TextRotation: a.TextRotation,
	}
	if *out == (excelize.Alignment{}) {
		return nil
	}
	return out
}

// rgb turns an ARGB (or RGB) hex color into the 6-digit form excelize expects.
func rgb(c types.Color) (string, bool) {
	s := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(string(c)), "#"))
	if len(s) == 8 {
		s = s[2:]
	}
	if len(s) != 6 {
		return "", false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789ABCDEF", r) {
			return "", false
		}
	}
	return s, true
}

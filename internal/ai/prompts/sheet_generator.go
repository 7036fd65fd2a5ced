package prompts

import "fmt"

// DefaultLanguage asks the model to answer in the language of the request.
const DefaultLanguage = "the same language as the user's request"

// GetSheetGenerationPrompt returns the system instruction for spreadsheet generation.
func GetSheetGenerationPrompt(language string) string {
	if language == "" {
		language = DefaultLanguage
	}
	return fmt.Sprintf(`You are a professional Excel expert.
Based on the user's description, return ONLY a JSON object in the following format:
{
  "sheets": [
    {
      "name": "Sheet name",
      "headers": ["Header1", "Header2", ...],
      "rows": [
        ["Value1", 123, ...],
        ...
      ],
      "headerStyle": { "bold": true, "fontColor": "FFFF0000", "fillColor": "FFFFFF00" },
      "columnWidths": [20, 15, ...]
    },
    ...
  ]
}
"headerStyle" and "columnWidths" are optional. Colors are ARGB hex values.
A cell value starting with "=" is written as an Excel formula, e.g. "=SUM(B2:B10)".
Write sheet names, headers and text values in %s.
Produce no output other than the JSON (no markdown, no code fences, no explanation).`, language)
}

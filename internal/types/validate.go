package types

import (
	"errors"
	"strings"
)

// ValidatePrompt returns the trimmed prompt, or a validation error if it is missing or blank.
func ValidatePrompt(req GenerationRequest) (string, error) {
	if req.Prompt == nil {
		return "", NewGenerationError(KindValidation, errors.New("missing or invalid parameter: prompt"))
	}
	prompt := strings.TrimSpace(*req.Prompt)
	if prompt == "" {
		return "", NewGenerationError(KindValidation, errors.New("missing or invalid parameter: prompt"))
	}
	return prompt, nil
}

// Validate checks that the payload carries at least one sheet definition.
func (p *GenerationPayload) Validate() error {
	if p == nil || len(p.Sheets) == 0 {
		return NewGenerationError(KindPayload, errors.New("no valid sheet definition found"))
	}
	return nil
}

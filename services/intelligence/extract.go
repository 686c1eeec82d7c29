package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"genzhealth/models"
)

// ExtractJSON returns the first balanced {...} span in text. Braces inside JSON
// string literals do not count toward the balance.
func ExtractJSON(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", ErrNoJSONFound
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("%w: unterminated object starting at offset %d", ErrInvalidPayload, start)
}

var (
	symptomFields = []string{
		"possibleConditions",
		"differentialDiagnosis",
		"recommendations",
		"managementOptions",
		"severity",
		"sources",
	}
	imageFields = []string{
		"findings",
		"interpretation",
		"confidence",
		"recommendations",
		"sources",
	}
	sourceFields = []string{"title", "url"}
)

// ParseSymptomAnalysis extracts and validates the symptom payload embedded in a completion.
func ParseSymptomAnalysis(completion string) (*models.SymptomAnalysis, error) {
	span, err := ExtractJSON(completion)
	if err != nil {
		return nil, err
	}
	var out models.SymptomAnalysis
	if err := decodeRequired([]byte(span), symptomFields, &out); err != nil {
		return nil, err
	}
	if !out.Severity.Valid() {
		return nil, fmt.Errorf("%w: severity %q is not one of low, medium, high", ErrInvalidPayload, out.Severity)
	}
	return &out, nil
}

// ParseImageAnalysis extracts and validates the image payload embedded in a completion.
func ParseImageAnalysis(completion string) (*models.ImageAnalysis, error) {
	span, err := ExtractJSON(completion)
	if err != nil {
		return nil, err
	}
	var out models.ImageAnalysis
	if err := decodeRequired([]byte(span), imageFields, &out); err != nil {
		return nil, err
	}
	if out.Confidence < 0 || out.Confidence > 100 {
		return nil, fmt.Errorf("%w: confidence %v outside 0-100", ErrInvalidPayload, out.Confidence)
	}
	return &out, nil
}

// decodeRequired checks that every required key is present and non-null, that each
// source carries a title and url, and then decodes span into dst.
func decodeRequired(span []byte, required []string, dst interface{}) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(span, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	for _, field := range required {
		if isNull(raw[field]) {
			return fmt.Errorf("%w: missing required field %q", ErrInvalidPayload, field)
		}
	}
	if err := json.Unmarshal(span, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	var sources []map[string]json.RawMessage
	if err := json.Unmarshal(raw["sources"], &sources); err != nil {
		return fmt.Errorf("%w: sources: %v", ErrInvalidPayload, err)
	}
	for i, src := range sources {
		for _, field := range sourceFields {
			if isNull(src[field]) {
				return fmt.Errorf("%w: sources[%d] missing %q", ErrInvalidPayload, i, field)
			}
		}
	}
	return nil
}

func isNull(v json.RawMessage) bool {
	return len(v) == 0 || bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

package ai

import (
	"errors"
	"testing"

	"genzhealth/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fluCompletion = `Here is the result: {"possibleConditions":["flu"],"differentialDiagnosis":[],"recommendations":[],"managementOptions":[],"severity":"low","sources":[]}`

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr error
	}{
		{
			name: "bare object",
			text: `{"a":1}`,
			want: `{"a":1}`,
		},
		{
			name: "object inside prose",
			text: "Sure! Here you go:\n{\"a\":{\"b\":2}}\nLet me know if you need more.",
			want: `{"a":{"b":2}}`,
		},
		{
			name: "markdown fence",
			text: "```json\n{\"a\":[1,2]}\n```",
			want: `{"a":[1,2]}`,
		},
		{
			name: "braces inside strings are ignored",
			text: `result {"note":"use } and { freely","q":"say \"}\""} trailing }`,
			want: `{"note":"use } and { freely","q":"say \"}\""}`,
		},
		{
			name: "first of two objects",
			text: `{"first":true} and {"second":true}`,
			want: `{"first":true}`,
		},
		{
			name:    "no brace at all",
			text:    "I cannot help with that request.",
			wantErr: ErrNoJSONFound,
		},
		{
			name:    "empty text",
			text:    "",
			wantErr: ErrNoJSONFound,
		},
		{
			name:    "unterminated object",
			text:    `here: {"a": [1, 2`,
			wantErr: ErrInvalidPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.text)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSymptomAnalysis(t *testing.T) {
	t.Run("flu completion", func(t *testing.T) {
		got, err := ParseSymptomAnalysis(fluCompletion)
		require.NoError(t, err)
		assert.Equal(t, []string{"flu"}, got.PossibleConditions)
		assert.Equal(t, models.SeverityLow, got.Severity)
	})

	t.Run("full payload equals parsed object", func(t *testing.T) {
		text := `Analysis follows.
{
  "possibleConditions": ["migraine", "tension headache"],
  "differentialDiagnosis": ["cluster headache"],
  "recommendations": ["hydrate"],
  "managementOptions": ["rest in a dark room"],
  "severity": "medium",
  "sources": [{"title": "Headache overview", "url": "https://example.org/headache"}]
}`
		got, err := ParseSymptomAnalysis(text)
		require.NoError(t, err)
		assert.Equal(t, &models.SymptomAnalysis{
			PossibleConditions:    []string{"migraine", "tension headache"},
			DifferentialDiagnosis: []string{"cluster headache"},
			Recommendations:       []string{"hydrate"},
			ManagementOptions:     []string{"rest in a dark room"},
			Severity:              models.SeverityMedium,
			Sources:               []models.Source{{Title: "Headache overview", URL: "https://example.org/headache"}},
		}, got)
	})

	failures := []struct {
		name    string
		text    string
		wantErr error
	}{
		{"no json", "Sorry, I can't do that.", ErrNoJSONFound},
		{"syntax error", `{"possibleConditions": ["flu",], "severity": "low"}`, ErrInvalidPayload},
		{"missing field", `{"possibleConditions":["flu"],"differentialDiagnosis":[],"recommendations":[],"severity":"low","sources":[]}`, ErrInvalidPayload},
		{"null field", `{"possibleConditions":null,"differentialDiagnosis":[],"recommendations":[],"managementOptions":[],"severity":"low","sources":[]}`, ErrInvalidPayload},
		{"wrong type", `{"possibleConditions":"flu","differentialDiagnosis":[],"recommendations":[],"managementOptions":[],"severity":"low","sources":[]}`, ErrInvalidPayload},
		{"unknown severity", `{"possibleConditions":[],"differentialDiagnosis":[],"recommendations":[],"managementOptions":[],"severity":"critical","sources":[]}`, ErrInvalidPayload},
		{"source without url", `{"possibleConditions":[],"differentialDiagnosis":[],"recommendations":[],"managementOptions":[],"severity":"high","sources":[{"title":"x"}]}`, ErrInvalidPayload},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSymptomAnalysis(tt.text)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseSymptomAnalysisErrorsAreDistinct(t *testing.T) {
	_, notFound := ParseSymptomAnalysis("plain text")
	_, invalid := ParseSymptomAnalysis("{not json}")

	assert.True(t, errors.Is(notFound, ErrNoJSONFound))
	assert.False(t, errors.Is(notFound, ErrInvalidPayload))
	assert.True(t, errors.Is(invalid, ErrInvalidPayload))
	assert.False(t, errors.Is(invalid, ErrNoJSONFound))
}

func TestParseImageAnalysis(t *testing.T) {
	valid := `{"findings":["hairline fracture"],"interpretation":"Likely distal radius fracture.","confidence":82,"recommendations":["orthopedic referral"],"sources":[{"title":"Radius fractures","url":"https://example.org/radius"}]}`

	got, err := ParseImageAnalysis("```json\n" + valid + "\n```")
	require.NoError(t, err)
	assert.Equal(t, []string{"hairline fracture"}, got.Findings)
	assert.Equal(t, 82.0, got.Confidence)

	_, err = ParseImageAnalysis(`{"findings":[],"interpretation":"x","confidence":140,"recommendations":[],"sources":[]}`)
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = ParseImageAnalysis(`{"findings":[],"confidence":50,"recommendations":[],"sources":[]}`)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNoPayload, KindOf(ErrNoJSONFound))
	assert.Equal(t, KindInvalidPayload, KindOf(payloadError("p", ErrInvalidPayload)))
	assert.Equal(t, KindRejected, KindOf(&AnalysisError{Kind: KindRejected, StatusCode: 500}))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("other")))

	err := &AnalysisError{Kind: KindTransport, Provider: "p", Err: errors.New("dial tcp")}
	assert.ErrorIs(t, err, ErrTransport)
	assert.NotErrorIs(t, err, ErrRejected)
}

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"genzhealth/models"
)

const (
	ProviderPerplexity = "perplexity"
	perplexityPath     = "/api/perplexity/query-perplexity"
)

var errNoChoices = errors.New("completion envelope has no choices")

// PerplexityRelayClient posts symptom requests to the Perplexity relay.
type PerplexityRelayClient struct {
	endpoint string
	http     *http.Client
}

func NewPerplexityRelayClient(baseURL string, httpClient *http.Client) *PerplexityRelayClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &PerplexityRelayClient{
		endpoint: strings.TrimRight(baseURL, "/") + perplexityPath,
		http:     httpClient,
	}
}

type perplexityRequest struct {
	Symptoms string `json:"symptoms"`
	Age      string `json:"age"`
	Gender   string `json:"gender"`
}

type chatChoice struct {
	Message struct {
		Content *string `json:"content"`
	} `json:"message"`
}

// The relay wraps the provider body in "data"; a bare provider body is also accepted.
type perplexityEnvelope struct {
	Data *struct {
		Choices []chatChoice `json:"choices"`
	} `json:"data"`
	Choices []chatChoice `json:"choices"`
}

func (e perplexityEnvelope) content() (string, error) {
	choices := e.Choices
	if e.Data != nil && len(e.Data.Choices) > 0 {
		choices = e.Data.Choices
	}
	if len(choices) == 0 || choices[0].Message.Content == nil {
		return "", errNoChoices
	}
	return *choices[0].Message.Content, nil
}

func (c *PerplexityRelayClient) AnalyzeSymptoms(ctx context.Context, req models.SymptomRequest) (*models.SymptomAnalysis, error) {
	body, err := postJSON(ctx, c.http, ProviderPerplexity, c.endpoint, perplexityRequest{
		Symptoms: req.Symptoms,
		Age:      req.Age,
		Gender:   req.Gender,
	})
	if err != nil {
		return nil, err
	}

	var envelope perplexityEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &AnalysisError{Kind: KindNoPayload, Provider: ProviderPerplexity, Message: "unreadable completion envelope", Err: err}
	}
	content, err := envelope.content()
	if err != nil {
		return nil, &AnalysisError{Kind: KindNoPayload, Provider: ProviderPerplexity, Err: err}
	}

	analysis, err := ParseSymptomAnalysis(content)
	if err != nil {
		return nil, payloadError(ProviderPerplexity, err)
	}
	return analysis, nil
}

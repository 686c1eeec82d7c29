package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"genzhealth/models"
)

const ProviderGemini = "gemini"

// TextGenerator produces the text of one completion for the given prompt parts.
type TextGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (string, error)
	Close() error
}

// GeminiFactory opens a generator bound to apiKey.
type GeminiFactory func(ctx context.Context, apiKey string) (TextGenerator, error)

type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, ErrGeminiNotConfigured
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.2)
	return &GeminiClient{client: client, model: model}, nil
}

// NewGeminiFactory returns a GeminiFactory for the configured model name.
func NewGeminiFactory(modelName string) GeminiFactory {
	return func(ctx context.Context, apiKey string) (TextGenerator, error) {
		return NewGeminiClient(ctx, apiKey, modelName)
	}
}

func (g *GeminiClient) GenerateContent(ctx context.Context, parts ...genai.Part) (string, error) {
	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", classifyGeminiError(err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &AnalysisError{Kind: KindNoPayload, Provider: ProviderGemini, Err: errNoCandidates}
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	if sb.Len() == 0 {
		return "", &AnalysisError{Kind: KindNoPayload, Provider: ProviderGemini, Err: errNoCandidates}
	}
	return sb.String(), nil
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}

func classifyGeminiError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &AnalysisError{Kind: KindRejected, Provider: ProviderGemini, StatusCode: apiErr.Code, Message: apiErr.Message}
	}
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return &AnalysisError{Kind: KindRejected, Provider: ProviderGemini, Message: "prompt or response blocked", Err: err}
	}
	return &AnalysisError{Kind: KindTransport, Provider: ProviderGemini, Err: err}
}

// GeminiAnalyzer runs symptom and image prompts through a TextGenerator.
type GeminiAnalyzer struct {
	gen TextGenerator
}

func NewGeminiAnalyzer(gen TextGenerator) *GeminiAnalyzer {
	return &GeminiAnalyzer{gen: gen}
}

func (a *GeminiAnalyzer) AnalyzeSymptoms(ctx context.Context, req models.SymptomRequest) (*models.SymptomAnalysis, error) {
	text, err := a.gen.GenerateContent(ctx, genai.Text(buildSymptomPrompt(req)))
	if err != nil {
		return nil, err
	}
	analysis, err := ParseSymptomAnalysis(text)
	if err != nil {
		return nil, payloadError(ProviderGemini, err)
	}
	return analysis, nil
}

func (a *GeminiAnalyzer) AnalyzeImage(ctx context.Context, req models.ImageRequest) (*models.ImageAnalysis, error) {
	text, err := a.gen.GenerateContent(ctx,
		genai.Blob{MIMEType: req.MimeType, Data: req.Data},
		genai.Text(buildImagePrompt(req)),
	)
	if err != nil {
		return nil, err
	}
	analysis, err := ParseImageAnalysis(text)
	if err != nil {
		return nil, payloadError(ProviderGemini, err)
	}
	return analysis, nil
}

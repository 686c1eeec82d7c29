package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"genzhealth/models"
)

const ProviderImageRelay = "gemini-relay"

var errNoCandidates = errors.New("completion envelope has no candidate text")

// ImageRelayClient posts images, as data URLs, to the image analysis relay.
type ImageRelayClient struct {
	endpoint string
	http     *http.Client
}

func NewImageRelayClient(endpoint string, httpClient *http.Client) *ImageRelayClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ImageRelayClient{endpoint: endpoint, http: httpClient}
}

type imageRelayRequest struct {
	ImageType      string `json:"imageType"`
	BodyPart       string `json:"bodyPart"`
	AdditionalInfo string `json:"additionalInfo"`
	ImageData      string `json:"imageData"`
	MimeType       string `json:"mimeType"`
}

type candidateEnvelope struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (e candidateEnvelope) text() (string, error) {
	if len(e.Candidates) == 0 || len(e.Candidates[0].Content.Parts) == 0 {
		return "", errNoCandidates
	}
	t := e.Candidates[0].Content.Parts[0].Text
	if t == nil {
		return "", errNoCandidates
	}
	return *t, nil
}

func (c *ImageRelayClient) AnalyzeImage(ctx context.Context, req models.ImageRequest) (*models.ImageAnalysis, error) {
	body, err := postJSON(ctx, c.http, ProviderImageRelay, c.endpoint, imageRelayRequest{
		ImageType:      req.ImageType,
		BodyPart:       req.BodyPart,
		AdditionalInfo: req.AdditionalInfo,
		ImageData:      EncodeDataURL(req.MimeType, req.Data),
		MimeType:       req.MimeType,
	})
	if err != nil {
		return nil, err
	}

	var envelope candidateEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &AnalysisError{Kind: KindNoPayload, Provider: ProviderImageRelay, Message: "unreadable completion envelope", Err: err}
	}
	text, err := envelope.text()
	if err != nil {
		return nil, &AnalysisError{Kind: KindNoPayload, Provider: ProviderImageRelay, Err: err}
	}

	analysis, err := ParseImageAnalysis(text)
	if err != nil {
		return nil, payloadError(ProviderImageRelay, err)
	}
	return analysis, nil
}

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"
)

// maxResponseBytes caps how much of an upstream body is read.
const maxResponseBytes = 4 << 20

// maxUpstreamMessage is how much of a raw error body is kept for logs.
const maxUpstreamMessage = 200

var errResponseTooLarge = fmt.Errorf("response body exceeds %d bytes", maxResponseBytes)

// postJSON sends exactly one request and returns the raw body of a 2xx response.
// Non-2xx responses fail as KindRejected before the body is looked at for content.
func postJSON(ctx context.Context, client *http.Client, provider, url string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &AnalysisError{Kind: KindTransport, Provider: provider, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &AnalysisError{Kind: KindTransport, Provider: provider, Err: err}
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	tooLarge := len(data) > maxResponseBytes
	if tooLarge {
		data = data[:maxResponseBytes]
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &AnalysisError{
			Kind:       KindRejected,
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Message:    upstreamMessage(data),
		}
	}
	if readErr != nil {
		return nil, &AnalysisError{Kind: KindTransport, Provider: provider, Err: readErr}
	}
	if tooLarge {
		return nil, &AnalysisError{Kind: KindInvalidPayload, Provider: provider, Err: errResponseTooLarge}
	}
	return data, nil
}

// upstreamMessage pulls error.message out of an error body, falling back to the
// trimmed raw text.
func upstreamMessage(body []byte) string {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Error) > 0 {
		var detailed struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(envelope.Error, &detailed) == nil && detailed.Message != "" {
			return detailed.Message
		}
		var plain string
		if json.Unmarshal(envelope.Error, &plain) == nil && plain != "" {
			return plain
		}
	}
	return truncateRunes(strings.TrimSpace(string(body)), maxUpstreamMessage)
}

// truncateRunes cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

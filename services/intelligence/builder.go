package ai

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"

	"genzhealth/models"
)

const minSymptomsLength = 10

// SupportedImageTypes lists the mime types accepted for image analysis.
var SupportedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
	"image/heif": true,
}

// ValidateSymptomRequest normalises req in place and rejects incomplete input.
func ValidateSymptomRequest(req *models.SymptomRequest) error {
	req.Symptoms = strings.TrimSpace(req.Symptoms)
	req.Age = strings.TrimSpace(req.Age)
	req.Gender = strings.TrimSpace(req.Gender)

	if len(req.Symptoms) < minSymptomsLength {
		return &ValidationError{Field: "symptoms", Message: "must be at least 10 characters long"}
	}
	if req.Age == "" {
		return &ValidationError{Field: "age", Message: "is required"}
	}
	age, err := strconv.Atoi(req.Age)
	if err != nil || age < 0 || age > 150 {
		return &ValidationError{Field: "age", Message: "must be a whole number between 0 and 150"}
	}
	if req.Gender == "" {
		return &ValidationError{Field: "gender", Message: "is required"}
	}
	switch req.Model {
	case "":
		req.Model = models.ModelPerplexity
	case models.ModelPerplexity, models.ModelGemini:
	default:
		return &ValidationError{Field: "model", Message: "must be perplexity or gemini"}
	}
	return nil
}

// ValidateImageRequest rejects images the upstreams cannot take. maxBytes <= 0 disables
// the size check.
func ValidateImageRequest(req *models.ImageRequest, maxBytes int64) error {
	req.MimeType = strings.ToLower(strings.TrimSpace(req.MimeType))
	req.BodyPart = strings.TrimSpace(req.BodyPart)
	req.ImageType = strings.TrimSpace(req.ImageType)
	req.AdditionalInfo = strings.TrimSpace(req.AdditionalInfo)

	if !SupportedImageTypes[req.MimeType] {
		return &ValidationError{Field: "mimeType", Message: "unsupported image type"}
	}
	if len(req.Data) == 0 {
		return &ValidationError{Field: "image", Message: "is empty"}
	}
	if maxBytes > 0 && int64(len(req.Data)) > maxBytes {
		return &ValidationError{Field: "image", Message: "is too large"}
	}
	if req.BodyPart == "" {
		return &ValidationError{Field: "bodyPart", Message: "is required"}
	}
	if req.ImageType == "" {
		return &ValidationError{Field: "imageType", Message: "is required"}
	}
	return nil
}

// EncodeDataURL transcodes binary image data into a data URL.
func EncodeDataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

var errBadDataURL = errors.New("malformed data URL")

// DecodeDataURL is the inverse of EncodeDataURL. Only base64 data URLs are accepted.
func DecodeDataURL(dataURL string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", nil, errBadDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errBadDataURL
	}
	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, errBadDataURL
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, errBadDataURL
	}
	return mimeType, data, nil
}

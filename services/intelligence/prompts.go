package ai

import (
	"fmt"
	"strings"

	"genzhealth/models"
)

const symptomPromptTemplate = `As a medical information assistant, analyze the following symptoms for a %s-year-old %s patient:

%s

Respond with a single JSON object using exactly this structure:
{
  "possibleConditions": ["3-5 conditions that could explain the symptoms"],
  "differentialDiagnosis": ["conditions to rule out and how they differ"],
  "recommendations": ["concrete next steps for the patient"],
  "managementOptions": ["self-care or treatment options"],
  "severity": "low" | "medium" | "high",
  "sources": [{"title": "Article title", "url": "URL to reputable medical literature"}]
}
Only return valid JSON.`

const imagePromptTemplate = `As a medical expert, analyze this %s image of the %s.%s
Provide a detailed medical analysis as a single JSON object:
{
  "findings": ["4-6 specific findings visible in the image"],
  "interpretation": "a comprehensive interpretation connecting the findings to a possible diagnosis",
  "confidence": a number between 60 and 95 representing your confidence level,
  "recommendations": ["4-5 specific recommendations or next steps"],
  "sources": [{"title": "Article title", "url": "URL to relevant medical literature"}]
}
Only include what the image supports. Include relevant anatomical markers and be specific about what you can and cannot determine. Only return valid JSON.`

func buildSymptomPrompt(req models.SymptomRequest) string {
	return fmt.Sprintf(symptomPromptTemplate, req.Age, strings.ToLower(req.Gender), req.Symptoms)
}

func buildImagePrompt(req models.ImageRequest) string {
	extra := ""
	if req.AdditionalInfo != "" {
		extra = " Additional information: " + req.AdditionalInfo
	}
	return fmt.Sprintf(imagePromptTemplate, req.ImageType, req.BodyPart, extra)
}

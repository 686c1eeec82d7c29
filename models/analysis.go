package models

import "time"

// Severity is the three-point urgency scale returned by symptom analysis.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// AnalysisModel selects the upstream used for symptom analysis.
type AnalysisModel string

const (
	ModelPerplexity AnalysisModel = "perplexity"
	ModelGemini     AnalysisModel = "gemini"
)

// SymptomRequest is what the symptom form submits.
type SymptomRequest struct {
	Symptoms string        `json:"symptoms" binding:"required"`
	Age      string        `json:"age" binding:"required"`
	Gender   string        `json:"gender" binding:"required"`
	Model    AnalysisModel `json:"model,omitempty"`
}

// ImageRequest carries a medical image plus the metadata the prompt needs.
type ImageRequest struct {
	ImageType      string `json:"imageType"` // modality, e.g. "x-ray", "mri", "skin"
	BodyPart       string `json:"bodyPart"`
	AdditionalInfo string `json:"additionalInfo,omitempty"`
	MimeType       string `json:"mimeType"`
	Data           []byte `json:"-"`
}

// Source is a citation attached to an analysis.
type Source struct {
	Title string `json:"title" bson:"title"`
	URL   string `json:"url" bson:"url"`
}

// SymptomAnalysis is the structured payload embedded in a symptom completion.
type SymptomAnalysis struct {
	PossibleConditions    []string `json:"possibleConditions" bson:"possibleConditions"`
	DifferentialDiagnosis []string `json:"differentialDiagnosis" bson:"differentialDiagnosis"`
	Recommendations       []string `json:"recommendations" bson:"recommendations"`
	ManagementOptions     []string `json:"managementOptions" bson:"managementOptions"`
	Severity              Severity `json:"severity" bson:"severity"`
	Sources               []Source `json:"sources" bson:"sources"`
}

// ImageAnalysis is the structured payload embedded in an image completion.
type ImageAnalysis struct {
	Findings        []string `json:"findings" bson:"findings"`
	Interpretation  string   `json:"interpretation" bson:"interpretation"`
	Confidence      float64  `json:"confidence" bson:"confidence"` // 0-100
	Recommendations []string `json:"recommendations" bson:"recommendations"`
	Sources         []Source `json:"sources" bson:"sources"`
}

// AnalysisKind discriminates AnalysisResult.
type AnalysisKind string

const (
	KindSymptom AnalysisKind = "symptom"
	KindImage   AnalysisKind = "image"
)

// AnalysisResult holds exactly one of Symptom or Image, according to Kind.
type AnalysisResult struct {
	Kind    AnalysisKind     `json:"kind" bson:"kind" binding:"required"`
	Symptom *SymptomAnalysis `json:"symptom,omitempty" bson:"symptom,omitempty"`
	Image   *ImageAnalysis   `json:"image,omitempty" bson:"image,omitempty"`
}

// Valid reports whether the union is consistent with its discriminator.
func (r AnalysisResult) Valid() bool {
	switch r.Kind {
	case KindSymptom:
		return r.Symptom != nil && r.Image == nil
	case KindImage:
		return r.Image != nil && r.Symptom == nil
	}
	return false
}

// SavedResult is an analysis the user chose to keep.
type SavedResult struct {
	ID      string         `json:"id" bson:"id"`
	UserID  string         `json:"userId" bson:"userId"`
	Result  AnalysisResult `json:"result" bson:"result"`
	SavedAt time.Time      `json:"savedAt" bson:"savedAt"`
}

package ai

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	analysisRepo "genzhealth/database/repository/analysis"
	"genzhealth/metrics"
	"genzhealth/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AIService is everything the analysis and settings handlers need.
type AIService interface {
	AnalyzeSymptoms(ctx context.Context, userID string, req models.SymptomRequest) (*models.AnalysisResult, error)
	AnalyzeImage(ctx context.Context, userID string, req models.ImageRequest) (*models.AnalysisResult, error)
	SaveResult(ctx context.Context, userID string, result models.AnalysisResult) (*models.SavedResult, error)
	LastResult(ctx context.Context, userID string) (*models.SavedResult, error)
	ListSaved(ctx context.Context, userID string) ([]models.SavedResult, error)

	SetAPIKey(ctx context.Context, userID, apiKey string) error
	GetAPIKey(ctx context.Context, userID string) (string, error)
	ClearAPIKey(ctx context.Context, userID string) error
}

type SymptomAnalyzer interface {
	AnalyzeSymptoms(ctx context.Context, req models.SymptomRequest) (*models.SymptomAnalysis, error)
}

type ImageAnalyzer interface {
	AnalyzeImage(ctx context.Context, req models.ImageRequest) (*models.ImageAnalysis, error)
}

// PlanResolver reports how many analyses a user may keep; negative means unlimited.
type PlanResolver interface {
	SavedAnalysesLimit(ctx context.Context, userID string) (int, error)
}

type ResultCache interface {
	Get(ctx context.Context, userID string) (*models.SavedResult, error)
	Set(ctx context.Context, saved models.SavedResult) error
	Clear(ctx context.Context, userID string) error
}

type APIKeyVault interface {
	SetAPIKey(ctx context.Context, userID, apiKey string) error
	GetAPIKey(ctx context.Context, userID string) (string, error)
	ClearAPIKey(ctx context.Context, userID string) error
}

// ServiceDeps wires DefaultAIService. ImageRelay may be nil, in which case images go
// straight to Gemini.
type ServiceDeps struct {
	SymptomRelay    SymptomAnalyzer
	ImageRelay      ImageAnalyzer
	Gemini          GeminiFactory
	ServerGeminiKey string
	Results         ResultCache
	History         analysisRepo.SavedResultRepository
	Keys            APIKeyVault
	Plans           PlanResolver
	MaxImageBytes   int64
	Logger          *zap.Logger
}

type DefaultAIService struct {
	deps  ServiceDeps
	now   func() time.Time
	saves userLocks
}

// userLocks hands out one mutex per user id and forgets it once nobody holds it.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	sync.Mutex
	refs int
}

func (l *userLocks) lock(userID string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*userLock)
	}
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.Lock()
	return func() {
		ul.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}

func NewDefaultAIService(deps ServiceDeps) *DefaultAIService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &DefaultAIService{deps: deps, now: time.Now}
}

func (s *DefaultAIService) AnalyzeSymptoms(ctx context.Context, userID string, req models.SymptomRequest) (*models.AnalysisResult, error) {
	if err := ValidateSymptomRequest(&req); err != nil {
		return nil, err
	}

	provider := ProviderPerplexity
	analyzer := s.deps.SymptomRelay
	if req.Model == models.ModelGemini {
		provider = ProviderGemini
		gen, err := s.openGemini(ctx, userID)
		if err != nil {
			return nil, err
		}
		defer gen.Close()
		analyzer = NewGeminiAnalyzer(gen)
	}

	start := time.Now()
	analysis, err := analyzer.AnalyzeSymptoms(ctx, req)
	s.observe(models.KindSymptom, provider, start, err)
	if err != nil {
		s.deps.Logger.Warn("Symptom analysis failed",
			zap.String("user_id", userID),
			zap.String("provider", provider),
			zap.String("kind", string(KindOf(err))),
			zap.Error(err))
		return nil, err
	}
	return &models.AnalysisResult{Kind: models.KindSymptom, Symptom: analysis}, nil
}

func (s *DefaultAIService) AnalyzeImage(ctx context.Context, userID string, req models.ImageRequest) (*models.AnalysisResult, error) {
	if err := ValidateImageRequest(&req, s.deps.MaxImageBytes); err != nil {
		return nil, err
	}

	provider := ProviderImageRelay
	analyzer := s.deps.ImageRelay
	if analyzer == nil {
		provider = ProviderGemini
		gen, err := s.openGemini(ctx, userID)
		if err != nil {
			return nil, err
		}
		defer gen.Close()
		analyzer = NewGeminiAnalyzer(gen)
	}

	start := time.Now()
	analysis, err := analyzer.AnalyzeImage(ctx, req)
	s.observe(models.KindImage, provider, start, err)
	if err != nil {
		s.deps.Logger.Warn("Image analysis failed",
			zap.String("user_id", userID),
			zap.String("provider", provider),
			zap.String("kind", string(KindOf(err))),
			zap.Error(err))
		return nil, err
	}
	return &models.AnalysisResult{Kind: models.KindImage, Image: analysis}, nil
}

// openGemini prefers the user's own key and falls back to the server key.
func (s *DefaultAIService) openGemini(ctx context.Context, userID string) (TextGenerator, error) {
	if s.deps.Gemini == nil {
		return nil, ErrGeminiNotConfigured
	}
	apiKey := s.deps.ServerGeminiKey
	if s.deps.Keys != nil && userID != "" {
		userKey, err := s.deps.Keys.GetAPIKey(ctx, userID)
		if err != nil {
			s.deps.Logger.Warn("Could not read user API key, using server key",
				zap.String("user_id", userID), zap.Error(err))
		} else if userKey != "" {
			apiKey = userKey
		}
	}
	if apiKey == "" {
		return nil, ErrGeminiNotConfigured
	}
	return s.deps.Gemini(ctx, apiKey)
}

func (s *DefaultAIService) observe(kind models.AnalysisKind, provider string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = string(KindOf(err))
		if outcome == "" {
			outcome = "error"
		}
	}
	metrics.AnalysisRequestsTotal.WithLabelValues(string(kind), provider, outcome).Inc()
	metrics.AnalysisDurationSeconds.WithLabelValues(string(kind), provider).Observe(time.Since(start).Seconds())
}

// SaveResult stores result in the user's history and as their last result.
// Saves for one user are serialized inside this process so the plan limit check
// and the insert cannot interleave. Replicas sharing a database can still race.
func (s *DefaultAIService) SaveResult(ctx context.Context, userID string, result models.AnalysisResult) (*models.SavedResult, error) {
	if !result.Valid() {
		return nil, &ValidationError{Field: "result", Message: "must hold exactly one analysis matching its kind"}
	}

	unlock := s.saves.lock(userID)
	defer unlock()

	if s.deps.Plans != nil && s.deps.History != nil {
		limit, err := s.deps.Plans.SavedAnalysesLimit(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("resolve plan: %w", err)
		}
		if limit >= 0 {
			count, err := s.deps.History.CountByUser(ctx, userID)
			if err != nil {
				return nil, fmt.Errorf("count saved analyses: %w", err)
			}
			if count >= int64(limit) {
				return nil, ErrSaveLimitReached
			}
		}
	}

	saved := models.SavedResult{
		ID:      uuid.New().String(),
		UserID:  userID,
		Result:  result,
		SavedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	if s.deps.History == nil {
		if err := s.deps.Results.Set(ctx, saved); err != nil {
			return nil, fmt.Errorf("cache last analysis: %w", err)
		}
		return &saved, nil
	}

	if _, err := s.deps.History.Create(ctx, saved); err != nil {
		return nil, fmt.Errorf("store saved analysis: %w", err)
	}
	// History is authoritative once the row exists. A failed cache write drops the
	// stale entry so LastResult falls back to history.
	if err := s.deps.Results.Set(ctx, saved); err != nil {
		s.deps.Logger.Warn("Failed to cache last analysis",
			zap.String("userID", userID), zap.String("resultID", saved.ID), zap.Error(err))
		if clearErr := s.deps.Results.Clear(ctx, userID); clearErr != nil {
			s.deps.Logger.Error("Failed to drop stale cached analysis",
				zap.String("userID", userID), zap.Error(clearErr))
		}
	}
	return &saved, nil
}

func (s *DefaultAIService) LastResult(ctx context.Context, userID string) (*models.SavedResult, error) {
	saved, err := s.deps.Results.Get(ctx, userID)
	if !errors.Is(err, ErrNoSavedResult) || s.deps.History == nil {
		return saved, err
	}
	// Cache miss or expiry: fall back to the newest history entry.
	history, err := s.deps.History.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, ErrNoSavedResult
	}
	return &history[0], nil
}

func (s *DefaultAIService) ListSaved(ctx context.Context, userID string) ([]models.SavedResult, error) {
	if s.deps.History == nil {
		saved, err := s.deps.Results.Get(ctx, userID)
		if errors.Is(err, ErrNoSavedResult) {
			return []models.SavedResult{}, nil
		}
		if err != nil {
			return nil, err
		}
		return []models.SavedResult{*saved}, nil
	}
	return s.deps.History.ListByUser(ctx, userID)
}

func (s *DefaultAIService) SetAPIKey(ctx context.Context, userID, apiKey string) error {
	return s.deps.Keys.SetAPIKey(ctx, userID, apiKey)
}

func (s *DefaultAIService) GetAPIKey(ctx context.Context, userID string) (string, error) {
	return s.deps.Keys.GetAPIKey(ctx, userID)
}

func (s *DefaultAIService) ClearAPIKey(ctx context.Context, userID string) error {
	return s.deps.Keys.ClearAPIKey(ctx, userID)
}

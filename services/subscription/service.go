package subscription

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	subscriptionRepo "genzhealth/database/repository/subscription"
	"genzhealth/metrics"
	"genzhealth/models"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrUnknownPlan      = errors.New("unknown plan")
	ErrInvalidCycle     = errors.New("billing cycle must be monthly or yearly")
	ErrFreePlan         = errors.New("the free plan cannot be purchased")
	ErrInvalidTxHash    = errors.New("invalid transaction hash")
	ErrInvalidWallet    = errors.New("invalid wallet address")
	ErrPaymentReused    = errors.New("transaction was already used for a subscription")
	ErrPaymentsDisabled = errors.New("on-chain payments are not configured")
)

type Service struct {
	repo     subscriptionRepo.SubscriptionRepository
	verifier PaymentVerifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires subscriptions. verifier may be nil, in which case payments are refused.
func NewService(repo subscriptionRepo.SubscriptionRepository, verifier PaymentVerifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, verifier: verifier, logger: logger, now: time.Now}
}

func (s *Service) Plans() []models.Plan {
	return Plans()
}

// ConfirmPayment verifies the transaction behind conf and records the subscription.
func (s *Service) ConfirmPayment(ctx context.Context, userID string, conf models.PaymentConfirmation) (*models.Subscription, error) {
	plan, ok := PlanByID(conf.PlanID)
	if !ok {
		return nil, ErrUnknownPlan
	}
	if conf.Cycle == "" {
		conf.Cycle = models.CycleMonthly
	}
	if !conf.Cycle.Valid() {
		return nil, ErrInvalidCycle
	}
	if plan.IsFree() {
		return nil, ErrFreePlan
	}
	hash, err := parseTxHash(conf.TxHash)
	if err != nil {
		return nil, err
	}
	if !ethcommon.IsHexAddress(conf.WalletAddress) {
		return nil, ErrInvalidWallet
	}
	if s.verifier == nil {
		return nil, ErrPaymentsDisabled
	}

	existing, err := s.repo.GetByTxHash(ctx, hash.Hex())
	if err != nil {
		return nil, fmt.Errorf("lookup transaction: %w", err)
	}
	if existing != nil {
		s.record(plan.ID, "reused")
		return nil, ErrPaymentReused
	}

	price := ToWei(plan.Price(conf.Cycle))
	payment, err := s.verifier.Verify(ctx, hash, ethcommon.HexToAddress(conf.WalletAddress), price)
	if err != nil {
		s.record(plan.ID, "rejected")
		s.logger.Warn("Payment verification failed",
			zap.String("user_id", userID),
			zap.String("plan", plan.ID),
			zap.String("tx_hash", hash.Hex()),
			zap.Error(err))
		return nil, err
	}

	start := s.now().UTC()
	sub := models.Subscription{
		ID:            uuid.New().String(),
		UserID:        userID,
		PlanID:        plan.ID,
		Cycle:         conf.Cycle,
		TxHash:        hash.Hex(),
		WalletAddress: payment.From.Hex(),
		AmountWei:     payment.Value.String(),
		StartsAt:      start,
		ExpiresAt:     periodEnd(start, conf.Cycle),
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		if errors.Is(err, subscriptionRepo.ErrDuplicateTransaction) {
			s.record(plan.ID, "reused")
			return nil, ErrPaymentReused
		}
		return nil, fmt.Errorf("store subscription: %w", err)
	}

	s.record(plan.ID, "confirmed")
	s.logger.Info("Subscription activated",
		zap.String("user_id", userID),
		zap.String("plan", plan.ID),
		zap.String("cycle", string(conf.Cycle)),
		zap.String("amount_eth", FromWei(payment.Value).String()))
	return &sub, nil
}

// ActivePlan returns the user's current plan, Free when nothing is active.
func (s *Service) ActivePlan(ctx context.Context, userID string) (models.Plan, *models.Subscription, error) {
	sub, err := s.repo.ActiveForUser(ctx, userID, s.now().UTC())
	if err != nil {
		return models.Plan{}, nil, err
	}
	if sub == nil {
		return FreePlan(), nil, nil
	}
	plan, ok := PlanByID(sub.PlanID)
	if !ok {
		s.logger.Warn("Subscription references a retired plan", zap.String("plan", sub.PlanID))
		return FreePlan(), nil, nil
	}
	return plan, sub, nil
}

// SavedAnalysesLimit reports the active plan's limit on kept analyses.
func (s *Service) SavedAnalysesLimit(ctx context.Context, userID string) (int, error) {
	plan, _, err := s.ActivePlan(ctx, userID)
	if err != nil {
		return 0, err
	}
	return plan.SavedAnalysesLimit, nil
}

func (s *Service) record(plan, outcome string) {
	metrics.PaymentsTotal.WithLabelValues(plan, outcome).Inc()
}

func parseTxHash(raw string) (ethcommon.Hash, error) {
	raw = strings.TrimSpace(raw)
	b, err := hexutil.Decode(raw)
	if err != nil || len(b) != ethcommon.HashLength {
		return ethcommon.Hash{}, ErrInvalidTxHash
	}
	return ethcommon.BytesToHash(b), nil
}

func periodEnd(start time.Time, cycle models.BillingCycle) time.Time {
	if cycle == models.CycleYearly {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}

package handlers

import (
	"context"
	"errors"
	"net/http"

	"genzhealth/middleware"
	"genzhealth/models"
	"genzhealth/services/subscription"
	"genzhealth/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SubscriptionService is what the subscription endpoints need from subscription.Service.
type SubscriptionService interface {
	Plans() []models.Plan
	ConfirmPayment(ctx context.Context, userID string, conf models.PaymentConfirmation) (*models.Subscription, error)
	ActivePlan(ctx context.Context, userID string) (models.Plan, *models.Subscription, error)
}

type SubscriptionHandler struct {
	Service SubscriptionService
}

func NewSubscriptionHandler(svc SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{Service: svc}
}

type planView struct {
	models.Plan
	DiscountPercentage int64 `json:"discountPercentage"`
}

func (h *SubscriptionHandler) ListPlansHandler(c *gin.Context) {
	plans := h.Service.Plans()
	views := make([]planView, 0, len(plans))
	for _, p := range plans {
		views = append(views, planView{
			Plan:               p,
			DiscountPercentage: subscription.DiscountPercentage(p.MonthlyPrice, p.YearlyPrice),
		})
	}
	c.JSON(http.StatusOK, gin.H{"plans": views})
}

func (h *SubscriptionHandler) ConfirmPaymentHandler(c *gin.Context) {
	var conf models.PaymentConfirmation
	if err := c.ShouldBindJSON(&conf); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	// The wallet that signed in is the default payer.
	if conf.WalletAddress == "" {
		if sess, ok := middleware.SessionFrom(c); ok {
			conf.WalletAddress = sess.WalletAddress
		}
	}

	sub, err := h.Service.ConfirmPayment(c.Request.Context(), currentUserID(c), conf)
	if err != nil {
		status, msg := paymentErrorStatus(err)
		if status == http.StatusInternalServerError {
			getLogger(c).Error("Payment confirmation failed", zap.Error(err))
			utils.JSONError(c, status, msg, "")
			return
		}
		utils.JSONError(c, status, msg, err.Error())
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func paymentErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, subscription.ErrUnknownPlan),
		errors.Is(err, subscription.ErrInvalidCycle),
		errors.Is(err, subscription.ErrFreePlan),
		errors.Is(err, subscription.ErrInvalidTxHash),
		errors.Is(err, subscription.ErrInvalidWallet):
		return http.StatusBadRequest, "Invalid payment confirmation"
	case errors.Is(err, subscription.ErrTxPending):
		return http.StatusAccepted, "Transaction is not mined yet, try again shortly"
	case errors.Is(err, subscription.ErrPaymentReused):
		return http.StatusConflict, "Transaction was already used"
	case errors.Is(err, subscription.ErrTxNotFound),
		errors.Is(err, subscription.ErrTxFailed),
		errors.Is(err, subscription.ErrWrongRecipient),
		errors.Is(err, subscription.ErrSenderMismatch),
		errors.Is(err, subscription.ErrInsufficientAmount):
		return http.StatusPaymentRequired, "Payment could not be verified"
	case errors.Is(err, subscription.ErrPaymentsDisabled):
		return http.StatusServiceUnavailable, "Payments are currently unavailable"
	}
	return http.StatusInternalServerError, "Failed to confirm payment"
}

func (h *SubscriptionHandler) ActivePlanHandler(c *gin.Context) {
	plan, sub, err := h.Service.ActivePlan(c.Request.Context(), currentUserID(c))
	if err != nil {
		getLogger(c).Error("Failed to resolve active plan", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to load subscription", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": plan, "subscription": sub})
}

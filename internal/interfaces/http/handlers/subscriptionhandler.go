package handlers

import (
	"github.com/gin-gonic/gin"

	"cadence/internal/application/subscription/usecases"
	"cadence/internal/interfaces/http/middleware"
	"cadence/internal/shared/errors"
	"cadence/internal/shared/id"
	"cadence/internal/shared/logger"
	"cadence/internal/shared/utils"
)

type SubscriptionHandler struct {
	subscribeUC   *usecases.SubscribeUseCase
	upgradePlanUC *usecases.UpgradePlanUseCase
	cancelUC      *usecases.CancelSubscriptionUseCase
	reactivateUC  *usecases.ReactivateSubscriptionUseCase
	getUC         *usecases.GetSubscriptionUseCase
	getActiveUC   *usecases.GetActiveSubscriptionUseCase
	getHistoryUC  *usecases.GetTransitionHistoryUseCase
	logger        logger.Interface
}

func NewSubscriptionHandler(
	subscribeUC *usecases.SubscribeUseCase,
	upgradePlanUC *usecases.UpgradePlanUseCase,
	cancelUC *usecases.CancelSubscriptionUseCase,
	reactivateUC *usecases.ReactivateSubscriptionUseCase,
	getUC *usecases.GetSubscriptionUseCase,
	getActiveUC *usecases.GetActiveSubscriptionUseCase,
	getHistoryUC *usecases.GetTransitionHistoryUseCase,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscribeUC:   subscribeUC,
		upgradePlanUC: upgradePlanUC,
		cancelUC:      cancelUC,
		reactivateUC:  reactivateUC,
		getUC:         getUC,
		getActiveUC:   getActiveUC,
		getHistoryUC:  getHistoryUC,
		logger:        logger.NewLogger(),
	}
}

type SubscribeRequest struct {
	PlanID string `json:"plan_id" binding:"required"`
}

type ChangePlanRequest struct {
	PlanID string `json:"plan_id" binding:"required"`
}

type CancelRequest struct {
	Reason string `json:"reason" binding:"max=255"`
}

func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for subscribe", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := usecases.SubscribeCommand{
		TenantID: middleware.CurrentTenantID(c),
		UserID:   middleware.CurrentUserID(c),
	}
	if !bindPlanRefValue(c, req.PlanID, &cmd.PlanID, &cmd.PlanSID) {
		return
	}

	created, err := h.subscribeUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, toSubscriptionDTO(created), "Subscription created successfully")
}

func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	query := usecases.GetSubscriptionQuery{TenantID: middleware.CurrentTenantID(c)}
	if !bindSubscriptionRef(c, &query.SubscriptionID, &query.SubscriptionSID) {
		return
	}

	sub, err := h.getUC.Execute(c.Request.Context(), query)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, toSubscriptionDTO(sub))
}

// GetActiveSubscription returns the caller's live subscription, or 404 when
// none exists.
func (h *SubscriptionHandler) GetActiveSubscription(c *gin.Context) {
	sub, err := h.getActiveUC.Execute(c.Request.Context(), usecases.GetActiveSubscriptionQuery{
		TenantID: middleware.CurrentTenantID(c),
		UserID:   middleware.CurrentUserID(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if sub == nil {
		utils.ErrorResponseWithError(c, errors.NewNotFoundError("no live subscription"))
		return
	}

	utils.OKResponse(c, toSubscriptionDTO(sub))
}

func (h *SubscriptionHandler) ChangePlan(c *gin.Context) {
	var req ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for change plan", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := usecases.UpgradePlanCommand{
		TenantID: middleware.CurrentTenantID(c),
		ActorID:  middleware.CurrentUserID(c),
	}
	if !bindSubscriptionRef(c, &cmd.SubscriptionID, &cmd.SubscriptionSID) {
		return
	}
	if !bindPlanRefValue(c, req.PlanID, &cmd.NewPlanID, &cmd.NewPlanSID) {
		return
	}

	upgraded, err := h.upgradePlanUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, toSubscriptionDTO(upgraded))
}

func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.logger.Warnw("invalid request body for cancel", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := usecases.CancelSubscriptionCommand{
		TenantID: middleware.CurrentTenantID(c),
		Reason:   req.Reason,
		ActorID:  middleware.CurrentUserID(c),
	}
	if !bindSubscriptionRef(c, &cmd.SubscriptionID, &cmd.SubscriptionSID) {
		return
	}

	canceled, err := h.cancelUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, toSubscriptionDTO(canceled))
}

func (h *SubscriptionHandler) Reactivate(c *gin.Context) {
	cmd := usecases.ReactivateSubscriptionCommand{
		TenantID: middleware.CurrentTenantID(c),
		ActorID:  middleware.CurrentUserID(c),
	}
	if !bindSubscriptionRef(c, &cmd.SubscriptionID, &cmd.SubscriptionSID) {
		return
	}

	reactivated, err := h.reactivateUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, toSubscriptionDTO(reactivated))
}

func (h *SubscriptionHandler) GetTransitionHistory(c *gin.Context) {
	query := usecases.GetTransitionHistoryQuery{TenantID: middleware.CurrentTenantID(c)}
	if !bindSubscriptionRef(c, &query.SubscriptionID, &query.SubscriptionSID) {
		return
	}

	history, err := h.getHistoryUC.Execute(c.Request.Context(), query)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, toTransitionDTOs(history))
}

func bindSubscriptionRef(c *gin.Context, subscriptionID *uint, subscriptionSID *string) bool {
	ref := c.Param("id")
	if id.HasPrefix(ref, id.PrefixSubscription) {
		*subscriptionSID = ref
		return true
	}

	parsed, err := parseUintParam(ref)
	if err != nil {
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("invalid subscription reference"))
		return false
	}
	*subscriptionID = parsed
	return true
}

// bindPlanRefValue resolves a plan reference that arrived in a request body
// rather than the path.
func bindPlanRefValue(c *gin.Context, ref string, planID *uint, planSID *string) bool {
	if id.HasPrefix(ref, id.PrefixPlan) {
		*planSID = ref
		return true
	}

	parsed, err := parseUintParam(ref)
	if err != nil {
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("invalid plan reference"))
		return false
	}
	*planID = parsed
	return true
}

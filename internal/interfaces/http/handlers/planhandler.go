package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"cadence/internal/application/plan/usecases"
	"cadence/internal/interfaces/http/middleware"
	"cadence/internal/shared/errors"
	"cadence/internal/shared/id"
	"cadence/internal/shared/logger"
	"cadence/internal/shared/utils"
)

type PlanHandler struct {
	createPlanUC *usecases.CreatePlanUseCase
	updatePlanUC *usecases.UpdatePlanUseCase
	getPlanUC    *usecases.GetPlanUseCase
	listPlansUC  *usecases.ListPlansUseCase
	deletePlanUC *usecases.DeletePlanUseCase
	logger       logger.Interface
}

func NewPlanHandler(
	createPlanUC *usecases.CreatePlanUseCase,
	updatePlanUC *usecases.UpdatePlanUseCase,
	getPlanUC *usecases.GetPlanUseCase,
	listPlansUC *usecases.ListPlansUseCase,
	deletePlanUC *usecases.DeletePlanUseCase,
) *PlanHandler {
	return &PlanHandler{
		createPlanUC: createPlanUC,
		updatePlanUC: updatePlanUC,
		getPlanUC:    getPlanUC,
		listPlansUC:  listPlansUC,
		deletePlanUC: deletePlanUC,
		logger:       logger.NewLogger(),
	}
}

type FeatureLimitInput struct {
	Type  string `json:"type" binding:"required"`
	Value int64  `json:"value" binding:"min=-1"`
}

type CreatePlanRequest struct {
	Name          string              `json:"name" binding:"required,max=100"`
	Description   string              `json:"description" binding:"max=500"`
	Price         decimal.Decimal     `json:"price" binding:"required"`
	BillingCycle  string              `json:"billing_cycle" binding:"required,billingcycle"`
	FeatureLimits []FeatureLimitInput `json:"feature_limits"`
}

type UpdatePlanRequest struct {
	Description   *string              `json:"description"`
	Price         *decimal.Decimal     `json:"price"`
	Active        *bool                `json:"active"`
	FeatureLimits *[]FeatureLimitInput `json:"feature_limits"`
}

func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create plan", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := usecases.CreatePlanCommand{
		TenantID:      middleware.CurrentTenantID(c),
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		BillingCycle:  req.BillingCycle,
		FeatureLimits: toLimitInputs(req.FeatureLimits),
	}

	created, err := h.createPlanUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, toPlanDTO(created), "Plan created successfully")
}

func (h *PlanHandler) GetPlan(c *gin.Context) {
	query := usecases.GetPlanQuery{TenantID: middleware.CurrentTenantID(c)}
	if !bindPlanRef(c, &query.PlanID, &query.PlanSID) {
		return
	}

	p, err := h.getPlanUC.Execute(c.Request.Context(), query)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, toPlanDTO(p))
}

func (h *PlanHandler) ListPlans(c *gin.Context) {
	plans, err := h.listPlansUC.Execute(c.Request.Context(), usecases.ListPlansQuery{
		TenantID: middleware.CurrentTenantID(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, toPlanDTOs(plans))
}

func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	cmd := usecases.UpdatePlanCommand{TenantID: middleware.CurrentTenantID(c)}
	if !bindPlanRef(c, &cmd.PlanID, &cmd.PlanSID) {
		return
	}

	var req UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for update plan", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd.Description = req.Description
	cmd.Price = req.Price
	cmd.Active = req.Active
	if req.FeatureLimits != nil {
		cmd.FeatureLimits = toLimitInputs(*req.FeatureLimits)
	}

	updated, err := h.updatePlanUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, toPlanDTO(updated))
}

func (h *PlanHandler) DeletePlan(c *gin.Context) {
	cmd := usecases.DeletePlanCommand{TenantID: middleware.CurrentTenantID(c)}
	if !bindPlanRef(c, &cmd.PlanID, &cmd.PlanSID) {
		return
	}

	if err := h.deletePlanUC.Execute(c.Request.Context(), cmd); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

// bindPlanRef reads the :id path param as either a Stripe-style SID or an
// internal numeric ID. Returns false after writing the error response.
func bindPlanRef(c *gin.Context, planID *uint, planSID *string) bool {
	ref := c.Param("id")
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

func toLimitInputs(inputs []FeatureLimitInput) []usecases.FeatureLimitInput {
	if inputs == nil {
		return nil
	}
	result := make([]usecases.FeatureLimitInput, 0, len(inputs))
	for _, input := range inputs {
		result = append(result, usecases.FeatureLimitInput{Type: input.Type, Value: input.Value})
	}
	return result
}

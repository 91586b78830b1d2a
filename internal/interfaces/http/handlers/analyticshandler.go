package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"cadence/internal/application/analytics/usecases"
	"cadence/internal/interfaces/http/middleware"
	"cadence/internal/shared/errors"
	"cadence/internal/shared/logger"
	"cadence/internal/shared/utils"
)

type AnalyticsHandler struct {
	statusBreakdownUC *usecases.StatusBreakdownUseCase
	planBreakdownUC   *usecases.PlanBreakdownUseCase
	churnRateUC       *usecases.ChurnRateUseCase
	revenueSummaryUC  *usecases.RevenueSummaryUseCase
	logger            logger.Interface
}

func NewAnalyticsHandler(
	statusBreakdownUC *usecases.StatusBreakdownUseCase,
	planBreakdownUC *usecases.PlanBreakdownUseCase,
	churnRateUC *usecases.ChurnRateUseCase,
	revenueSummaryUC *usecases.RevenueSummaryUseCase,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		statusBreakdownUC: statusBreakdownUC,
		planBreakdownUC:   planBreakdownUC,
		churnRateUC:       churnRateUC,
		revenueSummaryUC:  revenueSummaryUC,
		logger:            logger.NewLogger(),
	}
}

func (h *AnalyticsHandler) StatusBreakdown(c *gin.Context) {
	counts, err := h.statusBreakdownUC.Execute(c.Request.Context(), usecases.StatusBreakdownQuery{
		TenantID: middleware.CurrentTenantID(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	rows := make([]StatusCountDTO, 0, len(counts))
	for _, row := range counts {
		rows = append(rows, StatusCountDTO{Status: row.Status.String(), Count: row.Count})
	}
	utils.OKResponse(c, rows)
}

type StatusCountDTO struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

func (h *AnalyticsHandler) PlanBreakdown(c *gin.Context) {
	rows, err := h.planBreakdownUC.Execute(c.Request.Context(), usecases.PlanBreakdownQuery{
		TenantID: middleware.CurrentTenantID(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, rows)
}

func (h *AnalyticsHandler) ChurnRate(c *gin.Context) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		utils.ErrorResponseWithError(c, errors.NewValidationError("from must be an RFC3339 timestamp"))
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		utils.ErrorResponseWithError(c, errors.NewValidationError("to must be an RFC3339 timestamp"))
		return
	}

	result, err := h.churnRateUC.Execute(c.Request.Context(), usecases.ChurnRateQuery{
		TenantID: middleware.CurrentTenantID(c),
		From:     from.UTC(),
		To:       to.UTC(),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, result)
}

func (h *AnalyticsHandler) RevenueSummary(c *gin.Context) {
	summary, err := h.revenueSummaryUC.Execute(c.Request.Context(), usecases.RevenueSummaryQuery{
		TenantID: middleware.CurrentTenantID(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, summary)
}

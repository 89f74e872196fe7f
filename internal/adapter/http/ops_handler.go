package http

import (
	"net/http"
	"time"

	portfoliouc "peerlend/internal/usecase/portfolio"
	sweepuc "peerlend/internal/usecase/sweep"

	"github.com/labstack/echo/v4"
)

// OpsHandler fronts the batch sweeper and the portfolio read model.
type OpsHandler struct {
	sweeper   *sweepuc.Usecase
	portfolio *portfoliouc.Usecase
}

func NewOpsHandler(s *sweepuc.Usecase, p *portfoliouc.Usecase) *OpsHandler {
	return &OpsHandler{sweeper: s, portfolio: p}
}

type sweepReq struct {
	// Now overrides the sweep reference time; RFC3339 with timezone.
	Now string `json:"now,omitempty"`
}

func (h *OpsHandler) RunSweep(c echo.Context) error {
	var req sweepReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	now := time.Now().UTC()
	if req.Now != "" {
		parsed, err := time.Parse(time.RFC3339, req.Now)
		if err != nil {
			return badRequest(c, "now must be RFC3339 with timezone")
		}
		now = parsed
	}
	report, err := h.sweeper.Sweep(c.Request().Context(), now)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *OpsHandler) Portfolio(c echo.Context) error {
	analysis, err := h.portfolio.Analyze(c.Request().Context(), c.Param("investor_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, analysis)
}

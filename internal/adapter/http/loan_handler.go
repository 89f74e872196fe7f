package http

import (
	"net/http"

	fundinguc "peerlend/internal/usecase/funding"
	loanuc "peerlend/internal/usecase/loan"
	repaymentuc "peerlend/internal/usecase/repayment"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type LoanHandler struct {
	loans     *loanuc.Usecase
	funding   *fundinguc.Usecase
	repayment *repaymentuc.Usecase
}

func NewLoanHandler(loans *loanuc.Usecase, funding *fundinguc.Usecase, repayment *repaymentuc.Usecase) *LoanHandler {
	return &LoanHandler{loans: loans, funding: funding, repayment: repayment}
}

type createLoanReq struct {
	BorrowerID            string          `json:"borrower_id" validate:"required,hex32"`
	Title                 string          `json:"title" validate:"required"`
	Description           string          `json:"description"`
	Amount                decimal.Decimal `json:"amount"`
	TermMonths            int             `json:"term_months" validate:"required,gte=1,lte=120"`
	Purpose               string          `json:"purpose"`
	PurposeDescription    string          `json:"purpose_description"`
	IsSecured             bool            `json:"is_secured"`
	CollateralDescription string          `json:"collateral_description"`
	CollateralValue       decimal.Decimal `json:"collateral_value"`
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req createLoanReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	dto, err := h.loans.Create(c.Request().Context(), loanuc.CreateLoanInput{
		BorrowerID:            req.BorrowerID,
		Title:                 req.Title,
		Description:           req.Description,
		Amount:                req.Amount,
		TermMonths:            req.TermMonths,
		Purpose:               req.Purpose,
		PurposeDescription:    req.PurposeDescription,
		IsSecured:             req.IsSecured,
		CollateralDescription: req.CollateralDescription,
		CollateralValue:       req.CollateralValue,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	dto, err := h.loans.Get(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) GetSchedule(c echo.Context) error {
	schedule, err := h.loans.GetSchedule(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, schedule)
}

type investReq struct {
	InvestorID string          `json:"investor_id" validate:"required,hex32"`
	Amount     decimal.Decimal `json:"amount"`
}

func (h *LoanHandler) Invest(c echo.Context) error {
	var req investReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	dto, err := h.funding.Invest(c.Request().Context(), req.InvestorID, c.Param("loan_id"), req.Amount)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

type repayReq struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *LoanHandler) Repay(c echo.Context) error {
	var req repayReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	receipt, err := h.repayment.Repay(c.Request().Context(), c.Param("loan_id"), req.Amount)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, receipt)
}

func (h *LoanHandler) Cancel(c echo.Context) error {
	if err := h.funding.Cancel(c.Request().Context(), c.Param("loan_id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "cancelled"})
}

type autoPayReq struct {
	Enabled bool `json:"enabled"`
}

func (h *LoanHandler) SetAutoPay(c echo.Context) error {
	var req autoPayReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := h.repayment.SetAutoPay(c.Request().Context(), c.Param("loan_id"), req.Enabled); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"auto_payment_enabled": req.Enabled})
}

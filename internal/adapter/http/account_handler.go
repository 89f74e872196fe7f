package http

import (
	"net/http"

	uc "peerlend/internal/usecase/account"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type AccountHandler struct{ uc *uc.Usecase }

func NewAccountHandler(u *uc.Usecase) *AccountHandler { return &AccountHandler{uc: u} }

type registerReq struct {
	Kind         string          `json:"kind" validate:"required,oneof=investor borrower"`
	FullName     string          `json:"full_name" validate:"required"`
	CreditScore  int             `json:"credit_score"`
	AnnualIncome decimal.Decimal `json:"annual_income"`
}

func (h *AccountHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	dto, err := h.uc.Register(c.Request().Context(), uc.RegisterInput{
		Kind:         req.Kind,
		FullName:     req.FullName,
		CreditScore:  req.CreditScore,
		AnnualIncome: req.AnnualIncome,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *AccountHandler) Get(c echo.Context) error {
	actor, err := h.uc.Resolve(c.Request().Context(), c.Param("account_id"))
	if err != nil {
		return fail(c, err)
	}
	out := map[string]any{
		"account_id":   actor.Account.AccountID,
		"kind":         actor.Account.Kind,
		"full_name":    actor.Account.FullName,
		"kyc_verified": actor.Account.KYCVerified,
	}
	if actor.Investor != nil {
		out["total_invested"] = actor.Investor.TotalInvested
		out["total_earnings"] = actor.Investor.TotalEarnings
	}
	if actor.Borrower != nil {
		out["credit_score"] = actor.Borrower.CreditScore
		out["total_loans"] = actor.Borrower.TotalLoans
	}
	return c.JSON(http.StatusOK, out)
}

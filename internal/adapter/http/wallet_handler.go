package http

import (
	"context"
	"net/http"

	walletDomain "peerlend/internal/domain/wallet"
	walletuc "peerlend/internal/usecase/wallet"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type WalletHandler struct{ ledger *walletuc.Ledger }

func NewWalletHandler(l *walletuc.Ledger) *WalletHandler { return &WalletHandler{ledger: l} }

type moveFundsReq struct {
	Amount decimal.Decimal `json:"amount"`
	Memo   string          `json:"memo"`
}

func (h *WalletHandler) Deposit(c echo.Context) error {
	return h.move(c, h.ledger.Deposit)
}

func (h *WalletHandler) Withdraw(c echo.Context) error {
	return h.move(c, h.ledger.Withdraw)
}

func (h *WalletHandler) move(c echo.Context, op func(ctx context.Context, ownerID string, amount decimal.Decimal, memo string) (*walletDomain.Transaction, error)) error {
	var req moveFundsReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	t, err := op(c.Request().Context(), c.Param("owner_id"), req.Amount, req.Memo)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *WalletHandler) Statement(c echo.Context) error {
	w, txs, err := h.ledger.Statement(c.Request().Context(), c.Param("owner_id"), 50)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"owner_id":     w.OwnerID,
		"balance":      w.Balance,
		"transactions": txs,
	})
}

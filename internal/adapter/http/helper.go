package http

import (
	"errors"
	"net/http"

	accountDomain "peerlend/internal/domain/account"
	loanDomain "peerlend/internal/domain/loan"
	walletDomain "peerlend/internal/domain/wallet"

	"github.com/labstack/echo/v4"
)

// fail maps domain sentinels to HTTP statuses. Everything not in the
// taxonomy is a storage-layer fault and stays a 500.
func fail(c echo.Context, err error) error {
	var status int
	switch {
	case errors.Is(err, walletDomain.ErrNotFound),
		errors.Is(err, loanDomain.ErrNotFound),
		errors.Is(err, accountDomain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, walletDomain.ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, walletDomain.ErrInsufficientFunds):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, loanDomain.ErrCapacityExceeded),
		errors.Is(err, loanDomain.ErrInvalidStateTransition),
		errors.Is(err, loanDomain.ErrPendingLoanExists),
		errors.Is(err, loanDomain.ErrNoOutstandingPayment),
		errors.Is(err, loanDomain.ErrScheduleNotReady):
		status = http.StatusConflict
	case errors.Is(err, accountDomain.ErrNotInvestor),
		errors.Is(err, accountDomain.ErrNotBorrower):
		status = http.StatusForbidden
	default:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(status, ErrorResponse{Error: err.Error()})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func validationFailed(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
}

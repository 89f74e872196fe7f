package http

import (
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	loanDomain "peerlend/internal/domain/loan"
	walletDomain "peerlend/internal/domain/wallet"
	"peerlend/internal/testutil/eventsink"
	"peerlend/internal/testutil/memuow"
	portfoliouc "peerlend/internal/usecase/portfolio"
	repaymentuc "peerlend/internal/usecase/repayment"
	sweepuc "peerlend/internal/usecase/sweep"

	"github.com/labstack/echo/v4"
)

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func newOpsHandler(store *memuow.Store) *OpsHandler {
	sink := eventsink.New()
	repayer := repaymentuc.NewUsecase(store, sink, "")
	return NewOpsHandler(
		sweepuc.NewUsecase(store, repayer, sink),
		portfoliouc.NewUsecase(store),
	)
}

func TestRunSweep_WithExplicitNow(t *testing.T) {
	e := newEchoWithValidator()
	store := memuow.New()
	l := store.SeedLoan(loanDomain.Loan{
		LoanID: "c0ffee00000000000000000000000000", BorrowerID: borrowerID,
		Amount: dec("1000"), Status: loanDomain.StatusActive,
	})
	store.SeedWallet(walletDomain.Wallet{OwnerID: borrowerID, Balance: dec("0")})
	store.SeedPayment(loanDomain.LoanPayment{
		LoanID: l.ID, PaymentNumber: 1, AmountDue: dec("87.92"),
		DueDate: mustTime("2026-08-29T00:00:00Z"), Status: loanDomain.PaymentPending,
	})

	h := newOpsHandler(store)
	req := httptest.NewRequest(stdhttp.MethodPost, "/sweeps", mustJSON(map[string]any{
		"now": "2026-08-31T12:00:00Z",
	}))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.RunSweep(c); err != nil {
		t.Fatalf("RunSweep error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	var report sweepuc.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if report.MarkedLate != 1 {
		t.Fatalf("marked late = %d, want 1: %s", report.MarkedLate, rec.Body)
	}
}

func TestRunSweep_RejectsBadTimestamp(t *testing.T) {
	e := newEchoWithValidator()
	h := newOpsHandler(memuow.New())

	req := httptest.NewRequest(stdhttp.MethodPost, "/sweeps", strings.NewReader(`{"now":"yesterday"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.RunSweep(c); err != nil {
		t.Fatalf("RunSweep error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body)
	}
}

func TestPortfolio_UnknownInvestor(t *testing.T) {
	e := newEchoWithValidator()
	h := newOpsHandler(memuow.New())

	req := httptest.NewRequest(stdhttp.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/investors/:investor_id/portfolio")
	c.SetParamNames("investor_id")
	c.SetParamValues("eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee")

	if err := h.Portfolio(c); err != nil {
		t.Fatalf("Portfolio error: %v", err)
	}
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404: %s", rec.Code, rec.Body)
	}
}

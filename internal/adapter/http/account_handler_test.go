package http

import (
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"peerlend/internal/testutil/memuow"
	accountuc "peerlend/internal/usecase/account"

	"github.com/labstack/echo/v4"
)

func TestRegister_CreatesInvestor(t *testing.T) {
	e := newEchoWithValidator()
	store := memuow.New()
	h := NewAccountHandler(accountuc.NewUsecase(store))

	req := httptest.NewRequest(stdhttp.MethodPost, "/accounts", mustJSON(map[string]any{
		"kind":      "investor",
		"full_name": "Ana Putri",
	}))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}
	var body struct {
		AccountID string `json:"account_id"`
		Kind      string `json:"kind"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if len(body.AccountID) != 32 || body.Kind != "investor" {
		t.Fatalf("unexpected body: %s", rec.Body)
	}

	// the wallet opens with the account
	if _, ok := store.Wallet(body.AccountID); !ok {
		t.Fatalf("wallet missing for registered account")
	}
}

func TestRegister_RejectsUnknownKind(t *testing.T) {
	e := newEchoWithValidator()
	h := NewAccountHandler(accountuc.NewUsecase(memuow.New()))

	req := httptest.NewRequest(stdhttp.MethodPost, "/accounts", mustJSON(map[string]any{
		"kind":      "admin",
		"full_name": "X",
	}))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body)
	}
}

func TestAccountGet_NotFound(t *testing.T) {
	e := newEchoWithValidator()
	h := NewAccountHandler(accountuc.NewUsecase(memuow.New()))

	req := httptest.NewRequest(stdhttp.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/accounts/:account_id")
	c.SetParamNames("account_id")
	c.SetParamValues("eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee")

	if err := h.Get(c); err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

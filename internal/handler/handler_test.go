package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simple-bank/internal/repository"
	"simple-bank/internal/service"
)

func newTestRouter() *mux.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ledger := service.NewLedgerService(repository.NewMemoryAccountRepository(logger), logger)

	accountHandler := NewAccountHandler(ledger)
	transferHandler := NewTransferHandler(ledger)

	router := mux.NewRouter()
	router.HandleFunc("/accounts", accountHandler.CreateAccount).Methods("POST")
	router.HandleFunc("/accounts/{id}", accountHandler.GetAccount).Methods("GET")
	router.HandleFunc("/accounts/{id}/deposits", accountHandler.Deposit).Methods("POST")
	router.HandleFunc("/accounts/{id}/withdrawals", accountHandler.Withdraw).Methods("POST")
	router.HandleFunc("/transfers", transferHandler.Transfer).Methods("POST")
	return router
}

func doRequest(t *testing.T, router *mux.Router, method, url string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, url, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]any)
	require.True(t, ok, "response has no data field: %s", w.Body.String())
	return data
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	errData, ok := resp["error"].(map[string]any)
	require.True(t, ok, "response has no error field: %s", w.Body.String())
	return errData
}

func createTestAccount(t *testing.T, router *mux.Router, name string) string {
	t.Helper()
	w := doRequest(t, router, http.MethodPost, "/accounts", map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeData(t, w)["id"].(string)
}

func depositTestFunds(t *testing.T, router *mux.Router, id, amount string) {
	t.Helper()
	w := doRequest(t, router, http.MethodPost, "/accounts/"+id+"/deposits", map[string]string{"amount": amount})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestCreateAccountEndpoint(t *testing.T) {
	router := newTestRouter()

	w := doRequest(t, router, http.MethodPost, "/accounts", map[string]string{"name": "Alice"})
	assert.Equal(t, http.StatusCreated, w.Code)

	data := decodeData(t, w)
	assert.Equal(t, "Alice", data["name"])
	assert.Equal(t, "0", data["balance"])
	assert.NotEmpty(t, data["id"])
}

func TestCreateAccountEndpointInvalidName(t *testing.T) {
	router := newTestRouter()

	for _, name := range []string{"", "Bob123"} {
		w := doRequest(t, router, http.MethodPost, "/accounts", map[string]string{"name": name})
		assert.Equal(t, http.StatusBadRequest, w.Code, "name %q", name)
		assert.Equal(t, "invalid_name", decodeError(t, w)["code"])
	}
}

func TestCreateAccountEndpointBadBody(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAccountEndpoint(t *testing.T) {
	router := newTestRouter()
	id := createTestAccount(t, router, "Alice")

	w := doRequest(t, router, http.MethodGet, "/accounts/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	assert.Equal(t, id, data["id"])
	assert.Equal(t, "Alice", data["name"])
}

func TestGetAccountEndpointNotFound(t *testing.T) {
	router := newTestRouter()

	w := doRequest(t, router, http.MethodGet, "/accounts/9c8b7a65-4321-4abc-8def-123456789abc", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetAccountEndpointBadID(t *testing.T) {
	router := newTestRouter()

	w := doRequest(t, router, http.MethodGet, "/accounts/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDepositEndpoint(t *testing.T) {
	router := newTestRouter()
	id := createTestAccount(t, router, "Alice")

	w := doRequest(t, router, http.MethodPost, "/accounts/"+id+"/deposits", map[string]string{"amount": "100.5"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "100.5", decodeData(t, w)["balance"])
}

func TestDepositEndpointNegativeAmount(t *testing.T) {
	router := newTestRouter()
	id := createTestAccount(t, router, "Alice")

	w := doRequest(t, router, http.MethodPost, "/accounts/"+id+"/deposits", map[string]string{"amount": "-5"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_amount", decodeError(t, w)["code"])
}

func TestWithdrawEndpoint(t *testing.T) {
	router := newTestRouter()
	id := createTestAccount(t, router, "Alice")
	depositTestFunds(t, router, id, "100")

	w := doRequest(t, router, http.MethodPost, "/accounts/"+id+"/withdrawals", map[string]string{"amount": "100"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", decodeData(t, w)["balance"])
}

func TestWithdrawEndpointInsufficientFunds(t *testing.T) {
	router := newTestRouter()
	id := createTestAccount(t, router, "Alice")
	depositTestFunds(t, router, id, "100")

	w := doRequest(t, router, http.MethodPost, "/accounts/"+id+"/withdrawals", map[string]string{"amount": "150"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "insufficient_funds", decodeError(t, w)["code"])
}

func TestWithdrawEndpointNotFound(t *testing.T) {
	router := newTestRouter()

	w := doRequest(t, router, http.MethodPost, "/accounts/9c8b7a65-4321-4abc-8def-123456789abc/withdrawals", map[string]string{"amount": "10"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTransferEndpoint(t *testing.T) {
	router := newTestRouter()
	alice := createTestAccount(t, router, "Alice")
	bob := createTestAccount(t, router, "Bob")
	depositTestFunds(t, router, alice, "100")

	w := doRequest(t, router, http.MethodPost, "/transfers", map[string]string{
		"sender_id":    alice,
		"recipient_id": bob,
		"amount":       "40",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	sender := data["sender"].(map[string]any)
	recipient := data["recipient"].(map[string]any)
	assert.Equal(t, "60", sender["balance"])
	assert.Equal(t, "40", recipient["balance"])
}

func TestTransferEndpointMissingRecipient(t *testing.T) {
	router := newTestRouter()
	alice := createTestAccount(t, router, "Alice")
	depositTestFunds(t, router, alice, "100")

	w := doRequest(t, router, http.MethodPost, "/transfers", map[string]string{
		"sender_id":    alice,
		"recipient_id": "9c8b7a65-4321-4abc-8def-123456789abc",
		"amount":       "10",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decodeError(t, w)["message"], "recipient")

	// Sender balance untouched.
	w = doRequest(t, router, http.MethodGet, "/accounts/"+alice, nil)
	assert.Equal(t, "100", decodeData(t, w)["balance"])
}

func TestTransferEndpointInsufficientFunds(t *testing.T) {
	router := newTestRouter()
	alice := createTestAccount(t, router, "Alice")
	bob := createTestAccount(t, router, "Bob")
	depositTestFunds(t, router, alice, "30")

	w := doRequest(t, router, http.MethodPost, "/transfers", map[string]string{
		"sender_id":    alice,
		"recipient_id": bob,
		"amount":       "40",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "insufficient_funds", decodeError(t, w)["code"])
}

func TestTransferEndpointBadIDs(t *testing.T) {
	router := newTestRouter()

	w := doRequest(t, router, http.MethodPost, "/transfers", map[string]string{
		"sender_id":    "nope",
		"recipient_id": "also-nope",
		"amount":       "10",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

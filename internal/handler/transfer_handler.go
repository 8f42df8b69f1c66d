package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"simple-bank/internal/errors"
	"simple-bank/internal/service"
)

type TransferHandler struct {
	ledger *service.LedgerService
}

func NewTransferHandler(ledger *service.LedgerService) *TransferHandler {
	return &TransferHandler{
		ledger: ledger,
	}
}

type TransferRequest struct {
	SenderID    string `json:"sender_id"`
	RecipientID string `json:"recipient_id"`
	Amount      string `json:"amount"`
}

type TransferResponse struct {
	Sender    AccountResponse `json:"sender"`
	Recipient AccountResponse `json:"recipient"`
}

func (h *TransferHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	senderID, err := uuid.Parse(req.SenderID)
	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidAccountID, "invalid sender_id format").WithDetails(err.Error()))
		return
	}

	recipientID, err := uuid.Parse(req.RecipientID)
	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidAccountID, "invalid recipient_id format").WithDetails(err.Error()))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidAmount, "invalid amount format").WithDetails(err.Error()))
		return
	}

	result, err := h.ledger.Transfer(senderID, recipientID, amount)
	if err != nil {
		writeError(w, err)
		return
	}

	response := TransferResponse{
		Sender:    newAccountResponse(result.Sender),
		Recipient: newAccountResponse(result.Recipient),
	}

	writeJSON(w, http.StatusOK, response)
}

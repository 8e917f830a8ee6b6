package transaction

import (
	"time"

	"github.com/MrJamesThe3rd/pocket/internal/ledger"
)

type Response struct {
	ID            string      `json:"id"`
	Description   string      `json:"description"`
	Amount        int64       `json:"amount"`
	Type          ledger.Type `json:"type"`
	Category      string      `json:"category"`
	Date          time.Time   `json:"date"`
	PaymentMethod string      `json:"payment_method,omitempty"`
	AccountID     string      `json:"account_id"`
	TransferID    string      `json:"transfer_id,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

type transferResponse struct {
	TransferID string   `json:"transfer_id"`
	Expense    Response `json:"expense"`
	Income     Response `json:"income"`
}

func ToResponse(tx ledger.Transaction) Response {
	return Response{
		ID:            tx.ID,
		Description:   tx.Description,
		Amount:        tx.Amount,
		Type:          tx.Type,
		Category:      tx.Category,
		Date:          tx.Date,
		PaymentMethod: tx.PaymentMethod,
		AccountID:     tx.AccountID,
		TransferID:    tx.TransferID,
		CreatedAt:     tx.CreatedAt,
	}
}

func ToResponseList(txs []ledger.Transaction) []Response {
	resp := make([]Response, len(txs))
	for i, tx := range txs {
		resp[i] = ToResponse(tx)
	}

	return resp
}

func toTransferResponse(t *ledger.Transfer) transferResponse {
	return transferResponse{
		TransferID: t.TransferID,
		Expense:    ToResponse(t.Expense),
		Income:     ToResponse(t.Income),
	}
}

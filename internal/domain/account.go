package domain

import (
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"simple-bank/internal/errors"
)

type Account struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TransferResult carries both post-transfer account snapshots. A nil side
// means the referenced account does not exist.
type TransferResult struct {
	Sender    *Account `json:"sender"`
	Recipient *Account `json:"recipient"`
}

// AccountRepository is the storage contract consumed by the ledger service.
// GetAccount and GetAccountForUpdate return (nil, nil) for a missing id;
// absence is not an error at this layer. GetAccountForUpdate is only valid
// inside WithTransaction and holds the account's lock until the transaction
// ends.
type AccountRepository interface {
	CreateAccount(account *Account) error
	GetAccount(id uuid.UUID) (*Account, error)
	GetAccountForUpdate(id uuid.UUID) (*Account, error)
	UpdateAccountBalance(id uuid.UUID, newBalance decimal.Decimal) error
	WithTransaction(fn func(repo AccountRepository) error) error
}

// ValidateAccountName enforces the account naming rule: non-empty, not all
// whitespace, and composed only of letters and whitespace.
func ValidateAccountName(name string) error {
	hasLetter := false
	for _, r := range name {
		switch {
		case unicode.IsSpace(r):
		case unicode.IsLetter(r):
			hasLetter = true
		default:
			return errors.ErrInvalidName
		}
	}
	if !hasLetter {
		return errors.ErrInvalidName
	}
	return nil
}

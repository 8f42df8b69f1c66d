package service

import (
	"bytes"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"simple-bank/internal/domain"
	"simple-bank/internal/errors"
)

// LedgerService owns every balance read and write. All mutations run inside a
// repository transaction: the affected accounts are re-read under exclusive
// locks, validated, and committed as one unit, so balances never go negative
// and concurrent operations on the same account cannot lose updates.
type LedgerService struct {
	accountRepo domain.AccountRepository
	logger      *slog.Logger
}

func NewLedgerService(accountRepo domain.AccountRepository, logger *slog.Logger) *LedgerService {
	return &LedgerService{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

func (s *LedgerService) CreateAccount(name string) (*domain.Account, error) {
	if err := domain.ValidateAccountName(name); err != nil {
		return nil, err
	}

	account := &domain.Account{
		ID:      uuid.New(),
		Name:    name,
		Balance: decimal.Zero,
	}

	if err := s.accountRepo.CreateAccount(account); err != nil {
		return nil, err
	}

	s.logger.Info("Account created", "account_id", account.ID, "name", name)
	return account, nil
}

func (s *LedgerService) GetAccount(id uuid.UUID) (*domain.Account, error) {
	account, err := s.accountRepo.GetAccount(id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, errors.ErrAccountNotFound
	}
	return account, nil
}

func (s *LedgerService) Deposit(id uuid.UUID, amount decimal.Decimal) (*domain.Account, error) {
	if amount.IsNegative() {
		return nil, errors.ErrInvalidAmount
	}

	var updated *domain.Account
	err := s.accountRepo.WithTransaction(func(repo domain.AccountRepository) error {
		account, err := repo.GetAccountForUpdate(id)
		if err != nil {
			return err
		}
		if account == nil {
			return errors.ErrAccountNotFound
		}

		account.Balance = account.Balance.Add(amount)
		if err := repo.UpdateAccountBalance(id, account.Balance); err != nil {
			return err
		}

		updated = account
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Deposit applied", "account_id", id, "amount", amount, "balance", updated.Balance)
	return updated, nil
}

func (s *LedgerService) Withdraw(id uuid.UUID, amount decimal.Decimal) (*domain.Account, error) {
	if amount.IsNegative() {
		return nil, errors.ErrInvalidAmount
	}

	var updated *domain.Account
	err := s.accountRepo.WithTransaction(func(repo domain.AccountRepository) error {
		account, err := repo.GetAccountForUpdate(id)
		if err != nil {
			return err
		}
		if account == nil {
			return errors.ErrAccountNotFound
		}
		if account.Balance.LessThan(amount) {
			return errors.ErrInsufficientFunds
		}

		account.Balance = account.Balance.Sub(amount)
		if err := repo.UpdateAccountBalance(id, account.Balance); err != nil {
			return err
		}

		updated = account
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Withdrawal applied", "account_id", id, "amount", amount, "balance", updated.Balance)
	return updated, nil
}

// Transfer debits the sender and credits the recipient as one atomic unit.
// When either side is missing, the returned result still carries whichever
// snapshots were found alongside a not-found error naming the missing side;
// no balances change. A transfer to the same account must pass the funds
// check but leaves the balance untouched.
func (s *LedgerService) Transfer(senderID, recipientID uuid.UUID, amount decimal.Decimal) (*domain.TransferResult, error) {
	if amount.IsNegative() {
		return nil, errors.ErrInvalidAmount
	}

	result := &domain.TransferResult{}
	err := s.accountRepo.WithTransaction(func(repo domain.AccountRepository) error {
		sender, recipient, err := lockPair(repo, senderID, recipientID)
		if err != nil {
			return err
		}
		result.Sender = sender
		result.Recipient = recipient

		switch {
		case sender == nil && recipient == nil:
			if senderID == recipientID {
				return errors.ErrAccountNotFound
			}
			return errors.ErrNoAccountsFound
		case sender == nil:
			return errors.ErrSenderNotFound
		case recipient == nil:
			return errors.ErrRecipientNotFound
		}

		if sender.Balance.LessThan(amount) {
			return errors.ErrInsufficientFunds
		}

		if senderID == recipientID {
			// Debit and credit cancel out; leave the single row untouched.
			return nil
		}

		sender.Balance = sender.Balance.Sub(amount)
		recipient.Balance = recipient.Balance.Add(amount)

		if err := repo.UpdateAccountBalance(senderID, sender.Balance); err != nil {
			return err
		}
		return repo.UpdateAccountBalance(recipientID, recipient.Balance)
	})
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok && appErr.Code == errors.AccountNotFound {
			// Keep the found side's snapshot so the caller can report per side.
			return result, err
		}
		return nil, err
	}

	s.logger.Info("Transfer completed",
		"sender_id", senderID,
		"recipient_id", recipientID,
		"amount", amount)
	return result, nil
}

// lockPair locks both accounts of a transfer in ascending id order, so two
// transfers over the same pair in opposite directions cannot deadlock. A
// self-transfer locks its single row once.
func lockPair(repo domain.AccountRepository, senderID, recipientID uuid.UUID) (sender, recipient *domain.Account, err error) {
	if senderID == recipientID {
		account, err := repo.GetAccountForUpdate(senderID)
		return account, account, err
	}

	first, second := senderID, recipientID
	if bytes.Compare(second[:], first[:]) < 0 {
		first, second = second, first
	}

	firstAcc, err := repo.GetAccountForUpdate(first)
	if err != nil {
		return nil, nil, err
	}
	secondAcc, err := repo.GetAccountForUpdate(second)
	if err != nil {
		return nil, nil, err
	}

	if first == senderID {
		return firstAcc, secondAcc, nil
	}
	return secondAcc, firstAcc, nil
}

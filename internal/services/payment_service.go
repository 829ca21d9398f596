package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/nairabank/backend/internal/middleware"
	"github.com/nairabank/backend/internal/models"
	"github.com/nairabank/backend/internal/storage"
)

// PaymentService is the money-transfer engine and the transaction
// history query. It is the only writer of account balances.
type PaymentService struct {
	ledger    storage.Ledger
	validator *ValidationHelper
}

func NewPaymentService(ledger storage.Ledger) *PaymentService {
	return &PaymentService{
		ledger:    ledger,
		validator: NewValidationHelper(),
	}
}

// MoneyRequest is the wire shape of an amount: a 2-decimal value plus a
// 3-letter currency code. Currency defaults to the home currency.
type MoneyRequest struct {
	Value    string `json:"value" validate:"required"`
	Currency string `json:"currency" validate:"omitempty,len=3,alpha"`
}

func (mr MoneyRequest) toMoney() (models.Money, error) {
	currency := mr.Currency
	if currency == "" {
		currency = models.HomeCurrency()
	}
	return models.NewMoneyFromString(mr.Value, currency)
}

type TransferMoneyRequest struct {
	AccountNumber string       `json:"accountNumber" validate:"required,len=10,numeric"`
	Amount        MoneyRequest `json:"amount" validate:"required"`
}

// TransactionPage is the paginated history result. TotalCount always
// reflects the full filtered set, regardless of the requested window.
type TransactionPage struct {
	TotalCount int64                    `json:"totalCount"`
	Items      []models.TransactionView `json:"items"`
}

// Transfer atomically moves amount from one of the caller's accounts to
// the account with the target number, recording a paired debit/credit
// ledger entry under one shared reference number.
//
// Balances are not locked during validation; a stale version token at
// commit yields Payment.ConcurrencyConflict and no partial writes, and
// the caller re-drives the whole operation from a fresh read.
func (s *PaymentService) Transfer(ctx context.Context, ownerUserID int64, targetAccountNumber string, amount models.Money) *Error {
	if !amount.IsPositive() {
		return ErrValidation("Transfer amount must be greater than zero.")
	}
	if len(targetAccountNumber) != models.AccountNumberLength {
		return ErrValidation("Account number must be exactly 10 digits.")
	}

	accounts, err := s.ledger.FindAccounts(ctx, ownerUserID, targetAccountNumber)
	if err != nil {
		log.Printf("[PAYMENT] Account load failed for user %d: %v", ownerUserID, err)
		return ErrStorageFailure()
	}

	var recipient *models.Account
	for i := range accounts {
		if accounts[i].AccountNumber == targetAccountNumber {
			recipient = &accounts[i]
			break
		}
	}
	if recipient == nil {
		return ErrAccountNotFound(targetAccountNumber)
	}

	// The first loaded non-recipient account is the source. With
	// multiple accounts per owner the choice is arbitrary; see the
	// transfer contract notes in DESIGN.md.
	var sender *models.Account
	for i := range accounts {
		if accounts[i].AccountNumber != targetAccountNumber {
			sender = &accounts[i]
			break
		}
	}
	if sender == nil {
		return ErrSourceAccountNotFound()
	}

	if sender.Balance.Currency() != amount.Currency() {
		return ErrCurrencyMismatch(sender.Balance.Currency(), amount.Currency())
	}

	insufficient, err := sender.Balance.LessThan(amount)
	if err != nil {
		return ErrCurrencyMismatch(sender.Balance.Currency(), amount.Currency())
	}
	if insufficient {
		return ErrInsufficientFunds()
	}

	newSenderBalance, err := sender.Balance.Subtract(amount)
	if err != nil {
		return ErrCurrencyMismatch(sender.Balance.Currency(), amount.Currency())
	}
	newRecipientBalance, err := recipient.Balance.Add(amount)
	if err != nil {
		return ErrCurrencyMismatch(recipient.Balance.Currency(), amount.Currency())
	}

	now := time.Now().UTC()
	sender.Balance = newSenderBalance
	sender.LastModifiedAt = &now
	recipient.Balance = newRecipientBalance
	recipient.LastModifiedAt = &now

	reference := generateReferenceNumber()

	debit := &models.Transaction{
		ReferenceNumber: reference,
		Amount:          amount,
		AccountOwnerID:  sender.ID,
		SenderID:        sender.ID,
		RecipientID:     recipient.ID,
		Status:          models.StatusDebit,
		CreatedAt:       now,
	}
	credit := &models.Transaction{
		ReferenceNumber: reference,
		Amount:          amount,
		AccountOwnerID:  recipient.ID,
		SenderID:        sender.ID,
		RecipientID:     recipient.ID,
		Status:          models.StatusCredit,
		CreatedAt:       now,
	}

	batch := s.ledger.NewBatch()
	batch.UpdateAccount(sender)
	batch.UpdateAccount(recipient)
	batch.InsertTransaction(debit)
	batch.InsertTransaction(credit)

	if err := batch.Commit(ctx); err != nil {
		if errors.Is(err, storage.ErrVersionConflict) {
			log.Printf("[PAYMENT] Version conflict on transfer %s for user %d", reference, ownerUserID)
			return ErrConcurrencyConflict()
		}
		log.Printf("[PAYMENT] Commit failed on transfer %s for user %d: %v", reference, ownerUserID, err)
		return ErrStorageFailure()
	}

	log.Printf("[PAYMENT] Transfer %s committed: %s from account %d to account %d",
		reference, amount, sender.ID, recipient.ID)
	return nil
}

// generateReferenceNumber derives the 17-character reference shared by
// a transfer's debit and credit rows from a random UUID.
func generateReferenceNumber() string {
	id := uuid.New().String()
	return id[1 : models.ReferenceNumberLength+1]
}

// ListTransactions returns the caller's transaction history. A skip
// below zero or a take of zero or less yields an empty page while
// TotalCount still reports the full filtered set.
func (s *PaymentService) ListTransactions(ctx context.Context, ownerUserID int64, skip, take int) (*TransactionPage, *Error) {
	total, err := s.ledger.CountTransactionsByOwner(ctx, ownerUserID)
	if err != nil {
		log.Printf("[PAYMENT] Transaction count failed for user %d: %v", ownerUserID, err)
		return nil, ErrStorageFailure()
	}

	page := &TransactionPage{TotalCount: total, Items: []models.TransactionView{}}
	if total <= 0 || skip < 0 || take <= 0 {
		return page, nil
	}

	items, err := s.ledger.ListTransactionsByOwner(ctx, ownerUserID, skip, take)
	if err != nil {
		log.Printf("[PAYMENT] Transaction list failed for user %d: %v", ownerUserID, err)
		return nil, ErrStorageFailure()
	}
	page.Items = items
	return page, nil
}

// TransferMoney handles POST /payments/transfer.
func (s *PaymentService) TransferMoney(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		WriteError(w, &Error{Code: "Request.Unauthorized", Description: "Authentication required."})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req TransferMoneyRequest
	if err := dec.Decode(&req); err != nil {
		SendValidationError(w, "Invalid request body", nil)
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendValidationError(w, "Request body must only contain a single JSON object", nil)
		return
	}

	if err := s.validator.ValidateStruct(&req); err != nil {
		SendValidationError(w, "Validation failed", err)
		return
	}

	amount, err := req.Amount.toMoney()
	if err != nil {
		SendValidationError(w, "Invalid amount: must be a decimal with at most 2 decimal places", nil)
		return
	}

	if serviceErr := s.Transfer(r.Context(), userID, req.AccountNumber, amount); serviceErr != nil {
		WriteError(w, serviceErr)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// GetTransactions handles GET /payments/transactions?skip=&take=.
func (s *PaymentService) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		WriteError(w, &Error{Code: "Request.Unauthorized", Description: "Authentication required."})
		return
	}

	skip, take := 0, 10
	if raw := r.URL.Query().Get("skip"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			SendValidationError(w, "skip must be an integer", nil)
			return
		}
		skip = parsed
	}
	if raw := r.URL.Query().Get("take"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			SendValidationError(w, "take must be an integer", nil)
			return
		}
		take = parsed
	}

	page, serviceErr := s.ListTransactions(r.Context(), userID, skip, take)
	if serviceErr != nil {
		WriteError(w, serviceErr)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

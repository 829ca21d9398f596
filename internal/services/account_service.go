package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/nairabank/backend/internal/middleware"
	"github.com/nairabank/backend/internal/models"
	"github.com/nairabank/backend/internal/storage"
)

// accountNumberRetries bounds regeneration when a generated account
// number collides with an existing one.
const accountNumberRetries = 5

// AccountService covers account opening, profile reads and updates, and
// beneficiary lookup.
type AccountService struct {
	directory storage.Directory
	validator *ValidationHelper
}

func NewAccountService(directory storage.Directory) *AccountService {
	return &AccountService{
		directory: directory,
		validator: NewValidationHelper(),
	}
}

type CreateAccountRequest struct {
	Email     string `json:"email" validate:"required,email,max=120"`
	Password  string `json:"password" validate:"required,min=6,max=128"`
	FirstName string `json:"firstName" validate:"required,min=1,max=120"`
	LastName  string `json:"lastName" validate:"required,min=1,max=120"`
}

type UpdateAccountRequest struct {
	FirstName string `json:"firstName" validate:"omitempty,min=1,max=120"`
	LastName  string `json:"lastName" validate:"omitempty,min=1,max=120"`
	Address   string `json:"address" validate:"omitempty,max=256"`
}

// CreateAccount opens a new account: credentials, customer profile and
// a zero-balance account in the home currency. Account number
// generation retries on a uniqueness collision at insert time.
func (s *AccountService) CreateAccount(ctx context.Context, req CreateAccountRequest) *Error {
	hashed, err := hashPassword(req.Password)
	if err != nil {
		log.Printf("[ACCOUNT] Password hashing failed: %v", err)
		return ErrStorageFailure()
	}

	for attempt := 0; attempt < accountNumberRetries; attempt++ {
		number, err := GenerateAccountNumber()
		if err != nil {
			log.Printf("[ACCOUNT] Account number generation failed: %v", err)
			return ErrStorageFailure()
		}

		user := &models.User{Email: req.Email, Password: hashed}
		customer := &models.Customer{FirstName: req.FirstName, LastName: req.LastName}
		account := &models.Account{
			AccountNumber: number,
			Balance:       models.ZeroMoney(models.HomeCurrency()),
		}

		err = s.directory.CreateProfile(ctx, user, customer, account)
		if err == nil {
			log.Printf("[ACCOUNT] Account %s opened for user %d", number, user.ID)
			return nil
		}
		if errors.Is(err, storage.ErrDuplicateAccountNumber) {
			log.Printf("[ACCOUNT] Account number collision on attempt %d, regenerating", attempt+1)
			continue
		}
		if errors.Is(err, storage.ErrDuplicateEmail) {
			return ErrEmailExists()
		}
		log.Printf("[ACCOUNT] Account creation failed: %v", err)
		return ErrStorageFailure()
	}

	log.Printf("[ACCOUNT] Exhausted %d account number attempts", accountNumberRetries)
	return ErrStorageFailure()
}

func (s *AccountService) GetDetails(ctx context.Context, userID int64) (*storage.AccountDetails, *Error) {
	details, err := s.directory.GetAccountDetails(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, &Error{Code: "Account.NotFound", Description: "Account does not exist."}
	}
	if err != nil {
		log.Printf("[ACCOUNT] Details lookup failed for user %d: %v", userID, err)
		return nil, ErrStorageFailure()
	}
	return details, nil
}

func (s *AccountService) GetBeneficiaryByEmail(ctx context.Context, email string) (*storage.Beneficiary, *Error) {
	beneficiary, err := s.directory.GetBeneficiary(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrBeneficiaryNotFound()
	}
	if err != nil {
		log.Printf("[ACCOUNT] Beneficiary lookup failed: %v", err)
		return nil, ErrStorageFailure()
	}
	return beneficiary, nil
}

// UpdateProfile applies only fields that are present and actually
// changed; an all-unchanged request is a no-op success.
func (s *AccountService) UpdateProfile(ctx context.Context, userID int64, req UpdateAccountRequest) *Error {
	customer, err := s.directory.GetCustomerByUserID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return &Error{Code: "Account.NotFound", Description: "Account does not exist."}
	}
	if err != nil {
		log.Printf("[ACCOUNT] Customer lookup failed for user %d: %v", userID, err)
		return ErrStorageFailure()
	}

	changed := false
	if req.FirstName != "" && !strings.EqualFold(customer.FirstName, req.FirstName) {
		customer.FirstName = req.FirstName
		changed = true
	}
	if req.LastName != "" && !strings.EqualFold(customer.LastName, req.LastName) {
		customer.LastName = req.LastName
		changed = true
	}
	if req.Address != "" && !strings.EqualFold(customer.Address, req.Address) {
		customer.Address = req.Address
		changed = true
	}

	if !changed {
		return nil
	}
	if err := s.directory.UpdateCustomer(ctx, customer); err != nil {
		log.Printf("[ACCOUNT] Customer update failed for user %d: %v", userID, err)
		return ErrStorageFailure()
	}
	return nil
}

// Register handles POST /accounts.
func (s *AccountService) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req CreateAccountRequest
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

	if serviceErr := s.CreateAccount(r.Context(), req); serviceErr != nil {
		WriteError(w, serviceErr)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true})
}

// AccountDetails handles GET /accounts/me.
func (s *AccountService) AccountDetails(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		WriteError(w, &Error{Code: "Request.Unauthorized", Description: "Authentication required."})
		return
	}

	details, serviceErr := s.GetDetails(r.Context(), userID)
	if serviceErr != nil {
		WriteError(w, serviceErr)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// Beneficiary handles GET /accounts/beneficiary?email=.
func (s *AccountService) Beneficiary(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserID(r.Context()); !ok {
		WriteError(w, &Error{Code: "Request.Unauthorized", Description: "Authentication required."})
		return
	}

	email := r.URL.Query().Get("email")
	if email == "" {
		SendValidationError(w, "email query parameter is required", nil)
		return
	}

	beneficiary, serviceErr := s.GetBeneficiaryByEmail(r.Context(), email)
	if serviceErr != nil {
		WriteError(w, serviceErr)
		return
	}
	writeJSON(w, http.StatusOK, beneficiary)
}

// Update handles PUT /accounts/me.
func (s *AccountService) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		WriteError(w, &Error{Code: "Request.Unauthorized", Description: "Authentication required."})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req UpdateAccountRequest
	if err := dec.Decode(&req); err != nil {
		SendValidationError(w, "Invalid request body", nil)
		return
	}

	if err := s.validator.ValidateStruct(&req); err != nil {
		SendValidationError(w, "Validation failed", err)
		return
	}

	if serviceErr := s.UpdateProfile(r.Context(), userID, req); serviceErr != nil {
		WriteError(w, serviceErr)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// AccountQR handles GET /accounts/me/qr, returning a PNG QR code of the
// caller's account number for beneficiary capture.
func (s *AccountService) AccountQR(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		WriteError(w, &Error{Code: "Request.Unauthorized", Description: "Authentication required."})
		return
	}

	details, serviceErr := s.GetDetails(r.Context(), userID)
	if serviceErr != nil {
		WriteError(w, serviceErr)
		return
	}

	png, err := qrcode.Encode(details.AccountNumber, qrcode.Medium, 256)
	if err != nil {
		log.Printf("[ACCOUNT] QR encode failed for user %d: %v", userID, err)
		WriteError(w, ErrStorageFailure())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

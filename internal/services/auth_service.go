package services

import (
	"context"
	cryptorand "crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"golang.org/x/crypto/argon2"

	"github.com/nairabank/backend/internal/storage"
)

// AuthService verifies credentials and issues bearer tokens. Revoked
// tokens live on a Redis denylist until their natural expiry.
type AuthService struct {
	directory storage.Directory
	redis     *redis.Client
	validator *ValidationHelper
}

func NewAuthService(directory storage.Directory, redisClient *redis.Client) *AuthService {
	return &AuthService{
		directory: directory,
		redis:     redisClient,
		validator: NewValidationHelper(),
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type AuthResponse struct {
	Token         string `json:"token"`
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	AccountNumber string `json:"accountNumber"`
}

// Authenticate checks the password against the stored argon2id hash and
// issues an HS256 token carrying the user id.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*AuthResponse, *Error) {
	user, err := s.directory.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, invalidCredentials()
	}
	if err != nil {
		log.Printf("[AUTH] User lookup failed: %v", err)
		return nil, ErrStorageFailure()
	}

	if !verifyPassword(password, user.Password) {
		return nil, invalidCredentials()
	}

	details, err := s.directory.GetAccountDetails(ctx, user.ID)
	if err != nil {
		log.Printf("[AUTH] Account details lookup failed for user %d: %v", user.ID, err)
		return nil, ErrStorageFailure()
	}

	token, err := generateJWT(user.ID)
	if err != nil {
		log.Printf("[AUTH] Token generation failed for user %d: %v", user.ID, err)
		return nil, ErrStorageFailure()
	}

	return &AuthResponse{
		Token:         token,
		FullName:      details.FullName,
		Email:         user.Email,
		AccountNumber: details.AccountNumber,
	}, nil
}

func invalidCredentials() *Error {
	return &Error{Code: "Auth.InvalidCredentials", Description: "Invalid email or password."}
}

// Login handles POST /auth/login.
func (s *AuthService) Login(w http.ResponseWriter, r *http.Request) {
	log.Printf("[AUTH] Login attempt from IP: %s", r.RemoteAddr)

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req LoginRequest
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

	response, serviceErr := s.Authenticate(r.Context(), req.Email, req.Password)
	if serviceErr != nil {
		WriteError(w, serviceErr)
		return
	}

	log.Printf("[AUTH] Login successful for %s", req.Email)
	writeJSON(w, http.StatusOK, response)
}

// Logout handles POST /auth/logout, denylisting the presented token
// until its expiry window lapses.
func (s *AuthService) Logout(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("Authorization")
	if strings.HasPrefix(token, "Bearer ") {
		token = strings.TrimPrefix(token, "Bearer ")
		if s.redis != nil {
			expiry := time.Duration(viper.GetInt("jwt.expiry_hours")) * time.Hour
			if err := s.redis.Set(r.Context(), "denylist:"+token, "1", expiry).Err(); err != nil {
				log.Printf("[AUTH] Failed to denylist token: %v", err)
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

func generateJWT(userID int64) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Duration(viper.GetInt("jwt.expiry_hours")) * time.Hour).Unix(),
	})
	return token.SignedString([]byte(viper.GetString("jwt.secret_key")))
}

type argonParams struct {
	time       uint32
	memory     uint32
	threads    uint8
	keyLength  uint32
	saltLength int
}

func loadArgonParams() argonParams {
	viper.SetDefault("argon2.time", 1)
	viper.SetDefault("argon2.memory", 64*1024)
	viper.SetDefault("argon2.threads", 4)
	viper.SetDefault("argon2.key_length", 32)
	viper.SetDefault("argon2.salt_length", 16)
	return argonParams{
		time:       uint32(viper.GetInt("argon2.time")),
		memory:     uint32(viper.GetInt("argon2.memory")),
		threads:    uint8(viper.GetInt("argon2.threads")),
		keyLength:  uint32(viper.GetInt("argon2.key_length")),
		saltLength: viper.GetInt("argon2.salt_length"),
	}
}

func hashPassword(password string) (string, error) {
	params := loadArgonParams()
	salt := make([]byte, params.saltLength)
	if _, err := cryptorand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, params.time, params.memory, params.threads, params.keyLength)
	return fmt.Sprintf("%s$%s",
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(hash)), nil
}

func verifyPassword(password, hashedPassword string) bool {
	parts := strings.Split(hashedPassword, "$")
	if len(parts) != 2 {
		return false
	}
	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}
	hash, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}

	params := loadArgonParams()
	computed := argon2.IDKey([]byte(password), salt, params.time, params.memory, params.threads, uint32(len(hash)))
	return subtle.ConstantTimeCompare(hash, computed) == 1
}

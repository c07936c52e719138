package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"uptask/config"
)

func withConfig(t *testing.T) {
	t.Helper()
	previous := config.AppConfig
	config.AppConfig = config.Config{
		JWTSecret:  "unit-test-secret",
		SessionTTL: time.Hour,
		BcryptCost: 4,
	}
	t.Cleanup(func() { config.AppConfig = previous })
}

func TestJWTRoundTrip(t *testing.T) {
	withConfig(t)

	token, err := GenerateJWTToken(42)
	require.NoError(t, err)

	claims, err := ParseJWTToken(token)
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.UserID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestParseJWTToken_Rejects(t *testing.T) {
	withConfig(t)

	sign := func(claims jwt.Claims, secret string) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return token
	}
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", sign(&Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future}}, "other")},
		{"expired", sign(&Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))}}, "unit-test-secret")},
		{"no expiry", sign(&Claims{UserID: 1}, "unit-test-secret")},
		{"no subject", sign(&Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future}}, "unit-test-secret")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJWTToken(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	withConfig(t)

	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)
	assert.True(t, CheckPassword("password123", hash))
	assert.False(t, CheckPassword("password124", hash))
	assert.False(t, CheckPassword("password123", "not-a-hash"))
}

func TestGenerateOTP(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		require.Len(t, code, OTPLength)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', code)
		}
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 1)
}

type signupRequest struct {
	Name                 string `json:"name" validate:"required"`
	Email                string `json:"email" validate:"required,mailbox"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"eqfield=Password"`
	Status               string `json:"status" validate:"omitempty,oneof=pending completed"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		req     signupRequest
		wantErr string
	}{
		{
			name: "valid",
			req:  signupRequest{Name: "Ann", Email: "ann@example.com", Password: "password123", PasswordConfirmation: "password123"},
		},
		{
			name:    "missing name",
			req:     signupRequest{Email: "ann@example.com", Password: "password123", PasswordConfirmation: "password123"},
			wantErr: "name is required",
		},
		{
			name:    "bad email",
			req:     signupRequest{Name: "Ann", Email: "ann-at-example", Password: "password123", PasswordConfirmation: "password123"},
			wantErr: "email must be a valid email",
		},
		{
			name:    "short password",
			req:     signupRequest{Name: "Ann", Email: "ann@example.com", Password: "short", PasswordConfirmation: "short"},
			wantErr: "password must be at least 8 characters",
		},
		{
			name:    "mismatch",
			req:     signupRequest{Name: "Ann", Email: "ann@example.com", Password: "password123", PasswordConfirmation: "password321"},
			wantErr: "passwords do not match",
		},
		{
			name:    "bad status",
			req:     signupRequest{Name: "Ann", Email: "ann@example.com", Password: "password123", PasswordConfirmation: "password123", Status: "done"},
			wantErr: "status must be one of: pending completed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateStruct_JoinsMessages(t *testing.T) {
	err := ValidateStruct(signupRequest{Password: "x", PasswordConfirmation: "x"})
	require.Error(t, err)
	assert.Equal(t, "name is required, email is required, password must be at least 8 characters", err.Error())
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrUnauthorized, 401},
		{ErrInvalidToken, 401},
		{fmt.Errorf("project: %w", ErrNotFound), 404},
		{ErrInvalidAction, 400},
		{ErrConflict, 409},
		{errors.New("boom"), 500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusCode(tt.err), tt.err.Error())
	}
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/bad", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusBadRequest, "name is required") })
	app.Get("/missing", func(c *fiber.Ctx) error { return fmt.Errorf("lookup: %w", ErrNotFound) })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("database on fire") })

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/bad", 400, `{"error":"name is required"}`},
		{"/missing", 404, `{"error":"lookup: not found"}`},
		{"/boom", 500, `{"error":"Internal server error"}`},
	}
	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, tt.status, resp.StatusCode, tt.path)
		assert.JSONEq(t, tt.body, string(body), tt.path)
	}
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, msg Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, msg)
	return "id", nil
}

func TestAuthEmail(t *testing.T) {
	mailer := &recordingMailer{}
	emails := NewAuthEmail(mailer, "http://app.test", 10*time.Minute)

	emails.SendConfirmationEmail(Recipient{Email: "ann@example.com", Name: "Ann"}, "123456")
	emails.SendPasswordResetToken(Recipient{Email: "bob@example.com", Name: "Bob"}, "654321")
	emails.Wait()

	require.Len(t, mailer.sent, 2)
	byRecipient := map[string]Message{}
	for _, msg := range mailer.sent {
		byRecipient[msg.To] = msg
	}

	confirm := byRecipient["ann@example.com"]
	assert.Contains(t, confirm.Subject, "Confirm your account")
	assert.Contains(t, confirm.HTML, "<b>123456</b>")
	assert.Contains(t, confirm.HTML, "http://app.test/auth/confirm-account")
	assert.Contains(t, confirm.HTML, "10 minutes")

	reset := byRecipient["bob@example.com"]
	assert.Contains(t, reset.Subject, "Reset your password")
	assert.Contains(t, reset.HTML, "<b>654321</b>")
	assert.True(t, strings.Contains(reset.HTML, "http://app.test/auth/new-password"))
}

func TestAuthEmail_DeliveryFailureIsSwallowed(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("smtp down")}
	emails := NewAuthEmail(mailer, "http://app.test", 10*time.Minute)

	emails.SendConfirmationEmail(Recipient{Email: "ann@example.com", Name: "Ann"}, "123456")
	emails.Wait()

	assert.Empty(t, mailer.sent)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "10 minutes", FormatDuration(10*time.Minute))
	assert.Equal(t, "2 hours", FormatDuration(2*time.Hour))
	assert.Equal(t, "180 days", FormatDuration(180*24*time.Hour))
	assert.Equal(t, "30 seconds", FormatDuration(30*time.Second))
}

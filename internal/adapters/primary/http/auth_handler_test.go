package http

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	stack := newTestStack(t)
	email := uuid.NewString() + "@example.com"

	body := map[string]string{
		"fullName": "Ada Lovelace",
		"email":    email,
		"password": "Password1",
	}

	recorder := doJSON(t, stack, stdhttp.MethodPost, "/auth/register", "", body)
	require.Equal(t, stdhttp.StatusCreated, recorder.Code)

	var account AccountDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&account))
	assert.Equal(t, email, account.Email)
	assert.False(t, account.HasEntranceKey)

	// A second registration with the same email conflicts.
	recorder = doJSON(t, stack, stdhttp.MethodPost, "/auth/register", "", body)
	assert.Equal(t, stdhttp.StatusConflict, recorder.Code)

	recorder = doJSON(t, stack, stdhttp.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": "Password1",
	})
	require.Equal(t, stdhttp.StatusOK, recorder.Code)

	var token TokenResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&token))
	assert.NotEmpty(t, token.Token)
	assert.Equal(t, account.ID, token.Account.ID)

	claims, err := stack.tokenManager.ValidateToken(token.Token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.AccountID.String())
}

func TestLogin_WrongPassword(t *testing.T) {
	stack := newTestStack(t)
	email := uuid.NewString() + "@example.com"

	_, err := stack.authService.Register(context.Background(), "Ada Lovelace", email, "Password1")
	require.NoError(t, err)

	recorder := doJSON(t, stack, stdhttp.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": "WrongPassword1",
	})
	assert.Equal(t, stdhttp.StatusUnauthorized, recorder.Code)
}

func TestRegister_WeakPassword(t *testing.T) {
	stack := newTestStack(t)

	recorder := doJSON(t, stack, stdhttp.MethodPost, "/auth/register", "", map[string]string{
		"fullName": "Ada Lovelace",
		"email":    uuid.NewString() + "@example.com",
		"password": "short",
	})
	assert.Equal(t, stdhttp.StatusUnprocessableEntity, recorder.Code)
}

func TestEntranceKeyRegistration(t *testing.T) {
	stack := newTestStack(t)
	token := registerAndLogin(t, stack)

	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	recorder := doJSON(t, stack, stdhttp.MethodPut, "/me/entrance-key", token, map[string]string{
		"key": base64.StdEncoding.EncodeToString(pub),
	})
	require.Equal(t, stdhttp.StatusNoContent, recorder.Code)

	recorder = doJSON(t, stack, stdhttp.MethodGet, "/me", token, nil)
	require.Equal(t, stdhttp.StatusOK, recorder.Code)

	var account AccountDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&account))
	assert.True(t, account.HasEntranceKey)
}

func TestEntranceKey_RejectsShortKey(t *testing.T) {
	stack := newTestStack(t)
	token := registerAndLogin(t, stack)

	recorder := doJSON(t, stack, stdhttp.MethodPut, "/me/entrance-key", token, map[string]string{
		"key": base64.StdEncoding.EncodeToString([]byte("too-short")),
	})
	assert.Equal(t, stdhttp.StatusBadRequest, recorder.Code)
}

func TestMe_Unauthorized(t *testing.T) {
	stack := newTestStack(t)

	req := httptest.NewRequest(stdhttp.MethodGet, "/me", nil)
	recorder := httptest.NewRecorder()
	stack.router.ServeHTTP(recorder, req)

	assert.Equal(t, stdhttp.StatusUnauthorized, recorder.Code)
}

// --- Shared helpers ---

// doJSON performs a JSON request against the stack's router.
func doJSON(t *testing.T, stack *testStack, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	stack.router.ServeHTTP(recorder, req)
	return recorder
}

// registerAndLogin creates a fresh account and returns a bearer token.
func registerAndLogin(t *testing.T, stack *testStack) string {
	t.Helper()

	email := uuid.NewString() + "@example.com"
	account, err := stack.authService.Register(context.Background(), "Test Account", email, "Password1")
	require.NoError(t, err)

	token, err := stack.tokenManager.GenerateToken(account.ID)
	require.NoError(t, err)
	return token
}

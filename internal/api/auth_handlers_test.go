package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"example.com/galaxyfit/internal/domain"
)

func TestSignupReturnsTokenAndUser(t *testing.T) {
	users := &mockUserRepo{}
	h := newTestHandler(users, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/signup",
		jsonBody(t, map[string]interface{}{"email": "New@Example.com", "password": "secret1", "name": "Ada"}))
	rec := serve(h, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (%s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Fatalf("success = false: %s", rec.Body.String())
	}

	var data struct {
		User struct {
			ID    string  `json:"id"`
			Email string  `json:"email"`
			Name  *string `json:"name"`
		} `json:"user"`
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Token != "test-token" {
		t.Fatalf("token = %q, want test-token", data.Token)
	}
	if data.User.Email != "new@example.com" {
		t.Fatalf("email = %q, want folded lowercase", data.User.Email)
	}
	if data.User.Name == nil || *data.User.Name != "Ada" {
		t.Fatalf("name not echoed back: %+v", data.User)
	}
	if len(users.created) != 1 {
		t.Fatalf("created %d users, want 1", len(users.created))
	}
}

func TestSignupRejectsShortPassword(t *testing.T) {
	h := newTestHandler(nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/signup",
		jsonBody(t, map[string]string{"email": "a@x.com", "password": "12345"}))
	rec := serve(h, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error != "Password must be at least 6 characters" {
		t.Fatalf("error = %q", env.Error)
	}
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	users := &mockUserRepo{byEmail: map[string]*domain.User{
		"a@x.com": {ID: "user-1", Email: "a@x.com"},
	}}
	h := newTestHandler(users, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/signup",
		jsonBody(t, map[string]string{"email": "A@X.com", "password": "secret1"}))
	rec := serve(h, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Error != "Email already registered" {
		t.Fatalf("error = %q", env.Error)
	}
}

func TestSignupRequiresEmailAndPassword(t *testing.T) {
	h := newTestHandler(nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/signup",
		jsonBody(t, map[string]string{"email": "a@x.com"}))
	rec := serve(h, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Error != "Email and password are required" {
		t.Fatalf("error = %q", env.Error)
	}
}

func TestLoginSuccess(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	users := &mockUserRepo{byEmail: map[string]*domain.User{
		"a@x.com": {ID: "user-1", Email: "a@x.com", PasswordHash: string(hash)},
	}}
	h := newTestHandler(users, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		jsonBody(t, map[string]string{"email": "a@x.com", "password": "secret1"}))
	rec := serve(h, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	var data struct {
		Token string `json:"token"`
	}
	env := decodeEnvelope(t, rec)
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Token != "test-token" {
		t.Fatalf("token = %q", data.Token)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	users := &mockUserRepo{byEmail: map[string]*domain.User{
		"a@x.com": {ID: "user-1", Email: "a@x.com", PasswordHash: string(hash)},
	}}
	h := newTestHandler(users, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		jsonBody(t, map[string]string{"email": "a@x.com", "password": "wrong"}))
	rec := serve(h, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Error != "Invalid email or password" {
		t.Fatalf("error = %q", env.Error)
	}
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	h := newTestHandler(nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		jsonBody(t, map[string]string{"email": "nobody@x.com", "password": "secret1"}))
	rec := serve(h, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Error != "Invalid email or password" {
		t.Fatalf("error = %q", env.Error)
	}
}

func TestMeReturnsCurrentUser(t *testing.T) {
	last := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	users := &mockUserRepo{byEmail: map[string]*domain.User{
		"a@x.com": {ID: "user-1", Email: "a@x.com", LastLogin: &last},
	}}
	h := newTestHandler(users, nil, nil)

	rec := serve(h, authedRequest(t, http.MethodGet, "/auth/me", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	var data struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	env := decodeEnvelope(t, rec)
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.User.ID != "user-1" {
		t.Fatalf("user id = %q", data.User.ID)
	}
}

func TestMeUnknownUser(t *testing.T) {
	h := newTestHandler(nil, nil, nil)

	rec := serve(h, authedRequest(t, http.MethodGet, "/auth/me", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Error != "User not found" {
		t.Fatalf("error = %q", env.Error)
	}
}

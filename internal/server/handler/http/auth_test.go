package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	handler "github.com/avolkov/cartsync/internal/server/handler/http"
	"github.com/avolkov/cartsync/internal/service"
)

// fakeAuthService records calls and returns preconfigured results.
type fakeAuthService struct {
	registeredLogin string
	registerErr     error

	token    string
	loginErr error
}

func (f *fakeAuthService) Register(ctx context.Context, login, password string) error {
	f.registeredLogin = login
	return f.registerErr
}

func (f *fakeAuthService) Login(ctx context.Context, login, password string) (string, error) {
	return f.token, f.loginErr
}

func postJSON(t *testing.T, h http.HandlerFunc, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func TestRegister_BadRequest(t *testing.T) {
	h := &handler.AuthHandler{AuthService: &fakeAuthService{}}

	cases := []map[string]string{
		{},
		{"login": "alice"},
		{"password": "secret"},
	}
	for _, payload := range cases {
		w := postJSON(t, h.Register, "/api/register", payload)
		if w.Code != http.StatusBadRequest {
			t.Errorf("payload %v: status = %d; want %d", payload, w.Code, http.StatusBadRequest)
		}
	}
}

func TestRegister_Conflict(t *testing.T) {
	fake := &fakeAuthService{registerErr: service.ErrUserExists}
	h := &handler.AuthHandler{AuthService: fake}

	w := postJSON(t, h.Register, "/api/register", map[string]string{
		"login": "alice", "password": "secret",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d; want %d", w.Code, http.StatusConflict)
	}
}

func TestRegister_Success(t *testing.T) {
	fake := &fakeAuthService{}
	h := &handler.AuthHandler{AuthService: fake}

	w := postJSON(t, h.Register, "/api/register", map[string]string{
		"login": "alice", "password": "secret",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusOK)
	}
	if fake.registeredLogin != "alice" {
		t.Errorf("registered login = %q; want alice", fake.registeredLogin)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	fake := &fakeAuthService{loginErr: service.ErrInvalidCredentials}
	h := &handler.AuthHandler{AuthService: fake}

	w := postJSON(t, h.Login, "/api/login", map[string]string{
		"login": "alice", "password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d; want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestLogin_ServiceError(t *testing.T) {
	fake := &fakeAuthService{loginErr: errors.New("db down")}
	h := &handler.AuthHandler{AuthService: fake}

	w := postJSON(t, h.Login, "/api/login", map[string]string{
		"login": "alice", "password": "secret",
	})
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d; want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestLogin_Success(t *testing.T) {
	fake := &fakeAuthService{token: "tok-123"}
	h := &handler.AuthHandler{AuthService: fake}

	w := postJSON(t, h.Login, "/api/login", map[string]string{
		"login": "alice", "password": "secret",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusOK)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if resp["token"] != "tok-123" {
		t.Errorf("token = %q; want tok-123", resp["token"])
	}
}

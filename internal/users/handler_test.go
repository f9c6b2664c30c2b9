package users_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"resume-tailor/internal/bootstrap"
	"resume-tailor/internal/shared/config"
)

func newTestApp(t *testing.T) *bootstrap.App {
	t.Helper()
	app, err := bootstrap.Build(config.Config{
		Env:           "dev",
		LocalStoreDir: t.TempDir(),
		JWTTTL:        time.Hour,
	})
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	t.Cleanup(app.Close)
	return app
}

func post(t *testing.T, app *bootstrap.App, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	return resp
}

func TestRegisterLoginMe(t *testing.T) {
	app := newTestApp(t)

	reg := post(t, app, "/api/v1/auth/register", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "s3cret!",
	})
	if reg.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", reg.Code, reg.Body.String())
	}

	dup := post(t, app, "/api/v1/auth/register", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "s3cret!",
	})
	if dup.Code != http.StatusConflict {
		t.Fatalf("duplicate: expected 409, got %d", dup.Code)
	}

	bad := post(t, app, "/api/v1/auth/login", map[string]string{"email": "ada@example.com", "password": "nope"})
	if bad.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", bad.Code)
	}

	login := post(t, app, "/api/v1/auth/login", map[string]string{"email": "ada@example.com", "password": "s3cret!"})
	if login.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", login.Code, login.Body.String())
	}
	var tok struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(login.Body.Bytes(), &tok); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if tok.AccessToken == "" || tok.TokenType != "Bearer" {
		t.Fatalf("unexpected token response %s", login.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	me := httptest.NewRecorder()
	app.Router.ServeHTTP(me, req)
	if me.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", me.Code)
	}
	var user struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(me.Body.Bytes(), &user); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Fatalf("unexpected me %s", me.Body.String())
	}
}

func TestMeRequiresToken(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

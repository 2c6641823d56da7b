package web

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"secretserver/auth/oauth"
	authservice "secretserver/auth/service"
	"secretserver/internal/config"
	"secretserver/internal/service"
	"secretserver/internal/storage/memory"
	"secretserver/internal/web/webpath"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

func newTestServer(t *testing.T) (*Server, *memory.Storage) {
	t.Helper()
	l := logrus.New()
	l.SetOutput(io.Discard)
	st := memory.New()
	authService := authservice.New(authservice.Config{
		Token:      "test-signing-secret",
		Expiration: "1h",
		BcryptCost: bcrypt.MinCost,
	}, st, l)
	googleService := oauth.New(oauth.Config{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
	}, st, l)
	secretService := service.New(st, l)
	server, err := New(config.Server{Host: "localhost", Port: 3000}, authService, googleService, secretService, l)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return server, st
}

func postForm(t *testing.T, s *Server, path string, form url.Values, cookies []*http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func get(t *testing.T, s *Server, path string, cookies []*http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func sessionCookieOf(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func assertRedirect(t *testing.T, resp *http.Response, target string) {
	t.Helper()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusFound)
	}
	if loc := resp.Header.Get("Location"); loc != target {
		t.Fatalf("Location = %q, want %q", loc, target)
	}
}

func TestSubmitRequiresAuth(t *testing.T) {
	server, st := newTestServer(t)

	resp := get(t, server, webpath.Submit, nil)
	assertRedirect(t, resp, webpath.Login)

	form := url.Values{"secret": {"should not land"}}
	resp = postForm(t, server, webpath.Submit, form, nil)
	assertRedirect(t, resp, webpath.Login)

	secrets, err := st.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(secrets) != 0 {
		t.Errorf("store mutated by unauthenticated submit: %v", secrets)
	}
}

func TestRegisterSubmitSecretsScenario(t *testing.T) {
	server, _ := newTestServer(t)

	form := url.Values{"username": {"alice"}, "password": {"pw123"}}
	resp := postForm(t, server, webpath.Register, form, nil)
	assertRedirect(t, resp, webpath.Secrets)
	sessionCookieOf(t, resp)

	// fresh login on the same credentials also works
	resp = postForm(t, server, webpath.Login, form, nil)
	assertRedirect(t, resp, webpath.Secrets)
	session := sessionCookieOf(t, resp)

	resp = postForm(t, server, webpath.Submit, url.Values{"secret": {"hello"}}, []*http.Cookie{session})
	assertRedirect(t, resp, webpath.Secrets)

	resp = get(t, server, webpath.Secrets, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /secrets status = %d, want 200", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	page := string(body)
	if !strings.Contains(page, "hello") {
		t.Errorf("secrets page is missing the submitted secret")
	}
	if strings.Contains(page, "alice") {
		t.Errorf("secrets page leaks the owner's username")
	}
}

func TestLoginFailureRedirectsBack(t *testing.T) {
	server, _ := newTestServer(t)

	form := url.Values{"username": {"nobody"}, "password": {"pw"}}
	resp := postForm(t, server, webpath.Login, form, nil)
	assertRedirect(t, resp, webpath.Login)
}

func TestDuplicateRegisterRedirectsBack(t *testing.T) {
	server, _ := newTestServer(t)

	form := url.Values{"username": {"alice"}, "password": {"pw123"}}
	resp := postForm(t, server, webpath.Register, form, nil)
	assertRedirect(t, resp, webpath.Secrets)

	resp = postForm(t, server, webpath.Register, form, nil)
	assertRedirect(t, resp, webpath.Register)
}

func TestLogoutClearsSession(t *testing.T) {
	server, _ := newTestServer(t)

	form := url.Values{"username": {"alice"}, "password": {"pw123"}}
	resp := postForm(t, server, webpath.Register, form, nil)
	session := sessionCookieOf(t, resp)

	resp = get(t, server, webpath.Logout, []*http.Cookie{session})
	assertRedirect(t, resp, webpath.Home)
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie && c.Value != "" {
			t.Errorf("logout left a live session cookie")
		}
	}

	// logging out again is not an error
	resp = get(t, server, webpath.Logout, nil)
	assertRedirect(t, resp, webpath.Home)
}

func TestGoogleAuthRedirect(t *testing.T) {
	server, _ := newTestServer(t)

	resp := get(t, server, webpath.AuthGoogle, nil)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusFound)
	}
	loc := resp.Header.Get("Location")
	if !strings.Contains(loc, "accounts.google.com") {
		t.Errorf("Location = %q, want google authorize endpoint", loc)
	}
	var state string
	for _, c := range resp.Cookies() {
		if c.Name == stateCookieName {
			state = c.Value
		}
	}
	if state == "" {
		t.Fatal("no state cookie set")
	}
	if !strings.Contains(loc, "state="+state) {
		t.Errorf("Location = %q does not pin state %q", loc, state)
	}
}

func TestGoogleCallbackStateMismatch(t *testing.T) {
	server, st := newTestServer(t)

	resp := get(t, server, webpath.AuthGoogleCallback+"?state=forged&code=x", nil)
	assertRedirect(t, resp, webpath.Login)
	if st.UserCount() != 0 {
		t.Errorf("state mismatch still created a user")
	}
}

func TestGoogleCallbackClearsStateCookie(t *testing.T) {
	server, _ := newTestServer(t)

	resp := get(t, server, webpath.AuthGoogleCallback+"?state=forged&code=x", nil)
	assertRedirect(t, resp, webpath.Login)

	var cleared *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == stateCookieName {
			cleared = c
		}
	}
	if cleared == nil {
		t.Fatal("callback did not touch the state cookie")
	}
	// the expiring cookie must target the path the original was set
	// with, or the browser keeps the original
	if cleared.Path != webpath.AuthGoogleCallback {
		t.Errorf("cleared state cookie path = %q, want %q", cleared.Path, webpath.AuthGoogleCallback)
	}
	if cleared.Value != "" {
		t.Errorf("cleared state cookie value = %q, want empty", cleared.Value)
	}
	if !cleared.Expires.Before(time.Now()) {
		t.Errorf("cleared state cookie expires = %v, want in the past", cleared.Expires)
	}
}

func TestGoogleCallbackDenied(t *testing.T) {
	server, st := newTestServer(t)

	resp := get(t, server, webpath.AuthGoogle, nil)
	var state *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == stateCookieName {
			state = c
		}
	}
	if state == nil {
		t.Fatal("no state cookie set")
	}

	resp = get(t, server, webpath.AuthGoogleCallback+"?state="+state.Value+"&error=access_denied", []*http.Cookie{state})
	assertRedirect(t, resp, webpath.Login)
	if st.UserCount() != 0 {
		t.Errorf("denied consent still created a user")
	}
}

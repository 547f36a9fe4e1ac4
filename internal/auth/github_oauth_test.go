package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestGetLoginURL_ContainsRequiredParams(t *testing.T) {
	p := NewGitHubOAuthProvider(GitHubOAuthConfig{
		ClientID:    "client-123",
		CallbackURL: "https://example.com/api/auth/callback",
	})

	loginURL := p.GetLoginURL("state-abc")

	parsed, err := url.Parse(loginURL)
	if err != nil {
		t.Fatalf("failed to parse login URL: %v", err)
	}

	q := parsed.Query()
	if q.Get("client_id") != "client-123" {
		t.Errorf("client_id = %q, want \"client-123\"", q.Get("client_id"))
	}
	if q.Get("state") != "state-abc" {
		t.Errorf("state = %q, want \"state-abc\"", q.Get("state"))
	}
	if q.Get("redirect_uri") != "https://example.com/api/auth/callback" {
		t.Errorf("redirect_uri = %q", q.Get("redirect_uri"))
	}
	// PR作成にはrepoスコープが必要
	if !strings.Contains(q.Get("scope"), "repo") {
		t.Errorf("scope = %q, should contain \"repo\"", q.Get("scope"))
	}
}

func TestExchangeCode_FullFlow(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		if r.FormValue("code") != "auth-code" {
			t.Errorf("code = %q, want \"auth-code\"", r.FormValue("code"))
		}
		if r.FormValue("client_secret") != "secret-xyz" {
			t.Errorf("client_secret = %q", r.FormValue("client_secret"))
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Error("Accept header should be application/json")
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "gho_validtoken",
			"token_type":   "bearer",
		})
	}))
	defer tokenServer.Close()

	userServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer gho_validtoken" {
			t.Errorf("Authorization = %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":    int64(583231),
			"login": "octocat",
			"name":  "The Octocat",
		})
	}))
	defer userServer.Close()

	p := NewGitHubOAuthProvider(GitHubOAuthConfig{
		ClientID:     "client-123",
		ClientSecret: "secret-xyz",
		CallbackURL:  "https://example.com/callback",
		TokenURL:     tokenServer.URL,
		UserURL:      userServer.URL,
	})

	identity, err := p.ExchangeCode(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if identity.UserID != "583231" {
		t.Errorf("UserID = %q, want \"583231\"", identity.UserID)
	}
	if identity.Username != "octocat" {
		t.Errorf("Username = %q, want \"octocat\"", identity.Username)
	}
	if identity.AccessToken != "gho_validtoken" {
		t.Errorf("AccessToken = %q", identity.AccessToken)
	}
}

func TestExchangeCode_TokenEndpointRejectsWith200(t *testing.T) {
	// GitHubはエラー時も200でerrorフィールドを返すことがある
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"error":             "bad_verification_code",
			"error_description": "The code passed is incorrect or expired.",
		})
	}))
	defer tokenServer.Close()

	p := NewGitHubOAuthProvider(GitHubOAuthConfig{
		TokenURL: tokenServer.URL,
		UserURL:  "http://unused.invalid",
	})

	if _, err := p.ExchangeCode(context.Background(), "expired-code"); err == nil {
		t.Fatal("expected error when token endpoint returns an error field")
	}
}

func TestExchangeCode_UserFetchFailure(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"access_token": "gho_token"})
	}))
	defer tokenServer.Close()

	userServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer userServer.Close()

	p := NewGitHubOAuthProvider(GitHubOAuthConfig{
		TokenURL: tokenServer.URL,
		UserURL:  userServer.URL,
	})

	if _, err := p.ExchangeCode(context.Background(), "code"); err == nil {
		t.Fatal("expected error when user fetch fails")
	}
}

func TestExchangeCode_EmptyAccessToken(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"token_type": "bearer"})
	}))
	defer tokenServer.Close()

	p := NewGitHubOAuthProvider(GitHubOAuthConfig{
		TokenURL: tokenServer.URL,
		UserURL:  "http://unused.invalid",
	})

	if _, err := p.ExchangeCode(context.Background(), "code"); err == nil {
		t.Fatal("expected error for empty access token")
	}
}

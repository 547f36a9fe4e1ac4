package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/loglift/internal/auth"
	"github.com/hitoshi/loglift/internal/middleware"
	"github.com/hitoshi/loglift/internal/model"
	"github.com/hitoshi/loglift/internal/session"
)

// oauthStateCookie はCSRF対策のstate値を保持するCookie名。
const oauthStateCookie = "oauth_state"

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	GetLoginURL(state string) string
	HandleCallback(ctx context.Context, code string) (string, error)
}

// SessionVerifier はセッショントークンの検証インターフェース。
type SessionVerifier interface {
	VerifyToken(token string) *session.Claims
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	BaseURL         string
	CookieDomain    string
	CookieSecure    bool
	SessionMaxAge   int  // セッションCookieの有効期間（秒）
	OAuthConfigured bool // GitHub OAuth設定の有無
}

// AuthHandler はGitHub OAuth認証関連のHTTPハンドラー。
type AuthHandler struct {
	service  AuthServiceInterface
	verifier SessionVerifier
	config   AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, verifier SessionVerifier, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service:  service,
		verifier: verifier,
		config:   config,
	}
}

// cookieConfig はセッションCookieの属性を返す。
func (h *AuthHandler) cookieConfig() session.CookieConfig {
	return session.CookieConfig{
		Domain: h.config.CookieDomain,
		Secure: h.config.CookieSecure,
		MaxAge: h.config.SessionMaxAge,
	}
}

// Login はGitHub OAuthフローを開始する。
// GET /api/auth/github
// OAuth設定が欠落している場合は500を返す。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.config.OAuthConfigured {
		writeAPIError(w, http.StatusInternalServerError, model.NewOAuthNotConfiguredError())
		return
	}

	state, err := auth.GenerateState()
	if err != nil {
		slog.Error("failed to generate oauth state", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	// stateをCookieに保存（CSRF対策）
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10分
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.service.GetLoginURL(state), http.StatusTemporaryRedirect)
}

// Callback はOAuthコールバックを処理する。
// GET /api/auth/callback?code=xxx&state=yyy
// 失敗時はホームにクエリパラメータのエラーフラグ付きでリダイレクトする。
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	// 1. 認可コードの確認
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, h.config.BaseURL+"/?error=no_code", http.StatusTemporaryRedirect)
		return
	}

	// 2. stateの検証（CSRF対策）
	state := r.URL.Query().Get("state")
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		slog.Warn("oauth state mismatch", slog.String("query_state", state))
		http.Redirect(w, r, h.config.BaseURL+"/?error=auth_failed", http.StatusTemporaryRedirect)
		return
	}

	// stateクッキーを削除
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	// 3. 認証処理（コード交換 + トークン発行）
	token, err := h.service.HandleCallback(r.Context(), code)
	if err != nil {
		slog.Error("oauth callback failed", slog.String("error", err.Error()))
		http.Redirect(w, r, h.config.BaseURL+"/?error=auth_failed", http.StatusTemporaryRedirect)
		return
	}

	// 4. セッションCookieを設定（HTTP Only）
	session.SetCookie(w, token, h.cookieConfig())

	// 5. フロントエンドにリダイレクト
	http.Redirect(w, r, h.config.BaseURL, http.StatusTemporaryRedirect)
}

// Logout はセッションCookieを削除する。
// POST /api/auth/logout
// サーバー側に失効リストは持たないため、Cookie削除のみを行う。
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session.ClearCookie(w, h.cookieConfig())
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Session は現在のセッションクレームを返す。
// GET /api/auth/session
// セッションがない場合もエラーにせず{"session": null}を返す。
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	token := session.TokenFromRequest(r)
	claims := h.verifier.VerifyToken(token)
	if claims == nil {
		writeJSON(w, http.StatusOK, map[string]any{"session": nil})
		return
	}

	// アクセストークンはレスポンスに含めない
	writeJSON(w, http.StatusOK, map[string]any{
		"session": map[string]string{
			"userId":   claims.UserID,
			"username": claims.Username,
		},
	})
}

// Package session は署名付きセッショントークンの発行と検証を提供する。
// サーバー側にセッションストアは持たず、HS256署名のJWTをCookieで運搬する。
// ログアウトはCookie削除のみで、トークン自体は有効期限まで暗号的に有効なまま残る
// （失効リストは持たない設計）。
package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultMaxAge はセッションの既定の有効期間（7日）。
const DefaultMaxAge = 7 * 24 * time.Hour

// CookieName はセッショントークンを運搬するCookie名。
const CookieName = "session"

// Claims は署名付きトークンに格納するペイロードを表す。
type Claims struct {
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	GitHubToken string `json:"githubToken"`
	jwt.RegisteredClaims
}

// Manager はセッショントークンの発行・検証を行う。
// 署名鍵はプロセス起動時に1回設定され、以降は読み取り専用。
type Manager struct {
	secret []byte
	maxAge time.Duration
}

// NewManager はManagerを生成する。
// maxAgeが0以下の場合はDefaultMaxAgeを使用する。
func NewManager(secret string, maxAge time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Manager{
		secret: []byte(secret),
		maxAge: maxAge,
	}, nil
}

// CreateToken はクレームに有効期限を付与してHS256で署名し、トークン文字列を返す。
func (m *Manager) CreateToken(userID, username, githubToken string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:      userID,
		Username:    username,
		GitHubToken: githubToken,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.maxAge)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// VerifyToken はトークンの署名と有効期限を検証し、クレームを返す。
// 検証失敗（期限切れ、改ざん、アルゴリズム不一致を含む）は
// エラーではなく「セッションなし」としてnilを返す。
func (m *Manager) VerifyToken(tokenString string) *Claims {
	if tokenString == "" {
		return nil
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil
	}
	return claims
}

// MaxAge はセッションの有効期間を返す。Cookieのmax-age設定に使用する。
func (m *Manager) MaxAge() time.Duration {
	return m.maxAge
}

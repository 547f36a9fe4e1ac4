// Package auth はGitHub OAuth認証フローとセッション発行を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
)

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
type OAuthProvider interface {
	// GetLoginURL はOAuth認証URLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードをトークンに交換し、ユーザー情報を取得する。
	ExchangeCode(ctx context.Context, code string) (*GitHubIdentity, error)
}

// TokenIssuer は署名付きセッショントークンの発行インターフェース。
// session.Managerの部分集合として定義する。
type TokenIssuer interface {
	CreateToken(userID, username, githubToken string) (string, error)
}

// Service は認証に関するビジネスロジックを提供する。
// セッションストアは持たず、署名付きトークンの発行のみを行う。
type Service struct {
	oauth  OAuthProvider
	issuer TokenIssuer
}

// NewService はServiceを生成する。
func NewService(oauth OAuthProvider, issuer TokenIssuer) *Service {
	return &Service{
		oauth:  oauth,
		issuer: issuer,
	}
}

// GetLoginURL はOAuth認証URLを生成する。
func (s *Service) GetLoginURL(state string) string {
	return s.oauth.GetLoginURL(state)
}

// HandleCallback はOAuthコールバックを処理し、署名付きセッショントークンを発行する。
// ユーザーレコードは永続化しない（GitHubのユーザーIDをそのままクレームに載せる）。
func (s *Service) HandleCallback(ctx context.Context, code string) (string, error) {
	// 1. 認可コードをトークンに交換し、ユーザー情報を取得
	identity, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	// 2. セッショントークンを発行
	token, err := s.issuer.CreateToken(identity.UserID, identity.Username, identity.AccessToken)
	if err != nil {
		return "", fmt.Errorf("failed to create session token: %w", err)
	}

	slog.Info("user logged in",
		slog.String("user_id", identity.UserID),
		slog.String("username", identity.Username),
	)

	return token, nil
}

// GenerateState はCSRF対策用のランダムなstate値を生成する。
func GenerateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

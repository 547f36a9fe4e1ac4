// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, github, transform, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeOAuthNotConfigured = "OAUTH_NOT_CONFIGURED"
	ErrCodeRepoRequired       = "REPO_REQUIRED"
	ErrCodeFilesRequired      = "FILES_REQUIRED"
	ErrCodeInputTooLong       = "INPUT_TOO_LONG"
	ErrCodeScanFailed         = "SCAN_FAILED"
	ErrCodeTransformFailed    = "TRANSFORM_FAILED"
	ErrCodeRepoListFailed     = "REPO_LIST_FAILED"
	ErrCodePRFailed           = "PR_FAILED"
)

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "GitHubでログインしてください。",
	}
}

// NewInvalidRequestError はリクエストボディが解析できない場合のエラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewOAuthNotConfiguredError はOAuth設定が欠落している場合のエラーを生成する。
func NewOAuthNotConfiguredError() *APIError {
	return &APIError{
		Code:     ErrCodeOAuthNotConfigured,
		Message:  "GitHub OAuthが設定されていません。",
		Category: "system",
		Action:   "サーバー管理者に連絡してください。",
	}
}

// NewRepoRequiredError はowner/repoが欠落している場合のエラーを生成する。
func NewRepoRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeRepoRequired,
		Message:  "ownerとrepoは必須です。",
		Category: "validation",
		Action:   "リポジトリを選択してから再度お試しください。",
	}
}

// NewFilesRequiredError は対象ファイルが指定されていない場合のエラーを生成する。
func NewFilesRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeFilesRequired,
		Message:  "対象ファイルが指定されていません。",
		Category: "validation",
		Action:   "1件以上のファイルを選択してください。",
	}
}

// NewInputTooLongError は入力コードが空または上限を超えている場合のエラーを生成する。
func NewInputTooLongError(limit int) *APIError {
	return &APIError{
		Code:     ErrCodeInputTooLong,
		Message:  fmt.Sprintf("入力コードが空か、上限（%d文字）を超えています。", limit),
		Category: "validation",
		Action:   "変換したいロギングコードの断片を入力してください。",
	}
}

// NewScanFailedError はリポジトリスキャン失敗エラーを生成する。
func NewScanFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeScanFailed,
		Message:  "リポジトリのスキャンに失敗しました。",
		Category: "github",
		Action:   "リポジトリへのアクセス権を確認し、しばらく待ってから再度お試しください。",
	}
}

// NewTransformFailedError は変換失敗エラーを生成する。
func NewTransformFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeTransformFailed,
		Message:  "コードの変換に失敗しました。",
		Category: "transform",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewRepoListFailedError はリポジトリ一覧取得失敗エラーを生成する。
func NewRepoListFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeRepoListFailed,
		Message:  "リポジトリ一覧の取得に失敗しました。",
		Category: "github",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewPRFailedError はPR作成失敗エラーを生成する。
func NewPRFailedError() *APIError {
	return &APIError{
		Code:     ErrCodePRFailed,
		Message:  "プルリクエストの作成に失敗しました。",
		Category: "github",
		Action:   "リポジトリへの書き込み権限を確認してください。",
	}
}

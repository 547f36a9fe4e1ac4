package model

import "time"

// Repository はGitHub上のリポジトリの要約情報を表す。
// 一覧APIのレスポンスに必要なフィールドのみを保持する。
type Repository struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"`
	Private       bool      `json:"private"`
	Description   string    `json:"description"`
	Language      string    `json:"language"`
	DefaultBranch string    `json:"default_branch"`
	UpdatedAt     time.Time `json:"updated_at"`
}

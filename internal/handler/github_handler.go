package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/loglift/internal/middleware"
	"github.com/hitoshi/loglift/internal/model"
)

// GitHubService はユーザーのアクセストークンに紐づくGitHub操作のインターフェース。
type GitHubService interface {
	// ListRepositories は認証ユーザーのリポジトリを更新日時順で返す。
	ListRepositories(ctx context.Context) ([]model.Repository, error)
	// ScanRepository はリポジトリをスキャンし、検出結果をマッチ数の降順で返す。
	ScanRepository(ctx context.Context, owner, repo string) ([]model.ScanResult, error)
	// CreatePullRequest は選択されたファイルの変換をコミットしPRを作成する。
	CreatePullRequest(ctx context.Context, owner, repo string, files []model.PRFile) (*model.PullRequestResult, error)
}

// GitHubServiceFactory はセッションのアクセストークンからGitHubServiceを生成する。
type GitHubServiceFactory func(ctx context.Context, token string) GitHubService

// SuggestServiceInterface はバッチ変換提案のインターフェース。
type SuggestServiceInterface interface {
	SuggestTransforms(ctx context.Context, files []model.TransformInput) []model.TransformSuggestion
}

// GitHubHandler はGitHub連携のHTTPハンドラー。
// すべてのエンドポイントはセッションミドルウェアの背後に配置する。
type GitHubHandler struct {
	services GitHubServiceFactory
	suggest  SuggestServiceInterface
}

// NewGitHubHandler はGitHubHandlerを生成する。
func NewGitHubHandler(services GitHubServiceFactory, suggest SuggestServiceInterface) *GitHubHandler {
	return &GitHubHandler{
		services: services,
		suggest:  suggest,
	}
}

// serviceForRequest はリクエストのセッションクレームからGitHubServiceを生成する。
func (h *GitHubHandler) serviceForRequest(r *http.Request) (GitHubService, bool) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		return nil, false
	}
	return h.services(r.Context(), claims.GitHubToken), true
}

// ListRepos は認証ユーザーのリポジトリ一覧を返す。
// GET /api/github/repos
func (h *GitHubHandler) ListRepos(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.serviceForRequest(r)
	if !ok {
		writeAPIError(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	repos, err := svc.ListRepositories(r.Context())
	if err != nil {
		slog.Error("failed to list repositories", slog.String("error", err.Error()))
		writeAPIError(w, http.StatusInternalServerError, model.NewRepoListFailedError())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"repos": repos})
}

// scanRequest はスキャンリクエストのボディ。
type scanRequest struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

// Scan はリポジトリスキャンを実行する。
// POST /api/github/scan
func (h *GitHubHandler) Scan(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.serviceForRequest(r)
	if !ok {
		writeAPIError(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if req.Owner == "" || req.Repo == "" {
		writeAPIError(w, http.StatusBadRequest, model.NewRepoRequiredError())
		return
	}

	results, err := svc.ScanRepository(r.Context(), req.Owner, req.Repo)
	if err != nil {
		slog.Error("repository scan failed",
			slog.String("owner", req.Owner),
			slog.String("repo", req.Repo),
			slog.String("error", err.Error()),
		)
		writeAPIError(w, http.StatusInternalServerError, model.NewScanFailedError())
		return
	}

	totalMatches := 0
	for _, result := range results {
		totalMatches += result.MatchCount
	}

	writeJSON(w, http.StatusOK, model.ScanSummary{
		Success:      true,
		Results:      results,
		TotalFiles:   len(results),
		TotalMatches: totalMatches,
	})
}

// suggestRequest はバッチ変換提案リクエストのボディ。
type suggestRequest struct {
	Files []model.TransformInput `json:"files"`
}

// SuggestTransforms は選択されたファイルの変換提案を生成する。
// POST /api/github/suggest-transforms
// ファイル単位の失敗は提案レコードの失敗フラグとして返す（部分的成功）。
func (h *GitHubHandler) SuggestTransforms(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.ClaimsFromContext(r.Context()); err != nil {
		writeAPIError(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if len(req.Files) == 0 {
		writeAPIError(w, http.StatusBadRequest, model.NewFilesRequiredError())
		return
	}

	suggestions := h.suggest.SuggestTransforms(r.Context(), req.Files)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"suggestions": suggestions,
	})
}

// createPRRequest はPR作成リクエストのボディ。
type createPRRequest struct {
	Owner string         `json:"owner"`
	Repo  string         `json:"repo"`
	Files []model.PRFile `json:"files"`
}

// CreatePR は選択されたファイルの変換をコミットするPRを作成する。
// POST /api/github/create-pr
func (h *GitHubHandler) CreatePR(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.serviceForRequest(r)
	if !ok {
		writeAPIError(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createPRRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if req.Owner == "" || req.Repo == "" {
		writeAPIError(w, http.StatusBadRequest, model.NewRepoRequiredError())
		return
	}
	if len(req.Files) == 0 {
		writeAPIError(w, http.StatusBadRequest, model.NewFilesRequiredError())
		return
	}

	result, err := svc.CreatePullRequest(r.Context(), req.Owner, req.Repo, req.Files)
	if err != nil {
		slog.Error("failed to create pull request",
			slog.String("owner", req.Owner),
			slog.String("repo", req.Repo),
			slog.String("error", err.Error()),
		)
		writeAPIError(w, http.StatusInternalServerError, model.NewPRFailedError())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

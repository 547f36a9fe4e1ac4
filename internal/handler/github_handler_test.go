package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/loglift/internal/middleware"
	"github.com/hitoshi/loglift/internal/model"
	"github.com/hitoshi/loglift/internal/session"
)

// --- モック定義 ---

type mockGitHubService struct {
	listRepositoriesFn  func(ctx context.Context) ([]model.Repository, error)
	scanRepositoryFn    func(ctx context.Context, owner, repo string) ([]model.ScanResult, error)
	createPullRequestFn func(ctx context.Context, owner, repo string, files []model.PRFile) (*model.PullRequestResult, error)
}

func (m *mockGitHubService) ListRepositories(ctx context.Context) ([]model.Repository, error) {
	if m.listRepositoriesFn != nil {
		return m.listRepositoriesFn(ctx)
	}
	return nil, nil
}

func (m *mockGitHubService) ScanRepository(ctx context.Context, owner, repo string) ([]model.ScanResult, error) {
	if m.scanRepositoryFn != nil {
		return m.scanRepositoryFn(ctx, owner, repo)
	}
	return nil, nil
}

func (m *mockGitHubService) CreatePullRequest(ctx context.Context, owner, repo string, files []model.PRFile) (*model.PullRequestResult, error) {
	if m.createPullRequestFn != nil {
		return m.createPullRequestFn(ctx, owner, repo, files)
	}
	return nil, nil
}

type mockSuggestService struct {
	suggestTransformsFn func(ctx context.Context, files []model.TransformInput) []model.TransformSuggestion
}

func (m *mockSuggestService) SuggestTransforms(ctx context.Context, files []model.TransformInput) []model.TransformSuggestion {
	if m.suggestTransformsFn != nil {
		return m.suggestTransformsFn(ctx, files)
	}
	return nil
}

// --- compile-time interface checks ---
var _ GitHubService = (*mockGitHubService)(nil)
var _ SuggestServiceInterface = (*mockSuggestService)(nil)

// factoryFor は常に同じサービスを返すファクトリと、渡されたトークンの記録を返す。
func factoryFor(svc GitHubService) (GitHubServiceFactory, *string) {
	var gotToken string
	return func(_ context.Context, token string) GitHubService {
		gotToken = token
		return svc
	}, &gotToken
}

func authedRequest(method, target, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := middleware.ContextWithClaims(r.Context(), &session.Claims{
		UserID:      "42",
		Username:    "octocat",
		GitHubToken: "gho_usertoken",
	})
	return r.WithContext(ctx)
}

// --- テスト ---

func TestListRepos_ReturnsRepositories(t *testing.T) {
	svc := &mockGitHubService{
		listRepositoriesFn: func(_ context.Context) ([]model.Repository, error) {
			return []model.Repository{
				{ID: 1, Name: "loglift", FullName: "octocat/loglift"},
			}, nil
		},
	}
	factory, gotToken := factoryFor(svc)
	h := NewGitHubHandler(factory, &mockSuggestService{})

	rec := httptest.NewRecorder()
	h.ListRepos(rec, authedRequest(http.MethodGet, "/api/github/repos", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if *gotToken != "gho_usertoken" {
		t.Errorf("factory token = %q, want session token", *gotToken)
	}

	var body struct {
		Repos []model.Repository `json:"repos"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(body.Repos) != 1 || body.Repos[0].FullName != "octocat/loglift" {
		t.Errorf("repos = %+v", body.Repos)
	}
}

func TestListRepos_WithoutSessionReturns401(t *testing.T) {
	factory, _ := factoryFor(&mockGitHubService{})
	h := NewGitHubHandler(factory, &mockSuggestService{})

	rec := httptest.NewRecorder()
	h.ListRepos(rec, httptest.NewRequest(http.MethodGet, "/api/github/repos", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestListRepos_UpstreamErrorReturns500(t *testing.T) {
	svc := &mockGitHubService{
		listRepositoriesFn: func(_ context.Context) ([]model.Repository, error) {
			return nil, errors.New("github unavailable")
		},
	}
	factory, _ := factoryFor(svc)
	h := NewGitHubHandler(factory, &mockSuggestService{})

	rec := httptest.NewRecorder()
	h.ListRepos(rec, authedRequest(http.MethodGet, "/api/github/repos", ""))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var body map[string]string
	json.NewDecoder(rec.Body).Decode(&body)
	if body["code"] != "REPO_LIST_FAILED" {
		t.Errorf("error code = %q, want REPO_LIST_FAILED", body["code"])
	}
}

func TestScan_ReturnsSummary(t *testing.T) {
	svc := &mockGitHubService{
		scanRepositoryFn: func(_ context.Context, owner, repo string) ([]model.ScanResult, error) {
			if owner != "octocat" || repo != "demo" {
				t.Errorf("scan target = %s/%s", owner, repo)
			}
			return []model.ScanResult{
				{Path: "a.js", MatchCount: 3},
				{Path: "b.py", MatchCount: 2},
			}, nil
		},
	}
	factory, _ := factoryFor(svc)
	h := NewGitHubHandler(factory, &mockSuggestService{})

	rec := httptest.NewRecorder()
	h.Scan(rec, authedRequest(http.MethodPost, "/api/github/scan", `{"owner":"octocat","repo":"demo"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body model.ScanSummary
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if !body.Success {
		t.Error("success = false, want true")
	}
	if body.TotalFiles != 2 {
		t.Errorf("totalFiles = %d, want 2", body.TotalFiles)
	}
	if body.TotalMatches != 5 {
		t.Errorf("totalMatches = %d, want 5", body.TotalMatches)
	}
}

func TestScan_MissingOwnerOrRepoReturns400(t *testing.T) {
	factory, _ := factoryFor(&mockGitHubService{})
	h := NewGitHubHandler(factory, &mockSuggestService{})

	for _, body := range []string{`{"owner":"octocat"}`, `{"repo":"demo"}`, `{}`} {
		rec := httptest.NewRecorder()
		h.Scan(rec, authedRequest(http.MethodPost, "/api/github/scan", body))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestScan_ScanFailureReturns500(t *testing.T) {
	svc := &mockGitHubService{
		scanRepositoryFn: func(_ context.Context, _, _ string) ([]model.ScanResult, error) {
			return nil, errors.New("tree fetch failed")
		},
	}
	factory, _ := factoryFor(svc)
	h := NewGitHubHandler(factory, &mockSuggestService{})

	rec := httptest.NewRecorder()
	h.Scan(rec, authedRequest(http.MethodPost, "/api/github/scan", `{"owner":"octocat","repo":"demo"}`))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestSuggestTransforms_ReturnsSuggestions(t *testing.T) {
	suggest := &mockSuggestService{
		suggestTransformsFn: func(_ context.Context, files []model.TransformInput) []model.TransformSuggestion {
			if len(files) != 2 {
				t.Errorf("len(files) = %d, want 2", len(files))
			}
			return []model.TransformSuggestion{
				{Path: "a.js", Success: true, Transformed: "logger.info(1)"},
				{Path: "b.js", Success: false, Library: "unknown"},
			}
		},
	}
	factory, _ := factoryFor(&mockGitHubService{})
	h := NewGitHubHandler(factory, suggest)

	body := `{"files":[{"path":"a.js","content":"console.log(1)","language":"javascript"},{"path":"b.js","content":"console.log(2)","language":"javascript"}]}`
	rec := httptest.NewRecorder()
	h.SuggestTransforms(rec, authedRequest(http.MethodPost, "/api/github/suggest-transforms", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Success     bool                        `json:"success"`
		Suggestions []model.TransformSuggestion `json:"suggestions"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if !resp.Success {
		t.Error("success = false, want true")
	}
	if len(resp.Suggestions) != 2 {
		t.Fatalf("len(suggestions) = %d, want 2", len(resp.Suggestions))
	}
	// 部分的な失敗もレコードとして返る
	if resp.Suggestions[1].Success {
		t.Error("suggestions[1].Success = true, want false")
	}
}

func TestSuggestTransforms_EmptyFilesReturns400(t *testing.T) {
	factory, _ := factoryFor(&mockGitHubService{})
	h := NewGitHubHandler(factory, &mockSuggestService{})

	rec := httptest.NewRecorder()
	h.SuggestTransforms(rec, authedRequest(http.MethodPost, "/api/github/suggest-transforms", `{"files":[]}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var body map[string]string
	json.NewDecoder(rec.Body).Decode(&body)
	if body["code"] != "FILES_REQUIRED" {
		t.Errorf("error code = %q, want FILES_REQUIRED", body["code"])
	}
}

func TestCreatePR_ReturnsResult(t *testing.T) {
	svc := &mockGitHubService{
		createPullRequestFn: func(_ context.Context, owner, repo string, files []model.PRFile) (*model.PullRequestResult, error) {
			if owner != "octocat" || repo != "demo" || len(files) != 1 {
				t.Errorf("CreatePullRequest(%s, %s, %d files)", owner, repo, len(files))
			}
			return &model.PullRequestResult{
				Success:   true,
				PRURL:     "https://github.com/octocat/demo/pull/7",
				PRNumber:  7,
				Committed: []string{"a.js"},
			}, nil
		},
	}
	factory, _ := factoryFor(svc)
	h := NewGitHubHandler(factory, &mockSuggestService{})

	body := `{"owner":"octocat","repo":"demo","files":[{"path":"a.js","sha":"sha-1","language":"javascript"}]}`
	rec := httptest.NewRecorder()
	h.CreatePR(rec, authedRequest(http.MethodPost, "/api/github/create-pr", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var result model.PullRequestResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if result.PRNumber != 7 || !result.Success {
		t.Errorf("result = %+v", result)
	}
}

func TestCreatePR_ValidationErrors(t *testing.T) {
	factory, _ := factoryFor(&mockGitHubService{})
	h := NewGitHubHandler(factory, &mockSuggestService{})

	tests := []struct {
		name string
		body string
	}{
		{"missing repo", `{"owner":"octocat","files":[{"path":"a.js"}]}`},
		{"missing files", `{"owner":"octocat","repo":"demo","files":[]}`},
		{"invalid json", `{broken`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.CreatePR(rec, authedRequest(http.MethodPost, "/api/github/create-pr", tt.body))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestCreatePR_BuilderFailureReturns500(t *testing.T) {
	svc := &mockGitHubService{
		createPullRequestFn: func(_ context.Context, _, _ string, _ []model.PRFile) (*model.PullRequestResult, error) {
			return nil, errors.New("no files could be committed")
		},
	}
	factory, _ := factoryFor(svc)
	h := NewGitHubHandler(factory, &mockSuggestService{})

	body := `{"owner":"octocat","repo":"demo","files":[{"path":"a.js"}]}`
	rec := httptest.NewRecorder()
	h.CreatePR(rec, authedRequest(http.MethodPost, "/api/github/create-pr", body))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var respBody map[string]string
	json.NewDecoder(rec.Body).Decode(&respBody)
	if respBody["code"] != "PR_FAILED" {
		t.Errorf("error code = %q, want PR_FAILED", respBody["code"])
	}
}

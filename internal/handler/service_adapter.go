package handler

import (
	"context"
	"log/slog"

	"github.com/hitoshi/loglift/internal/github"
	"github.com/hitoshi/loglift/internal/model"
	"github.com/hitoshi/loglift/internal/scan"
)

// GitHubServiceAdapter はセッションのアクセストークンに紐づくGitHubクライアント、
// スキャンオーケストレーター、PRビルダーをGitHubServiceに適合させるアダプタ。
// トークンはユーザーごとに異なるため、リクエスト単位で生成する。
type GitHubServiceAdapter struct {
	client  *github.Client
	scanner *scan.Orchestrator
	pr      *github.PRBuilder
}

// GitHubServiceDeps はGitHubServiceFactoryの生成に必要な依存関係をまとめた構造体。
type GitHubServiceDeps struct {
	Clients     github.ClientFactory
	Matcher     *scan.Matcher
	Transformer github.FileTransformer
	Logger      *slog.Logger
	ScanMetrics scan.MetricsRecorder
	PRMetrics   github.PRMetrics

	// スキャン制限
	MaxFiles      int
	MaxConcurrent int
}

// NewGitHubServiceFactory はトークンからGitHubServiceを生成するファクトリを返す。
func NewGitHubServiceFactory(deps GitHubServiceDeps) GitHubServiceFactory {
	return func(ctx context.Context, token string) GitHubService {
		client := deps.Clients(ctx, token)
		return &GitHubServiceAdapter{
			client:  client,
			scanner: scan.NewOrchestrator(client, deps.Matcher, deps.Logger, deps.ScanMetrics, deps.MaxFiles, deps.MaxConcurrent),
			pr:      github.NewPRBuilder(client, deps.Transformer, deps.Logger, deps.PRMetrics),
		}
	}
}

// ListRepositories は認証ユーザーのリポジトリ一覧を返す。
func (a *GitHubServiceAdapter) ListRepositories(ctx context.Context) ([]model.Repository, error) {
	return a.client.ListRepositories(ctx)
}

// ScanRepository はリポジトリをスキャンし、検出結果をマッチ数の降順で返す。
func (a *GitHubServiceAdapter) ScanRepository(ctx context.Context, owner, repo string) ([]model.ScanResult, error) {
	return a.scanner.ScanRepository(ctx, owner, repo)
}

// CreatePullRequest は選択されたファイルの変換をコミットしPRを作成する。
func (a *GitHubServiceAdapter) CreatePullRequest(ctx context.Context, owner, repo string, files []model.PRFile) (*model.PullRequestResult, error) {
	return a.pr.Create(ctx, owner, repo, files)
}

var _ GitHubService = (*GitHubServiceAdapter)(nil)

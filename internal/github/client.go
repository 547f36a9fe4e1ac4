// Package github はGitHub APIへの読み書きアクセスを提供する。
// リポジトリ一覧・ツリー・blobの取得と、プルリクエストの作成を含む。
package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	gogithub "github.com/google/go-github/v50/github"

	"github.com/hitoshi/loglift/internal/model"
)

// StatusRecorder はGitHub APIのHTTPステータス記録インターフェース。
type StatusRecorder interface {
	RecordGitHubStatus(statusCode int)
}

// noopStatus はメトリクス未設定時のための何もしない実装。
type noopStatus struct{}

func (noopStatus) RecordGitHubStatus(statusCode int) {}

// Client はGitHub APIクライアントのラッパー。
// ユーザーのアクセストークンに紐づくため、リクエスト単位で生成する。
type Client struct {
	gh      *gogithub.Client
	logger  *slog.Logger
	metrics StatusRecorder
}

// ClientFactory はアクセストークンからClientを生成するファクトリ。
// ハンドラーがリクエストごとに呼び出す。テストでは差し替え可能。
type ClientFactory func(ctx context.Context, token string) *Client

// NewClientFactory はトークン認証付きClientを生成するファクトリを返す。
func NewClientFactory(logger *slog.Logger, metrics StatusRecorder) ClientFactory {
	return func(ctx context.Context, token string) *Client {
		return NewClient(gogithub.NewTokenClient(ctx, token), logger, metrics)
	}
}

// NewClient は既存のgo-githubクライアントをラップするClientを生成する。
// metricsがnilの場合は記録を行わない。
func NewClient(gh *gogithub.Client, logger *slog.Logger, metrics StatusRecorder) *Client {
	if metrics == nil {
		metrics = noopStatus{}
	}
	return &Client{
		gh:      gh,
		logger:  logger,
		metrics: metrics,
	}
}

// recordStatus はAPIレスポンスのHTTPステータスをメトリクスに記録する。
func (c *Client) recordStatus(resp *gogithub.Response) {
	if resp != nil {
		c.metrics.RecordGitHubStatus(resp.StatusCode)
	}
}

// ListRepositories は認証ユーザーのリポジトリを更新日時順で最大100件返す。
func (c *Client) ListRepositories(ctx context.Context) ([]model.Repository, error) {
	opts := &gogithub.RepositoryListOptions{
		Sort:        "updated",
		ListOptions: gogithub.ListOptions{PerPage: 100},
	}

	repos, resp, err := c.gh.Repositories.List(ctx, "", opts)
	c.recordStatus(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}

	result := make([]model.Repository, 0, len(repos))
	for _, r := range repos {
		result = append(result, model.Repository{
			ID:            r.GetID(),
			Name:          r.GetName(),
			FullName:      r.GetFullName(),
			Private:       r.GetPrivate(),
			Description:   r.GetDescription(),
			Language:      r.GetLanguage(),
			DefaultBranch: r.GetDefaultBranch(),
			UpdatedAt:     r.GetUpdatedAt().Time,
		})
	}

	return result, nil
}

// DefaultBranch はリポジトリのデフォルトブランチ名を返す。
func (c *Client) DefaultBranch(ctx context.Context, owner, repo string) (string, error) {
	repository, resp, err := c.gh.Repositories.Get(ctx, owner, repo)
	c.recordStatus(resp)
	if err != nil {
		return "", fmt.Errorf("failed to get repository %s/%s: %w", owner, repo, err)
	}
	return repository.GetDefaultBranch(), nil
}

// ListTree はデフォルトブランチの再帰的なファイルツリーを返す。
// APIがツリーの切り詰めを報告した場合は警告ログを出して続行する
// （巨大リポジトリのページング追跡は行わない）。
func (c *Client) ListTree(ctx context.Context, owner, repo string) ([]model.TreeEntry, error) {
	branch, err := c.DefaultBranch(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	tree, resp, err := c.gh.Git.GetTree(ctx, owner, repo, branch, true)
	c.recordStatus(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to get tree for %s/%s: %w", owner, repo, err)
	}

	if tree.GetTruncated() {
		c.logger.Warn("リポジトリツリーがAPI側で切り詰められました",
			slog.String("owner", owner),
			slog.String("repo", repo),
			slog.Int("entries", len(tree.Entries)),
		)
	}

	entries := make([]model.TreeEntry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		entries = append(entries, model.TreeEntry{
			Path: e.GetPath(),
			SHA:  e.GetSHA(),
			Type: e.GetType(),
		})
	}

	return entries, nil
}

// GetBlob はblobハッシュで指定されたファイル本文をデコードして返す。
// GitHub APIはbase64でエンコードされた本文を返す。
func (c *Client) GetBlob(ctx context.Context, owner, repo, sha string) (string, error) {
	blob, resp, err := c.gh.Git.GetBlob(ctx, owner, repo, sha)
	c.recordStatus(resp)
	if err != nil {
		return "", fmt.Errorf("failed to get blob %s: %w", sha, err)
	}

	content := blob.GetContent()
	if blob.GetEncoding() != "base64" {
		return content, nil
	}

	// GitHubはbase64本文に改行を含めて返す
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(content, "\n", ""))
	if err != nil {
		return "", fmt.Errorf("failed to decode blob %s: %w", sha, err)
	}

	return string(decoded), nil
}

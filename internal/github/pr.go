package github

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	gogithub "github.com/google/go-github/v50/github"
	"github.com/google/uuid"

	"github.com/hitoshi/loglift/internal/model"
)

// branchPrefix は作成するブランチ名のプレフィックス。
const branchPrefix = "loglift/structured-logging-"

// FileTransformer はファイル本文の変換インターフェース。
// transform.Requesterの部分集合として定義する。
type FileTransformer interface {
	Transform(ctx context.Context, content, language string) (*model.TransformResult, error)
}

// PRMetrics はPR作成メトリクスの記録インターフェース。
type PRMetrics interface {
	RecordPRCreated()
}

// noopPRMetrics はメトリクス未設定時のための何もしない実装。
type noopPRMetrics struct{}

func (noopPRMetrics) RecordPRCreated() {}

// PRBuilder はユーザーが選択したファイルを変換し、
// ブランチ作成・コミット・プルリクエスト作成を行う。
type PRBuilder struct {
	client      *Client
	transformer FileTransformer
	logger      *slog.Logger
	metrics     PRMetrics
}

// NewPRBuilder はPRBuilderを生成する。
func NewPRBuilder(client *Client, transformer FileTransformer, logger *slog.Logger, metrics PRMetrics) *PRBuilder {
	if metrics == nil {
		metrics = noopPRMetrics{}
	}
	return &PRBuilder{
		client:      client,
		transformer: transformer,
		logger:      logger,
		metrics:     metrics,
	}
}

// Create は選択されたファイルの構造化ロギング版をコミットする
// ブランチを作成し、プルリクエストを開く。
//
// 各ファイルについて、デフォルトブランチ上の現在のblobハッシュが
// スキャン時のハッシュと一致することを検証する。不一致（スキャン後に
// 編集された）の場合はそのファイルをスキップする。
// ファイル単位の失敗はソフト失敗であり、1件もコミットできなかった
// 場合のみエラーを返す。
func (b *PRBuilder) Create(ctx context.Context, owner, repo string, files []model.PRFile) (*model.PullRequestResult, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files selected")
	}

	branch, err := b.client.DefaultBranch(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	// デフォルトブランチの先頭から新しいブランチを作成する
	baseRef, resp, err := b.client.gh.Git.GetRef(ctx, owner, repo, "heads/"+branch)
	b.client.recordStatus(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to get ref heads/%s: %w", branch, err)
	}

	branchName := branchPrefix + uuid.New().String()[:8]
	newRef := &gogithub.Reference{
		Ref:    gogithub.String("refs/heads/" + branchName),
		Object: &gogithub.GitObject{SHA: baseRef.Object.SHA},
	}

	_, resp, err = b.client.gh.Git.CreateRef(ctx, owner, repo, newRef)
	b.client.recordStatus(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to create branch %s: %w", branchName, err)
	}

	var committed, skipped []string
	for _, file := range files {
		if err := b.commitFile(ctx, owner, repo, branchName, file); err != nil {
			// ファイル単位の失敗はPR作成全体を中断しない
			b.logger.Warn("ファイルのコミットに失敗したためスキップします",
				slog.String("path", file.Path),
				slog.String("error", err.Error()),
			)
			skipped = append(skipped, file.Path)
			continue
		}
		committed = append(committed, file.Path)
	}

	if len(committed) == 0 {
		return nil, fmt.Errorf("no files could be committed")
	}

	pr, resp, err := b.client.gh.PullRequests.Create(ctx, owner, repo, &gogithub.NewPullRequest{
		Title: gogithub.String("refactor: migrate legacy log statements to structured logging"),
		Head:  gogithub.String(branchName),
		Base:  gogithub.String(branch),
		Body:  gogithub.String(buildPRBody(committed, skipped)),
	})
	b.client.recordStatus(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}

	b.metrics.RecordPRCreated()

	b.logger.Info("プルリクエストを作成しました",
		slog.String("owner", owner),
		slog.String("repo", repo),
		slog.Int("pr_number", pr.GetNumber()),
		slog.Int("committed", len(committed)),
		slog.Int("skipped", len(skipped)),
	)

	return &model.PullRequestResult{
		Success:   true,
		PRURL:     pr.GetHTMLURL(),
		PRNumber:  pr.GetNumber(),
		Committed: committed,
		Skipped:   skipped,
	}, nil
}

// commitFile は1ファイルの鮮度検証・変換・コミットを行う。
func (b *PRBuilder) commitFile(ctx context.Context, owner, repo, branch string, file model.PRFile) error {
	// 新ブランチ上の現在の内容を取得する（作成直後なのでデフォルトブランチと同一）
	current, _, resp, err := b.client.gh.Repositories.GetContents(ctx, owner, repo, file.Path,
		&gogithub.RepositoryContentGetOptions{Ref: branch})
	b.client.recordStatus(resp)
	if err != nil {
		return fmt.Errorf("failed to get contents of %s: %w", file.Path, err)
	}
	if current == nil {
		return fmt.Errorf("%s is not a file", file.Path)
	}

	// スキャン時のblobハッシュと比較し、スキャン後に編集されたファイルは
	// 古い内容を上書きしないようスキップする
	if file.SHA != "" && current.GetSHA() != file.SHA {
		return fmt.Errorf("content changed since scan (scanned %s, now %s)", file.SHA, current.GetSHA())
	}

	content, err := current.GetContent()
	if err != nil {
		return fmt.Errorf("failed to decode contents of %s: %w", file.Path, err)
	}

	result, err := b.transformer.Transform(ctx, content, file.Language)
	if err != nil {
		return fmt.Errorf("failed to transform %s: %w", file.Path, err)
	}

	opts := &gogithub.RepositoryContentFileOptions{
		Message: gogithub.String(fmt.Sprintf("refactor: structured logging in %s", file.Path)),
		Content: []byte(result.Code),
		SHA:     gogithub.String(current.GetSHA()),
		Branch:  gogithub.String(branch),
	}

	_, resp, err = b.client.gh.Repositories.UpdateFile(ctx, owner, repo, file.Path, opts)
	b.client.recordStatus(resp)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", file.Path, err)
	}

	return nil
}

// buildPRBody はPR本文を組み立てる。
func buildPRBody(committed, skipped []string) string {
	var sb strings.Builder
	sb.WriteString("AI-suggested rewrite of legacy print/log statements to structured logging.\n\n")
	sb.WriteString("## Files changed\n")
	for _, path := range committed {
		sb.WriteString("- `" + path + "`\n")
	}
	if len(skipped) > 0 {
		sb.WriteString("\n## Skipped\n")
		for _, path := range skipped {
			sb.WriteString("- `" + path + "`\n")
		}
	}
	sb.WriteString("\nPlease review each change before merging.\n")
	return sb.String()
}

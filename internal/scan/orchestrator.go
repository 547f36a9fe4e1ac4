package scan

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/hitoshi/loglift/internal/model"
)

// RepoFetcher はスキャンに必要なリポジトリ読み取りのインターフェース。
// github.Clientの部分集合として定義する。
type RepoFetcher interface {
	// ListTree はデフォルトブランチの再帰的なファイルツリーを返す。
	ListTree(ctx context.Context, owner, repo string) ([]model.TreeEntry, error)
	// GetBlob はblobハッシュで指定されたファイル本文をデコードして返す。
	GetBlob(ctx context.Context, owner, repo, sha string) (string, error)
}

// MetricsRecorder はスキャンメトリクスの記録インターフェース。
type MetricsRecorder interface {
	RecordScanSuccess()
	RecordScanFailure()
	RecordFileScanned()
	RecordFileSkipped()
	RecordScanLatency(d time.Duration)
}

// noopMetrics はメトリクス未設定時のための何もしない実装。
type noopMetrics struct{}

func (noopMetrics) RecordScanSuccess()                 {}
func (noopMetrics) RecordScanFailure()                 {}
func (noopMetrics) RecordFileScanned()                 {}
func (noopMetrics) RecordFileSkipped()                 {}
func (noopMetrics) RecordScanLatency(d time.Duration) {}

// Orchestrator はフェッチャー・マッチャー・言語分類を合成し、
// リポジトリ単位のスキャンを実行する。
// ファイル単位の失敗はすべてソフト失敗（スキップ）であり、
// ハード失敗はツリー取得の失敗のみ。
type Orchestrator struct {
	fetcher       RepoFetcher
	matcher       *Matcher
	logger        *slog.Logger
	metrics       MetricsRecorder
	maxFiles      int
	maxConcurrent int
}

// NewOrchestrator はOrchestratorの新しいインスタンスを生成する。
// maxFilesが0以下の場合は50、maxConcurrentが0以下の場合は5を使用する。
// metricsがnilの場合は記録を行わない。
func NewOrchestrator(
	fetcher RepoFetcher,
	matcher *Matcher,
	logger *slog.Logger,
	metrics MetricsRecorder,
	maxFiles int,
	maxConcurrent int,
) *Orchestrator {
	if maxFiles <= 0 {
		maxFiles = 50
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Orchestrator{
		fetcher:       fetcher,
		matcher:       matcher,
		logger:        logger,
		metrics:       metrics,
		maxFiles:      maxFiles,
		maxConcurrent: maxConcurrent,
	}
}

// ScanRepository はリポジトリをスキャンし、ロギング文が検出された
// ファイルをマッチ数の降順で返す。
//
//  1. ツリーを取得し、許可リストの拡張子を持つblobに絞り込む
//  2. 候補をmaxFiles件に切り詰める（超過分は黙って除外）
//  3. 各ファイルのblobをセマフォで並列数を制限しながら取得する
//  4. パターンマッチを実行し、マッチ0件のファイルは破棄する
//  5. マッチ数の降順で安定ソートして返す（同数はツリー順を維持）
//
// 空リポジトリは空スライスを返す（エラーではない）。
// ファイル単位の取得失敗はログに記録してスキップする。
func (o *Orchestrator) ScanRepository(ctx context.Context, owner, repo string) ([]model.ScanResult, error) {
	start := time.Now()

	tree, err := o.fetcher.ListTree(ctx, owner, repo)
	if err != nil {
		o.metrics.RecordScanFailure()
		return nil, fmt.Errorf("failed to list repository tree: %w", err)
	}

	// 拡張子の許可リストでblobを絞り込む
	var candidates []model.TreeEntry
	for _, entry := range tree {
		if !entry.IsBlob() {
			continue
		}
		if HasSupportedExtension(entry.Path) {
			candidates = append(candidates, entry)
		}
	}

	// リクエスト量を抑えるためのハードキャップ
	if len(candidates) > o.maxFiles {
		o.logger.Info("候補ファイルが上限を超えたため切り詰めます",
			slog.Int("candidates", len(candidates)),
			slog.Int("max_files", o.maxFiles),
		)
		candidates = candidates[:o.maxFiles]
	}

	// ツリー順を保持するためインデックス付きスライスに結果を格納する
	results := make([]*model.ScanResult, len(candidates))

	var wg sync.WaitGroup
	sem := make(chan struct{}, o.maxConcurrent)

	for i, entry := range candidates {
		wg.Add(1)
		sem <- struct{}{}

		go func(idx int, entry model.TreeEntry) {
			defer wg.Done()
			defer func() { <-sem }()

			results[idx] = o.scanFile(ctx, owner, repo, entry)
		}(i, entry)
	}

	wg.Wait()

	// スキップされたファイル（nil）を除外する
	scanned := make([]model.ScanResult, 0, len(results))
	for _, r := range results {
		if r != nil {
			scanned = append(scanned, *r)
		}
	}

	// マッチ数の降順で安定ソート（同数はフェッチ順を維持）
	sort.SliceStable(scanned, func(i, j int) bool {
		return scanned[i].MatchCount > scanned[j].MatchCount
	})

	o.metrics.RecordScanSuccess()
	o.metrics.RecordScanLatency(time.Since(start))

	o.logger.Info("リポジトリのスキャンが完了しました",
		slog.String("owner", owner),
		slog.String("repo", repo),
		slog.Int("candidates", len(candidates)),
		slog.Int("results", len(scanned)),
		slog.Duration("elapsed", time.Since(start)),
	)

	return scanned, nil
}

// scanFile は1ファイルのblob取得とパターンマッチを行う。
// 取得失敗またはマッチ0件の場合はnilを返す。
func (o *Orchestrator) scanFile(ctx context.Context, owner, repo string, entry model.TreeEntry) *model.ScanResult {
	content, err := o.fetcher.GetBlob(ctx, owner, repo, entry.SHA)
	if err != nil {
		// ファイル単位の失敗はスキャン全体を中断しない
		o.logger.Warn("ファイルの取得に失敗したためスキップします",
			slog.String("path", entry.Path),
			slog.String("error", err.Error()),
		)
		o.metrics.RecordFileSkipped()
		return nil
	}

	o.metrics.RecordFileScanned()

	count, preview := o.matcher.Match(content)
	if count == 0 {
		return nil
	}

	return &model.ScanResult{
		Path:       entry.Path,
		Language:   LanguageFromPath(entry.Path),
		MatchCount: count,
		Preview:    preview,
		SHA:        entry.SHA,
		Content:    content,
	}
}

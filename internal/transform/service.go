package transform

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hitoshi/loglift/internal/model"
)

// Service は複数ファイルのバッチ変換を提供する。
// 各ファイルは独立に処理され、1ファイルの失敗はバッチを中断しない
// （部分的な成功を全体の失敗より優先する）。
type Service struct {
	requester     *Requester
	logger        *slog.Logger
	maxConcurrent int
}

// NewService はServiceを生成する。
// maxConcurrentが0以下の場合は3を使用する。
func NewService(requester *Requester, logger *slog.Logger, maxConcurrent int) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 3
	}
	return &Service{
		requester:     requester,
		logger:        logger,
		maxConcurrent: maxConcurrent,
	}
}

// SuggestTransforms はファイルごとに変換提案を生成する。
// セマフォで並列数を制限し、入力順を保持した提案リストを返す。
// 失敗したファイルはSuccess=falseのレコードとして残す。
func (s *Service) SuggestTransforms(ctx context.Context, files []model.TransformInput) []model.TransformSuggestion {
	suggestions := make([]model.TransformSuggestion, len(files))

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.maxConcurrent)

	for i, file := range files {
		wg.Add(1)
		sem <- struct{}{}

		go func(idx int, file model.TransformInput) {
			defer wg.Done()
			defer func() { <-sem }()

			suggestions[idx] = s.suggestOne(ctx, file)
		}(i, file)
	}

	wg.Wait()

	return suggestions
}

// suggestOne は1ファイル分の提案を生成する。
// 失敗時は失敗フラグ付きのレコードを返す（エラーは返さない）。
func (s *Service) suggestOne(ctx context.Context, file model.TransformInput) model.TransformSuggestion {
	result, err := s.requester.Transform(ctx, file.Content, file.Language)
	if err != nil {
		s.logger.Warn("ファイルの変換提案に失敗しました",
			slog.String("path", file.Path),
			slog.String("error", err.Error()),
		)
		return model.TransformSuggestion{
			Path:     file.Path,
			Success:  false,
			Original: file.Content,
			Library:  "unknown",
			Install:  "",
			Tips:     []string{"変換提案の生成に失敗しました。"},
		}
	}

	return model.TransformSuggestion{
		Path:        file.Path,
		Success:     true,
		Original:    file.Content,
		Transformed: result.Code,
		Library:     result.Library,
		Install:     result.Install,
		Tips:        result.Tips,
	}
}

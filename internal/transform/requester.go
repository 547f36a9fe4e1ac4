package transform

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/loglift/internal/model"
)

// Generator はテキスト生成のインターフェース。
// AnthropicClientの抽象化としてテスタビリティを向上させる。
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// MetricsRecorder は変換メトリクスの記録インターフェース。
type MetricsRecorder interface {
	RecordTransformSuccess()
	RecordTransformFailure()
	RecordTransformLatency(d time.Duration)
}

// noopMetrics はメトリクス未設定時のための何もしない実装。
type noopMetrics struct{}

func (noopMetrics) RecordTransformSuccess()                 {}
func (noopMetrics) RecordTransformFailure()                 {}
func (noopMetrics) RecordTransformLatency(d time.Duration) {}

// Requester は1ファイル分の変換リクエストを実行する。
// プロンプト構築 → 生成API呼び出し → レスポンスのパースを合成する。
// 共有の可変状態を持たないため、複数ゴルーチンから同時に呼び出せる。
type Requester struct {
	gen     Generator
	metrics MetricsRecorder
}

// NewRequester はRequesterを生成する。
// metricsがnilの場合は記録を行わない。
func NewRequester(gen Generator, metrics MetricsRecorder) *Requester {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Requester{
		gen:     gen,
		metrics: metrics,
	}
}

// Transform はロギングコードと言語ラベルから変換提案を生成する。
// 生成APIの呼び出し失敗時のみエラーを返す。
// レスポンスのパース失敗はエラーにせず、劣化した結果を返す。
func (r *Requester) Transform(ctx context.Context, content, language string) (*model.TransformResult, error) {
	start := time.Now()

	response, err := r.gen.Generate(ctx, buildPrompt(content, language))
	if err != nil {
		r.metrics.RecordTransformFailure()
		return nil, fmt.Errorf("failed to generate transformation: %w", err)
	}

	r.metrics.RecordTransformSuccess()
	r.metrics.RecordTransformLatency(time.Since(start))

	return ParseResponse(response), nil
}

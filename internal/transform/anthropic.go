// Package transform はレガシーなロギングコードの構造化ロギングへの
// 変換提案を提供する。生成APIクライアント、プロンプト構築、
// レスポンスのパース、バッチ変換サービスを含む。
package transform

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// defaultEndpoint はAnthropic Messages APIのエンドポイント。
	defaultEndpoint = "https://api.anthropic.com/v1/messages"
	// apiVersion はAnthropic APIのバージョンヘッダー値。
	apiVersion = "2023-06-01"
	// maxTokens は1回の生成で許可する最大トークン数。
	maxTokens = 4096
	// temperature は生成の温度。コード変換なので低めに固定する。
	temperature = 0.3
)

// anthropicRequest はMessages APIのリクエストボディ。
type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

// anthropicMessage は会話の1メッセージ。
type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicResponse はMessages APIのレスポンスボディ。
type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// anthropicError はAPIエラーレスポンスのボディ。
type anthropicError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// AnthropicClient はAnthropic Messages APIのクライアント。
// 一時的な失敗に対するリトライは行わない（失敗はそのファイルの
// 提案にとって終端的）。
type AnthropicClient struct {
	rc       *resty.Client
	apiKey   string
	model    string
	logger   *slog.Logger
	endpoint string // テスト用にエンドポイントを差し替え可能
}

// NewAnthropicClient はAnthropicClientの新しいインスタンスを生成する。
func NewAnthropicClient(apiKey, model string, timeout time.Duration, logger *slog.Logger) *AnthropicClient {
	rc := resty.New().SetTimeout(timeout)
	return &AnthropicClient{
		rc:       rc,
		apiKey:   apiKey,
		model:    model,
		logger:   logger,
		endpoint: defaultEndpoint,
	}
}

// Generate はプロンプトを1回送信し、生成されたテキストを返す。
func (c *AnthropicClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("anthropic api key is not configured")
	}

	var result anthropicResponse
	var apiErr anthropicError

	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeader("x-api-key", c.apiKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("Content-Type", "application/json").
		SetBody(anthropicRequest{
			Model:       c.model,
			MaxTokens:   maxTokens,
			Temperature: temperature,
			Messages: []anthropicMessage{
				{Role: "user", Content: prompt},
			},
		}).
		SetResult(&result).
		SetError(&apiErr).
		Post(c.endpoint)
	if err != nil {
		c.logger.Error("生成APIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("generation request failed: %w", err)
	}

	if resp.IsError() {
		c.logger.Error("生成APIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode()),
			slog.String("error_type", apiErr.Error.Type),
		)
		return "", fmt.Errorf("generation API returned status %d", resp.StatusCode())
	}

	for _, block := range result.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("no text content in generation response")
}

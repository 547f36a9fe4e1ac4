package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/hitoshi/loglift/internal/model"
)

// TransformServiceInterface は単一コード片の変換インターフェース。
type TransformServiceInterface interface {
	Transform(ctx context.Context, content, language string) (*model.TransformResult, error)
}

// TransformHandler はコード変換のHTTPハンドラー。
type TransformHandler struct {
	service  TransformServiceInterface
	maxInput int
}

// NewTransformHandler はTransformHandlerを生成する。
// maxInputが0以下の場合はデフォルト値を使用する。
func NewTransformHandler(service TransformServiceInterface, maxInput int) *TransformHandler {
	if maxInput <= 0 {
		maxInput = 10000
	}
	return &TransformHandler{
		service:  service,
		maxInput: maxInput,
	}
}

// transformRequest は変換リクエストのボディ。
type transformRequest struct {
	Input    string `json:"input"`
	Language string `json:"language"`
}

// Transform は貼り付けられたコードの構造化ログへの書き換えを生成する。
// 入力長は文字数（rune数）で制限する。
// POST /api/transform
func (h *TransformHandler) Transform(w http.ResponseWriter, r *http.Request) {
	var req transformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if req.Input == "" {
		writeAPIError(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}
	if utf8.RuneCountInString(req.Input) > h.maxInput {
		writeAPIError(w, http.StatusBadRequest, model.NewInputTooLongError(h.maxInput))
		return
	}

	language := req.Language
	if language == "" {
		language = "javascript"
	}

	result, err := h.service.Transform(r.Context(), req.Input, language)
	if err != nil {
		slog.Error("transform failed",
			slog.String("language", language),
			slog.String("error", err.Error()),
		)
		writeAPIError(w, http.StatusInternalServerError, model.NewTransformFailedError())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

package transform

import (
	"encoding/json"
	"strings"

	"github.com/hitoshi/loglift/internal/model"
)

// parsedResponse は生成APIに要求しているJSONレスポンスの形。
type parsedResponse struct {
	Code    string   `json:"code"`
	Library string   `json:"library"`
	Install string   `json:"install"`
	Imports []string `json:"imports"`
	Tips    []string `json:"tips"`
}

// ParseResponse は生成APIのテキストレスポンスをTransformResultにパースする。
// コードフェンス（```json / ```）で包まれている場合は中身を取り出す。
// パースに失敗した場合は生テキストをCodeに格納し、他はセンチネル値で
// 埋めて返す。決してエラーを返さない。
func ParseResponse(response string) *model.TransformResult {
	text := strings.TrimSpace(response)

	// コードフェンスの除去
	if strings.Contains(text, "```json") {
		if inner, ok := between(text, "```json", "```"); ok {
			text = inner
		}
	} else if strings.Contains(text, "```") {
		if inner, ok := between(text, "```", "```"); ok {
			text = inner
		}
	}

	var parsed parsedResponse
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return fallbackResult(response)
	}

	result := &model.TransformResult{
		Code:    parsed.Code,
		Library: parsed.Library,
		Install: parsed.Install,
		Imports: parsed.Imports,
		Tips:    parsed.Tips,
	}
	if result.Code == "" {
		result.Code = response
	}
	if result.Library == "" {
		result.Library = "unknown"
	}
	if result.Imports == nil {
		result.Imports = []string{}
	}
	if result.Tips == nil {
		result.Tips = []string{}
	}
	return result
}

// fallbackResult はパース不能なレスポンスに対する劣化結果を返す。
func fallbackResult(response string) *model.TransformResult {
	return &model.TransformResult{
		Code:    response,
		Library: "unknown",
		Install: "",
		Imports: []string{},
		Tips:    []string{},
	}
}

// between はmarkerの後からcloserの前までのトリム済み部分文字列を返す。
func between(s, marker, closer string) (string, bool) {
	start := strings.Index(s, marker)
	if start < 0 {
		return "", false
	}
	rest := s[start+len(marker):]
	end := strings.Index(rest, closer)
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

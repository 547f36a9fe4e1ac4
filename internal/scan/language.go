package scan

import "strings"

// languageByExtension は拡張子（先頭ドットなし、小文字）から
// 言語ラベルへの固定テーブル。
var languageByExtension = map[string]string{
	"ts":   "typescript",
	"tsx":  "typescript",
	"js":   "javascript",
	"jsx":  "javascript",
	"py":   "python",
	"go":   "go",
	"java": "java",
	"rb":   "ruby",
	"php":  "php",
	"cs":   "csharp",
}

// SupportedExtensions はスキャン対象とするファイル拡張子の許可リストを返す。
// 各エントリは先頭ドットを含む。
func SupportedExtensions() []string {
	return []string{
		".ts", ".tsx", ".js", ".jsx",
		".py",
		".go",
		".java",
		".rb",
		".php",
		".cs",
	}
}

// LanguageFromExtension は拡張子を正規の言語ラベルに変換する。
// 未知の拡張子はそのままラベルとして通す（全域関数、失敗しない）。
func LanguageFromExtension(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if lang, ok := languageByExtension[ext]; ok {
		return lang
	}
	return ext
}

// LanguageFromPath はファイルパスの拡張子から言語ラベルを導出する。
func LanguageFromPath(path string) string {
	idx := strings.LastIndex(path, ".")
	if idx < 0 || idx == len(path)-1 {
		return ""
	}
	return LanguageFromExtension(path[idx+1:])
}

// HasSupportedExtension はパスが許可リストのいずれかの拡張子で終わるかを返す。
func HasSupportedExtension(path string) bool {
	for _, ext := range SupportedExtensions() {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// Package scan はリポジトリ内のレガシーなロギング文の検出を提供する。
// パターンマッチャー、言語分類、スキャンオーケストレーターを含む。
package scan

import (
	"regexp"
	"strings"
)

// previewMaxLen はプレビュー行の最大文字数。
const previewMaxLen = 100

// DefaultPatterns はロギング文として検出する言語別の固定パターンテーブルを返す。
// パターンは互いに独立しており、カテゴリをまたいだ重複カウントは許容する
// （厳密な静的解析ではなくヒューリスティック）。
func DefaultPatterns() []*regexp.Regexp {
	return []*regexp.Regexp{
		// JavaScript / TypeScript
		regexp.MustCompile(`console\.(log|error|warn|info|debug)\s*\(`),
		regexp.MustCompile(`logger\.(log|error|warn|info|debug)\s*\(`),

		// Python
		regexp.MustCompile(`print\s*\(`),
		regexp.MustCompile(`logging\.(debug|info|warning|error|critical)\s*\(`),
		regexp.MustCompile(`logger\.(debug|info|warning|error|critical)\s*\(`),

		// Go
		regexp.MustCompile(`log\.(Print|Printf|Println|Fatal|Fatalf|Fatalln|Panic|Panicf|Panicln)\s*\(`),
		regexp.MustCompile(`fmt\.(Print|Printf|Println)\s*\(`),

		// Java
		regexp.MustCompile(`logger\.(trace|debug|info|warn|error)\s*\(`),
		regexp.MustCompile(`System\.out\.print(ln)?\s*\(`),
		regexp.MustCompile(`log\.(trace|debug|info|warn|error)\s*\(`),

		// Ruby
		regexp.MustCompile(`puts\s+`),
		regexp.MustCompile(`logger\.(debug|info|warn|error|fatal)\s*\(`),

		// PHP
		regexp.MustCompile(`error_log\s*\(`),
		regexp.MustCompile(`var_dump\s*\(`),

		// C#
		regexp.MustCompile(`Console\.Write(Line)?\s*\(`),
		regexp.MustCompile(`_logger\.(Log|Debug|Info|Warn|Error)\s*\(`),
	}
}

// Matcher は固定パターンテーブルに対するロギング文の検出を行う。
// テーブルはイミュータブルな設定として生成時に受け取り、以降変更しない。
// 純粋関数的であり、同一入力に対して常に同一の結果を返す。
type Matcher struct {
	patterns []*regexp.Regexp
}

// NewMatcher は指定されたパターンテーブルを持つMatcherを生成する。
// patternsがnilの場合はDefaultPatternsを使用する。
func NewMatcher(patterns []*regexp.Regexp) *Matcher {
	if patterns == nil {
		patterns = DefaultPatterns()
	}
	return &Matcher{patterns: patterns}
}

// Match はテキスト中のロギング文のマッチ総数と、
// 最初にマッチした行のプレビュー（トリム済み、最大100文字）を返す。
// マッチがない場合は(0, "")を返す。任意のテキストに対して失敗しない。
func (m *Matcher) Match(content string) (int, string) {
	count := 0
	for _, p := range m.patterns {
		count += len(p.FindAllStringIndex(content, -1))
	}
	if count == 0 {
		return 0, ""
	}

	preview := ""
	for _, line := range strings.Split(content, "\n") {
		if m.lineMatches(line) {
			preview = truncateRunes(strings.TrimSpace(line), previewMaxLen)
			break
		}
	}

	return count, preview
}

// lineMatches は1行がいずれかのパターンにマッチするかを返す。
func (m *Matcher) lineMatches(line string) bool {
	for _, p := range m.patterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// truncateRunes は文字列をルーン単位でmax文字に切り詰める。
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

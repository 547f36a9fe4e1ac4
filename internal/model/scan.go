// Package model はドメインモデルを定義する。
package model

// ScanCandidate はスキャン対象として取得した1ファイルを表す。
// フェッチ時に生成され、スキャンレスポンス送信後は破棄される（永続化しない）。
type ScanCandidate struct {
	Path     string // リポジトリルートからの相対パス
	Language string // 拡張子から導出した言語ラベル
	Content  string // デコード済みのファイル本文
	SHA      string // blobのコンテンツハッシュ
}

// ScanResult はロギング文が検出された1ファイルのスキャン結果を表す。
// MatchCountは常に1以上（マッチ0件のファイルは結果に含めない）。
type ScanResult struct {
	Path       string `json:"path"`
	Language   string `json:"language"`
	MatchCount int    `json:"matchCount"`
	Preview    string `json:"preview"` // 最初にマッチした行（最大100文字）
	SHA        string `json:"sha"`
	Content    string `json:"content"`
}

// ScanSummary はリポジトリスキャンのAPIレスポンスを表す。
type ScanSummary struct {
	Success      bool         `json:"success"`
	Results      []ScanResult `json:"results"`
	TotalFiles   int          `json:"totalFiles"`
	TotalMatches int          `json:"totalMatches"`
}

package model

// TransformResult は生成APIが返した1件の変換結果を表す。
// レスポンスのパースに失敗した場合はCodeに生テキストを格納し、
// 他のフィールドはセンチネル値（Library="unknown"等）で埋める。
type TransformResult struct {
	Code    string   `json:"code"`
	Library string   `json:"library"`
	Install string   `json:"install"`
	Imports []string `json:"imports"`
	Tips    []string `json:"tips"`
}

// TransformSuggestion はバッチ変換における1ファイル分の提案を表す。
// 変換に失敗した場合もSuccess=falseのレコードとして保持し、
// UIがファイル単位で失敗を報告できるようにする。
type TransformSuggestion struct {
	Path        string   `json:"path"`
	Success     bool     `json:"success"`
	Original    string   `json:"original"`
	Transformed string   `json:"transformed,omitempty"`
	Library     string   `json:"library"`
	Install     string   `json:"install"`
	Tips        []string `json:"tips"`
}

// TransformInput はバッチ変換に渡す1ファイル分の入力を表す。
type TransformInput struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	Language string `json:"language"`
}

// PRFile はPR作成時にユーザーが選択した1ファイルを表す。
// SHAはスキャン時に取得したblobハッシュで、PR作成時の鮮度検証に使用する。
type PRFile struct {
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Language string `json:"language"`
}

// PullRequestResult はPR作成の結果を表す。
type PullRequestResult struct {
	Success   bool     `json:"success"`
	PRURL     string   `json:"prUrl"`
	PRNumber  int      `json:"prNumber"`
	Committed []string `json:"committed"` // コミットに成功したファイルパス
	Skipped   []string `json:"skipped"`   // スキップされたファイルパス
}

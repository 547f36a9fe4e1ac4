package model

// TreeEntry はリポジトリツリーの1エントリを表す。
type TreeEntry struct {
	Path string
	SHA  string
	Type string // "blob" または "tree"
}

// IsBlob はエントリがファイル（blob）かどうかを返す。
func (e TreeEntry) IsBlob() bool {
	return e.Type == "blob"
}

// =============================================================================
// ident.go - 安定識別子
// =============================================================================
package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// recordIDSeparator はタイトルとリンクの結合に使う固定区切り
const recordIDSeparator = "\x1f"

// RecordID は (title, link) から決定的なコンテンツハッシュIDを計算する
//
// 同じ入力は常に同じIDになり、リンクが変われば（タイトルが同じでも）
// IDが変わる。表示・外部連携用の代理キーであり、ラン間の照合キーは
// citation.link の方（タイトルが空のページがあるため）。
func RecordID(title, link string) string {
	h := sha256.Sum256([]byte(strings.TrimSpace(title) + recordIDSeparator + strings.TrimSpace(link)))
	return hex.EncodeToString(h[:])[:16]
}

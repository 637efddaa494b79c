// =============================================================================
// theme.go - テーマフィルタ
// =============================================================================
package pipeline

import "strings"

// themeKeywords はノイズの多いソース向けの関連性判定キーワード
//
// 医療・ヘルスケア・介護・医療DX関連の更新だけを残すための広めのリスト。
// ソース側の sourceSpec.ThemeFiltered が true のソースにのみ適用される。
var themeKeywords = []string{
	"医療", "ヘルスケア", "介護", "健康", "診療", "医薬", "医療機器",
	"デジタル", "DX", "情報システム", "データヘルス", "オンライン診療",
	"SaMD", "プログラム医療機器",
	"health", "medical", "care", "digital", "device", "software",
}

// MatchesTheme はテキストがテーマキーワードのいずれかを含むか判定する
//
// 本文が空のレコード（詳細ページの取得失敗）には適用しない運用で、
// その場合は「要確認」の低信頼レコードとして素通しする。取得失敗を
// 黙って落とすより、レビュー対象として残す方針。
func MatchesTheme(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

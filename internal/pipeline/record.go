// =============================================================================
// record.go - レコード構築
// =============================================================================
//
// 抽出したリンク1本（ラベル + 詳細ページ本文）から構造化レコードを導出します。
// 日付推定・文書種別推定・締切抽出・要約生成はすべてベストエフォートの
// ヒューリスティックで、失敗しても値が空になるだけでエラーにはなりません。
//
// =============================================================================
package pipeline

import (
	"regexp"
	"strings"
	"time"
)

// 日付トークンの検出パターン
//
// 優先順: 令和表記 → 年月日表記 → 数値区切り → 英語月名。
var (
	reDateEra     = regexp.MustCompile(`令和\s*(\d{1,2})年\s*(\d{1,2})月\s*(\d{1,2})日`)
	reDateJPYMD   = regexp.MustCompile(`(\d{4})年\s*(\d{1,2})月\s*(\d{1,2})日`)
	reDateNumeric = regexp.MustCompile(`(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})`)
	reDateMDY     = regexp.MustCompile(`(?i)\b(Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:tember)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\.?\s+(\d{1,2}),?\s+(\d{4})`)
	reDateDMY     = regexp.MustCompile(`(?i)\b(\d{1,2})\s+(Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:tember)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\.?\s+(\d{4})`)
)

// 締切を示す語。この直後（約20文字以内）に日付トークンがあれば締切とみなす。
var reDeadlineIndicator = regexp.MustCompile(`(?i)(締切|締め切り|〆切|応募期限|公募期限|提出期限|deadline)`)

// 版数表記（第2版 / Ver.2.1 など）
var reVersion = regexp.MustCompile(`(第?\d+版|Ver\.?\s*\d+(?:\.\d+)*)`)

var englishMonths = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// 文書種別のキーワードファミリー
//
// 1ページに複数ファミリーの語が混在することがあるため、判定順が意味を持つ。
// 公募系が最優先（公募ページにもガイドラインへの言及が多いため）。
var docTypeFamilies = []struct {
	docType  DocType
	keywords []string
}{
	{DocTypeCall, []string{"公募", "募集", "応募", "採択", "助成"}},
	{DocTypeGuidance, []string{"ガイドライン", "指針", "手引き", "q&a", "faq", "guidance", "guideline"}},
	{DocTypeNotice, []string{"通知", "事務連絡", "notice"}},
	{DocTypeSafety, []string{"回収", "安全性", "注意喚起", "recall", "safety"}},
	{DocTypeNews, []string{"news", "お知らせ", "ニュース"}},
}

// datePrefixRunes は本文から日付を推定するときに見る先頭文字数
const datePrefixRunes = 240

// summaryMaxRunes は要約の最大文字数（超過分は "…" 付きで切り詰め）
const summaryMaxRunes = 260

// BuildRecord はラベルと詳細ページ本文から構造化レコードを1件導出する
//
// 純粋関数（ネットワークアクセスなし）。本文が空（詳細ページの取得失敗）の
// 場合は定型の代替要約を入れた低信頼レコードになる。
func BuildRecord(label, link, bodyText string, hints SourceHints) Record {
	title := strings.TrimSpace(label)
	if title == "" {
		title = hints.Publisher + " update"
	}

	combined := title + " " + bodyText

	date := guessDate(title)
	if date == "" {
		date = guessDate(truncatePrefix(bodyText, datePrefixRunes))
	}

	docType := inferDocType(combined)

	deadline := ""
	if docType == DocTypeCall {
		deadline = extractDeadline(combined)
	}

	summary := hints.FallbackSummary
	if bodyText != "" {
		summary = truncateRunes(bodyText, summaryMaxRunes)
	}

	return Record{
		Title:        title,
		ID:           RecordID(title, link),
		Date:         date,
		Jurisdiction: hints.Jurisdiction,
		DocType:      docType,
		KeyFacts:     buildKeyFacts(combined, hints),
		Summary:      summary,
		Deadline:     deadline,
		Citation: Citation{
			Type:      "web",
			Publisher: hints.Publisher,
			Link:      link,
		},
	}
}

// guessDate はテキスト中の最初の日付トークンをISO形式で返す（失敗時は空）
func guessDate(s string) string {
	if s == "" {
		return ""
	}

	if m := reDateEra.FindStringSubmatch(s); m != nil {
		// 令和N年 = 2018+N 年
		return formatDate(2018+atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := reDateJPYMD.FindStringSubmatch(s); m != nil {
		return formatDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := reDateNumeric.FindStringSubmatch(s); m != nil {
		return formatDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := reDateMDY.FindStringSubmatch(s); m != nil {
		if mon, ok := englishMonths[strings.ToLower(m[1])[:3]]; ok {
			return formatDate(atoi(m[3]), int(mon), atoi(m[2]))
		}
	}
	if m := reDateDMY.FindStringSubmatch(s); m != nil {
		if mon, ok := englishMonths[strings.ToLower(m[2])[:3]]; ok {
			return formatDate(atoi(m[3]), int(mon), atoi(m[1]))
		}
	}
	return ""
}

// formatDate は年月日を検証してISO形式にする（2月30日などは空を返す）
func formatDate(year, month, day int) string {
	if year < 1900 || year > 2100 || month < 1 || month > 12 || day < 1 || day > 31 {
		return ""
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return ""
	}
	return t.Format("2006-01-02")
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// inferDocType はキーワードファミリーを優先順に走査して文書種別を決める
func inferDocType(text string) DocType {
	lower := strings.ToLower(text)
	for _, family := range docTypeFamilies {
		for _, kw := range family.keywords {
			if strings.Contains(lower, kw) {
				return family.docType
			}
		}
	}
	return DocTypeOther
}

// deadlineWindowRunes は締切語の直後で日付を探す範囲
const deadlineWindowRunes = 24

// extractDeadline は締切語の近傍から締切日を抽出する
//
// 締切語の直後に日付がない場合は、テキスト中の最初の日付トークンに
// フォールバックする。どちらも失敗すれば空。
func extractDeadline(text string) string {
	if loc := reDeadlineIndicator.FindStringIndex(text); loc != nil {
		window := truncatePrefix(text[loc[1]:], deadlineWindowRunes)
		if d := guessDate(window); d != "" {
			return d
		}
	}
	return guessDate(text)
}

// buildKeyFacts はソース固有キーワードの出現から注記を作る
//
// 出力順はキーワードリスト順（本文中の出現順ではない）。重複なし。
// AnnotateVersion が有効なソースでは版数表記も拾う。
func buildKeyFacts(text string, hints SourceHints) []string {
	lower := strings.ToLower(text)
	facts := []string{}
	if hints.AnnotateVersion {
		if m := reVersion.FindString(text); m != "" {
			facts = append(facts, "版数: "+m)
		}
	}
	for _, kw := range hints.KeyFactKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			facts = append(facts, "含意: "+kw)
		}
	}
	return uniqStrings(facts)
}

// truncatePrefix は先頭 max 文字（rune）を返す（省略記号は付けない）
func truncatePrefix(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

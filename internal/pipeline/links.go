// =============================================================================
// links.go - リンク抽出
// =============================================================================
//
// 一覧ページのHTMLから、キーワードに合致する更新候補リンクを抽出します。
// 全ソース共通の単一実装で、ソースごとの違いはキーワードセット・
// ドメインフィルタ・件数上限のパラメータだけです。
//
// =============================================================================
package pipeline

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Link は抽出した1本のリンク
type Link struct {
	URL   string // baseURL に対して解決済みの絶対URL
	Label string // アンカーテキスト（空の場合は絶対URL）
}

// ExtractLinks はHTML内の全アンカーから、キーワードに合致するリンクを返す
//
// マッチ条件（大文字小文字無視）: キーワードがアンカーテキスト、href、
// またはアンカーテキスト+相対パスの結合文字列のいずれかに含まれること。
//
// スキップ対象: href が空、フラグメントのみ（"#..."）、mailto: リンク。
// domainFilter が空でない場合、解決後URLにその部分文字列を含まないリンクは
// 捨てる。絶対URLで重複排除し、初出を残して出現順を保つ。
// 合致ゼロはエラーではなく空スライス。
func ExtractLinks(baseURL, html string, keywords []string, domainFilter string) []Link {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		lowered = append(lowered, strings.ToLower(k))
	}

	out := []Link{}
	seen := map[string]bool{}

	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return
		}
		if strings.HasPrefix(href, "#") || strings.HasPrefix(href, "mailto:") {
			return
		}

		abs := resolveURL(baseURL, href)
		if abs == "" {
			return
		}
		if domainFilter != "" && !strings.Contains(abs, domainFilter) {
			return
		}

		text := strings.TrimSpace(a.Text())
		if !matchesAnyKeyword(text, abs, lowered) {
			return
		}

		if seen[abs] {
			return
		}
		seen[abs] = true

		label := text
		if label == "" {
			label = abs
		}
		out = append(out, Link{URL: abs, Label: label})
	})

	return out
}

// matchesAnyKeyword はテキスト・href・テキスト+パスの結合のいずれかで
// キーワード合致を判定する
func matchesAnyKeyword(text, absURL string, loweredKeywords []string) bool {
	if len(loweredKeywords) == 0 {
		return false
	}
	textLower := strings.ToLower(text)
	hrefLower := strings.ToLower(absURL)
	combined := textLower + " " + strings.ToLower(relativePath(absURL))
	for _, k := range loweredKeywords {
		if strings.Contains(textLower, k) || strings.Contains(hrefLower, k) || strings.Contains(combined, k) {
			return true
		}
	}
	return false
}

// relativePath は絶対URLからドメイン相対のパス部分を取り出す
func relativePath(absURL string) string {
	u, err := url.Parse(absURL)
	if err != nil {
		return ""
	}
	return u.Path
}

func resolveURL(baseURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

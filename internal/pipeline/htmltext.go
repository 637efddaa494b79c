package pipeline

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FlattenHTML はHTMLをプレーンテキストに平坦化する
//
// script/style/noscript を除去し、残りのテキストを単一スペース区切りに
// 正規化して返す。入力がHTMLとして壊れていてもエラーにはせず、
// 取り出せたテキストだけを返す（空入力は空文字列）。
func FlattenHTML(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript").Remove()
	return normalizeWhitespace(doc.Text())
}

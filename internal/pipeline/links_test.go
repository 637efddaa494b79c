package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const listingHTML = `
<html><body>
  <a href="/stf/notice1.html">医療情報システムの通知について</a>
  <a href="/stf/notice1.html">医療情報システムの通知について（再掲）</a>
  <a href="https://www.example.go.jp/guideline.pdf">安全管理ガイドライン 第6版</a>
  <a href="#section2">ページ内リンク 通知</a>
  <a href="mailto:info@example.go.jp">通知に関するお問い合わせ</a>
  <a href="/stf/other.html">関係のないページ</a>
  <a href="https://other-site.example.com/johoka/news.html">外部サイトの更新</a>
  <a href="/johoka/untitled.html"><img src="x.png"></a>
</body></html>`

func TestExtractLinksKeywordMatch(t *testing.T) {
	links := ExtractLinks("https://www.example.go.jp/index.html", listingHTML,
		[]string{"通知", "ガイドライン"}, "")

	urls := make([]string, 0, len(links))
	for _, l := range links {
		urls = append(urls, l.URL)
	}

	assert.Contains(t, urls, "https://www.example.go.jp/stf/notice1.html")
	assert.Contains(t, urls, "https://www.example.go.jp/guideline.pdf")
	assert.NotContains(t, urls, "https://www.example.go.jp/stf/other.html")
}

func TestExtractLinksSkipsFragmentAndMailto(t *testing.T) {
	links := ExtractLinks("https://www.example.go.jp/index.html", listingHTML,
		[]string{"通知"}, "")

	for _, l := range links {
		assert.NotContains(t, l.URL, "mailto:")
		assert.NotContains(t, l.URL, "#section2")
	}
}

func TestExtractLinksDedupesByURL(t *testing.T) {
	links := ExtractLinks("https://www.example.go.jp/index.html", listingHTML,
		[]string{"通知"}, "")

	seen := map[string]bool{}
	for _, l := range links {
		assert.False(t, seen[l.URL], "duplicate URL %s", l.URL)
		seen[l.URL] = true
	}

	// 初出のラベルが残る
	assert.Equal(t, "医療情報システムの通知について", links[0].Label)
}

func TestExtractLinksDomainFilter(t *testing.T) {
	links := ExtractLinks("https://www.example.go.jp/index.html", listingHTML,
		[]string{"johoka"}, "example.go.jp")

	for _, l := range links {
		assert.Contains(t, l.URL, "example.go.jp")
	}
	// other-site.example.com はフィルタで落ちる
	for _, l := range links {
		assert.NotContains(t, l.URL, "other-site")
	}
}

func TestExtractLinksHrefKeywordAndLabelFallback(t *testing.T) {
	// アンカーテキストが空でも href がキーワードに合致すれば拾い、
	// ラベルは絶対URLになる
	links := ExtractLinks("https://www.example.go.jp/index.html", listingHTML,
		[]string{"johoka"}, "example.go.jp")

	found := false
	for _, l := range links {
		if l.URL == "https://www.example.go.jp/johoka/untitled.html" {
			found = true
			assert.Equal(t, l.URL, l.Label)
		}
	}
	assert.True(t, found, "href-matched anchor with empty text should be included")
}

func TestExtractLinksPreservesOrder(t *testing.T) {
	html := `
	  <a href="/a.html">通知 A</a>
	  <a href="/b.html">通知 B</a>
	  <a href="/c.html">通知 C</a>`
	links := ExtractLinks("https://www.example.go.jp/", html, []string{"通知"}, "")

	assert.Len(t, links, 3)
	assert.Equal(t, "通知 A", links[0].Label)
	assert.Equal(t, "通知 B", links[1].Label)
	assert.Equal(t, "通知 C", links[2].Label)
}

func TestExtractLinksNoMatches(t *testing.T) {
	links := ExtractLinks("https://www.example.go.jp/", listingHTML, []string{"存在しない語"}, "")
	assert.Empty(t, links)
}

// =============================================================================
// fetch.go - HTTP取得レイヤ
// =============================================================================
//
// 一覧ページ・詳細ページの取得を行います。リトライなしの1回取得で、
// タイムアウトと非2xxはエラーとして返し、扱い（スキップ/代替要約）は
// 呼び出し側の明示的な分岐に委ねます。
//
// =============================================================================
package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

// SourceConfig は取得時のHTTP設定
//
// 1ランの開始時に1つだけ構築し、全ソースで共有する（コネクションプーリング
// 有効）。プロセス全体のグローバル状態は持たない。
type SourceConfig struct {
	UserAgent string
	Timeout   time.Duration
	Client    *http.Client
}

// DefaultSourceConfig はデフォルトのHTTP設定を返す
func DefaultSourceConfig() SourceConfig {
	timeout := 20 * time.Second
	return SourceConfig{
		UserAgent: "Mozilla/5.0 (compatible; med-relay/1.0; +https://example.invalid)",
		Timeout:   timeout,
		Client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// FetchPage はURLを1回だけGETしてボディを文字列で返す
//
// 非2xxステータスはエラー。リトライもバックオフもしない。
func FetchPage(url string, cfg SourceConfig) (string, error) {
	body, _, err := fetchBytes(url, cfg)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// detailTextMaxRunes は詳細ページ本文の最大保持文字数
const detailTextMaxRunes = 1400

// FetchDetailText は詳細ページを取得して平坦化テキストを返す
//
// リンク先がPDFの場合はPDFからテキストを抽出する。本文は先頭1400文字に
// 制限する（要約と日付推定に十分な長さ）。
func FetchDetailText(url string, cfg SourceConfig) (string, error) {
	body, contentType, err := fetchBytes(url, cfg)
	if err != nil {
		return "", err
	}

	if isPDF(url, contentType) {
		text, err := extractTextFromPDF(body)
		if err != nil {
			return "", fmt.Errorf("pdf extraction failed: %w", err)
		}
		return truncatePrefix(text, detailTextMaxRunes), nil
	}

	return truncatePrefix(FlattenHTML(string(body)), detailTextMaxRunes), nil
}

func fetchBytes(url string, cfg SourceConfig) ([]byte, string, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf")

	resp, err := cfg.Client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("GET %s: status %s", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func isPDF(url, contentType string) bool {
	if strings.Contains(contentType, "application/pdf") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(strings.SplitN(url, "?", 2)[0]), ".pdf")
}

// extractTextFromPDF はPDFバイト列から全ページのテキストを抽出する
func extractTextFromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return normalizeWhitespace(b.String()), nil
}

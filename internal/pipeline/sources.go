// =============================================================================
// sources.go - ソースレジストリと収集
// =============================================================================
//
// クロール対象の各ソース（サイト/カテゴリ）を宣言的な sourceSpec で定義し、
// 共通の収集ロジック1本（collectSource）で処理します。ソースごとの違いは
// エントリURL・キーワードセット・ドメインフィルタ・件数上限だけです。
//
// 【ソース一覧】
//   1. mhlw      - 厚労省 医療情報システム安全管理ガイドライン
//   2. pmda      - PMDA 医療機器・審査/通知
//   3. amed      - AMED 公募・ニュース
//   4. jst       - JST 公募情報（テーマフィルタ適用）
//   5. fda       - FDA Digital Health Center of Excellence
//   6. fda-press - FDA プレスリリース（RSSフィード、テーマフィルタ適用）
//   7. eu-mdr    - EU MDR (DG SANTE)
//
// =============================================================================
package pipeline

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// sourceSpec は1ソース分の静的設定
type sourceSpec struct {
	Key          string
	Category     string
	Name         string
	Publisher    string
	Jurisdiction Jurisdiction

	Pages   []string // HTML一覧ページ（上から順に処理）
	FeedURL string   // RSS/Atomフィード（Pagesの代わりに使う）

	Keywords     []string // リンク抽出用キーワード（テキスト/href両方に適用）
	DomainFilter string   // 空でなければ解決後URLがこれを含むこと

	KeyFactKeywords []string
	FallbackSummary string
	AnnotateVersion bool // 版数表記（第N版 / Ver.N）を key_facts に追加する
	ThemeFiltered   bool // テーマキーワードでの絞り込みを適用する

	MaxItemsPerPage int
}

func (s sourceSpec) hints() SourceHints {
	return SourceHints{
		Publisher:       s.Publisher,
		Jurisdiction:    s.Jurisdiction,
		KeyFactKeywords: s.KeyFactKeywords,
		FallbackSummary: s.FallbackSummary,
		AnnotateVersion: s.AnnotateVersion,
	}
}

// sourceOrder は収集順（レジストリはマップなので順序を別に持つ）
var sourceOrder = []string{"mhlw", "pmda", "amed", "jst", "fda", "fda-press", "eu-mdr"}

// sourceRegistry は全ソースの定義
var sourceRegistry = map[string]sourceSpec{
	"mhlw": {
		Key:          "mhlw",
		Category:     "regulation_and_policy",
		Name:         "厚労省 医療情報システム安全管理ガイドライン",
		Publisher:    "MHLW",
		Jurisdiction: JurisdictionJP,
		Pages: []string{
			"https://www.mhlw.go.jp/stf/seisakunitsuite/bunya/kenkou_iryou/iryou/johoka/index.html",
		},
		Keywords:        []string{"医療情報システム", "安全管理", "ガイドライン", "通知", "留意", "johoka"},
		FallbackSummary: "厚労省の関連更新（要詳細確認）。",
		AnnotateVersion: true,
		MaxItemsPerPage: 6,
	},
	"pmda": {
		Key:          "pmda",
		Category:     "regulation_and_policy",
		Name:         "PMDA（医療機器・審査/通知）",
		Publisher:    "PMDA",
		Jurisdiction: JurisdictionJP,
		Pages: []string{
			"https://www.pmda.go.jp/review-services/inspections/0001.html",
			"https://www.pmda.go.jp/medical_devices/",
		},
		Keywords: []string{
			"医療機器", "お知らせ", "通知", "審査", "承認", "認証", "安全", "Q&A",
			"事務連絡", "回収", "medical_devices", "notice", "qa", "info",
		},
		DomainFilter:    "pmda.go.jp",
		KeyFactKeywords: []string{"承認", "認証", "回収", "Q&A", "安全", "事務連絡"},
		FallbackSummary: "PMDAの関連更新（要詳細確認）。",
		MaxItemsPerPage: 6,
	},
	"amed": {
		Key:          "amed",
		Category:     "funding_and_grants",
		Name:         "AMED（公募・ニュース）",
		Publisher:    "AMED",
		Jurisdiction: JurisdictionJP,
		Pages: []string{
			"https://www.amed.go.jp/koubo/index.html",
			"https://www.amed.go.jp/news/index.html",
		},
		Keywords:        []string{"公募", "募集", "採択", "研究開発", "事業", "令和", "公示", "助成"},
		KeyFactKeywords: []string{"公募", "募集", "採択", "研究開発", "事業", "助成"},
		FallbackSummary: "AMEDの関連更新（要詳細確認）。",
		MaxItemsPerPage: 8,
	},
	"jst": {
		Key:          "jst",
		Category:     "funding_and_grants",
		Name:         "JST（公募情報）",
		Publisher:    "JST",
		Jurisdiction: JurisdictionJP,
		Pages: []string{
			"https://www.jst.go.jp/koubo/",
		},
		Keywords:        []string{"公募", "募集", "予告", "採択", "助成", "研究", "事業", "学術", "プログラム"},
		KeyFactKeywords: []string{"公募", "募集", "予告", "採択", "助成", "研究", "事業"},
		FallbackSummary: "JSTの関連更新（要詳細確認）。",
		ThemeFiltered:   true, // JSTは全分野の公募が混在するため医療/DX関連のみ残す
		MaxItemsPerPage: 10,
	},
	"fda": {
		Key:          "fda",
		Category:     "regulation_and_policy",
		Name:         "FDA Digital Health Center of Excellence",
		Publisher:    "FDA",
		Jurisdiction: JurisdictionUS,
		Pages: []string{
			"https://www.fda.gov/medical-devices/digital-health-center-excellence",
		},
		Keywords:        []string{"Digital Health", "AI", "SaMD", "software", "guidance", "news", "update", "framework"},
		KeyFactKeywords: []string{"guidance", "policy", "AI", "SaMD", "framework", "draft", "final"},
		FallbackSummary: "FDA Digital Health hub update（要詳細確認）。",
		MaxItemsPerPage: 8,
	},
	"fda-press": {
		Key:             "fda-press",
		Category:        "regulation_and_policy",
		Name:            "FDA Press Announcements",
		Publisher:       "FDA",
		Jurisdiction:    JurisdictionUS,
		FeedURL:         "https://www.fda.gov/about-fda/contact-fda/stay-informed/rss-feeds/press-releases/rss.xml",
		Keywords:        []string{"medical device", "digital health", "software", "recall", "guidance", "AI"},
		KeyFactKeywords: []string{"recall", "safety", "guidance", "AI", "device"},
		FallbackSummary: "FDA press release（要詳細確認）。",
		ThemeFiltered:   true, // プレスリリースは食品等も混在するため
		MaxItemsPerPage: 8,
	},
	"eu-mdr": {
		Key:          "eu-mdr",
		Category:     "regulation_and_policy",
		Name:         "EU MDR (DG SANTE)",
		Publisher:    "EC DG SANTE",
		Jurisdiction: JurisdictionEU,
		Pages: []string{
			"https://health.ec.europa.eu/medical-devices-sector/new-regulations_en",
		},
		Keywords: []string{
			"MDR", "IVDR", "guidance", "transition", "regulation", "notice",
			"Q&A", "FAQ", "implementing", "delegated",
		},
		DomainFilter:    "ec.europa.eu",
		KeyFactKeywords: []string{"MDR", "IVDR", "guidance", "transition", "implementing act", "delegated act", "Q&A", "FAQ"},
		FallbackSummary: "EU MDR hub update（要詳細確認）。",
		MaxItemsPerPage: 8,
	},
}

// SourceKeys は定義済みソースキーを収集順で返す
func SourceKeys() []string {
	return append([]string{}, sourceOrder...)
}

// CollectResult は収集結果とソース単位のエラーを保持する
type CollectResult struct {
	Sources []SourceBundle
	Errors  []string
}

// CollectSources は指定されたソースを順番に収集する
//
// ソース単位の失敗（一覧ページの取得失敗・未知のソース名）はエラーとして
// 記録して次のソースへ進む。どれかが失敗してもラン全体は止めない。
// delay はソース間に挟む待ち時間（相手サイトへの配慮）。
func CollectSources(keys []string, perSource int, delay time.Duration, cfg SourceConfig) *CollectResult {
	result := &CollectResult{}

	for i, key := range keys {
		if i > 0 && delay > 0 {
			time.Sleep(delay)
		}
		spec, ok := sourceRegistry[key]
		if !ok {
			msg := fmt.Sprintf("unknown source: %s", key)
			errorf("%s", msg)
			result.Errors = append(result.Errors, msg)
			continue
		}

		bundle, err := collectSource(spec, perSource, cfg)
		if err != nil {
			msg := fmt.Sprintf("collecting %s: %v", key, err)
			errorf("%s", msg)
			result.Errors = append(result.Errors, msg)
			continue
		}

		infof("collected %d items from %s", len(bundle.Items), key)
		result.Sources = append(result.Sources, bundle)
	}

	return result
}

// collectSource は1ソース分の収集を行う
//
// 一覧 → リンク抽出 → 詳細取得 → レコード構築 → テーマフィルタの流れ。
// 詳細ページの取得失敗はレコードを捨てず、本文なし（代替要約）で残す。
// エラーを返すのは候補リンクが1本も得られなかった場合のみ。
func collectSource(spec sourceSpec, perSource int, cfg SourceConfig) (SourceBundle, error) {
	maxItems := spec.MaxItemsPerPage
	if perSource > 0 {
		maxItems = perSource
	}

	var links []Link
	var fetchErrs []string

	if spec.FeedURL != "" {
		feedLinks, err := collectFeedLinks(spec.FeedURL, spec.Keywords, cfg)
		if err != nil {
			fetchErrs = append(fetchErrs, err.Error())
		}
		if len(feedLinks) > maxItems {
			feedLinks = feedLinks[:maxItems]
		}
		links = feedLinks
	} else {
		for _, page := range spec.Pages {
			html, err := FetchPage(page, cfg)
			if err != nil {
				warnf("%s: listing fetch failed: %v", spec.Key, err)
				fetchErrs = append(fetchErrs, err.Error())
				continue
			}
			pageLinks := ExtractLinks(page, html, spec.Keywords, spec.DomainFilter)
			if len(pageLinks) > maxItems {
				pageLinks = pageLinks[:maxItems]
			}
			links = append(links, pageLinks...)
		}
	}

	if len(links) == 0 && len(fetchErrs) > 0 {
		return SourceBundle{}, fmt.Errorf("no candidate links (%s)", strings.Join(fetchErrs, "; "))
	}

	hints := spec.hints()
	items := []Record{}
	seen := map[string]bool{}

	for _, link := range links {
		// 一覧ページをまたぐ重複を排除（リンクは1ラン内で一意）
		if seen[link.URL] {
			continue
		}
		seen[link.URL] = true

		body, err := FetchDetailText(link.URL, cfg)
		if err != nil {
			// 取得失敗は「本文なし」として扱い、代替要約付きで残す
			warnf("%s: detail fetch failed for %s: %v", spec.Key, link.URL, err)
			body = ""
		}

		if spec.ThemeFiltered && body != "" && !MatchesTheme(link.Label+" "+body, themeKeywords) {
			continue
		}

		items = append(items, BuildRecord(link.Label, link.URL, body, hints))
	}

	return MakeSource(spec.Category, spec.Name, spec.entryURL(), items), nil
}

// entryURL はバンドルに記録する代表URL（先頭の一覧ページまたはフィード）
func (s sourceSpec) entryURL() string {
	if len(s.Pages) > 0 {
		return s.Pages[0]
	}
	return s.FeedURL
}

// collectFeedLinks はRSS/Atomフィードから候補リンクを取り出す
//
// タイトルまたはリンクにキーワードを含むアイテムだけを残す。
func collectFeedLinks(feedURL string, keywords []string, cfg SourceConfig) ([]Link, error) {
	req, err := http.NewRequest("GET", feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := cfg.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed fetch: unexpected status %d", resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("feed parse failed: %w", err)
	}

	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		lowered = append(lowered, strings.ToLower(k))
	}

	out := []Link{}
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}
		if !matchesAnyKeyword(item.Title, item.Link, lowered) {
			continue
		}
		label := strings.TrimSpace(item.Title)
		if label == "" {
			label = item.Link
		}
		out = append(out, Link{URL: item.Link, Label: label})
	}
	return out, nil
}

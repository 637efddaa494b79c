// =============================================================================
// bundle.go - バンドル構築と永続化
// =============================================================================
//
// 収集済みレコードをソース単位のバンドルにまとめ、ラン全体の
// ReferenceBundle として JSON と YAML の2形式で書き出します。
// 書き出しは全収集・分類の完了後に1回だけ行う丸ごと上書きで、
// 途中でクラッシュしても前回のスナップショットはそのまま残ります。
//
// =============================================================================
package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MakeSource は1ソース分のレコードをバンドルに包む
//
// fetched_at は構築時点のUTC時刻。items が nil でも空スライスとして扱う。
func MakeSource(category, name, url string, items []Record) SourceBundle {
	if items == nil {
		items = []Record{}
	}
	return SourceBundle{
		Category:  category,
		Name:      name,
		URL:       url,
		FetchedAt: time.Now().UTC().Format(time.RFC3339),
		Items:     items,
	}
}

// NewReferenceBundle はラン全体のバンドルを作る
func NewReferenceBundle(sources []SourceBundle) ReferenceBundle {
	if sources == nil {
		sources = []SourceBundle{}
	}
	return ReferenceBundle{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Sources:     sources,
	}
}

// summaryFillRunes は要約を後埋めするときの最大文字数
const summaryFillRunes = 240

// quoteMaxWords は引用文の最大語数
const quoteMaxWords = 25

// EnsureSummaries は要約の後処理を全レコードに適用する
//
//   - 要約が空のレコードはタイトル + key_facts から240文字で生成する
//   - 引用文は25語に切り詰める
//
// 後処理に使える材料が無いレコードは元のまま残す（捨てない）。
func EnsureSummaries(bundle *ReferenceBundle) {
	for si := range bundle.Sources {
		for ri := range bundle.Sources[si].Items {
			summarizeRecord(&bundle.Sources[si].Items[ri])
		}
	}
}

func summarizeRecord(rec *Record) {
	if rec.Summary == "" {
		parts := append([]string{rec.Title}, rec.KeyFacts...)
		rec.Summary = truncateRunes(normalizeWhitespace(strings.Join(parts, " ")), summaryFillRunes)
	}
	if rec.Quote != "" {
		words := strings.Fields(rec.Quote)
		if len(words) > quoteMaxWords {
			rec.Quote = strings.Join(words[:quoteMaxWords], " ") + "…"
		}
	}
}

// WriteBundle はバンドルを references.json / references.yaml に書き出す
//
// 出力ディレクトリが無ければ作る。既存ファイルは丸ごと上書き。
func WriteBundle(dir string, bundle ReferenceBundle) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	if err := writeJSONFile(filepath.Join(dir, "references.json"), bundle); err != nil {
		return err
	}

	b, err := yaml.Marshal(bundle)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "references.yaml"), b, 0o644)
}

// =============================================================================
// types.go - データ構造定義
// =============================================================================
//
// med-relay 全体で使用するデータ構造を定義します。
//
//   - Record:          発見した更新1件の構造化メタデータ
//   - Citation:        出典情報（リンクがラン間の照合キー）
//   - SourceBundle:    1ソース分の収集結果
//   - ReferenceBundle: 1ラン分の全収集結果（references.json/yaml の形）
//
// =============================================================================
package pipeline

// Jurisdiction は情報源の管轄区分
type Jurisdiction string

const (
	JurisdictionJP    Jurisdiction = "JP"
	JurisdictionUS    Jurisdiction = "US"
	JurisdictionEU    Jurisdiction = "EU"
	JurisdictionMulti Jurisdiction = "multi"
)

// DocType は本文キーワードから推定した文書種別
type DocType string

const (
	DocTypeCall     DocType = "call"     // 公募・募集
	DocTypeGuidance DocType = "guidance" // ガイドライン・指針
	DocTypeNotice   DocType = "notice"   // 通知・事務連絡
	DocTypeSafety   DocType = "safety"   // 回収・安全性情報
	DocTypeNews     DocType = "news"     // お知らせ・ニュース
	DocTypeOther    DocType = "other"
)

// ChangeType は前回スナップショットとの比較結果
type ChangeType string

const (
	ChangeNew       ChangeType = "new"
	ChangeUpdated   ChangeType = "updated"
	ChangeUnchanged ChangeType = "unchanged"
)

// Citation は出典情報
//
// Link は絶対URLに解決済みで、ラン間で同一レコードを照合するキーになる。
// ID ではなく Link をキーにするのは、タイトルが空のページがあるため。
type Citation struct {
	Type      string `json:"type" yaml:"type"` // 常に "web"
	Publisher string `json:"publisher" yaml:"publisher"`
	Link      string `json:"link" yaml:"link"`
}

// Record は発見した更新1件
//
// Date / Deadline は ISO 形式（"2006-01-02"）の文字列。推定に失敗した場合は
// 空文字列のまま（omitempty でJSONから落ちる）。
type Record struct {
	Title        string       `json:"title" yaml:"title"`
	ID           string       `json:"id" yaml:"id"`
	Date         string       `json:"date,omitempty" yaml:"date,omitempty"`
	Jurisdiction Jurisdiction `json:"jurisdiction" yaml:"jurisdiction"`
	DocType      DocType      `json:"doc_type" yaml:"doc_type"`
	KeyFacts     []string     `json:"key_facts" yaml:"key_facts"`
	Summary      string       `json:"summary" yaml:"summary"`
	Deadline     string       `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	Quote        string       `json:"quote,omitempty" yaml:"quote,omitempty"`
	Citation     Citation     `json:"citation" yaml:"citation"`
	ChangeType   ChangeType   `json:"change_type,omitempty" yaml:"change_type,omitempty"`
}

// SourceBundle は1ソース（1サイト/カテゴリ）分の収集結果
//
// 1ランで1回だけ生成され、ChangeType の付与以外では構築後に変更されない。
// 次のランのバンドルで丸ごと置き換えられる。
type SourceBundle struct {
	Category  string   `json:"category" yaml:"category"`
	Name      string   `json:"name" yaml:"name"`
	URL       string   `json:"url" yaml:"url"`
	FetchedAt string   `json:"fetched_at" yaml:"fetched_at"`
	Items     []Record `json:"items" yaml:"items"`
}

// ReferenceBundle は1ラン分の全収集結果
type ReferenceBundle struct {
	GeneratedAt string         `json:"generated_at" yaml:"generated_at"`
	Sources     []SourceBundle `json:"sources" yaml:"sources"`
}

// PrevEntry は前回スナップショットから読み出す差分判定用の最小情報
type PrevEntry struct {
	Date    string
	ID      string
	Summary string
}

// SourceHints は RecordBuilder に渡すソース固有の設定
type SourceHints struct {
	Publisher       string
	Jurisdiction    Jurisdiction
	KeyFactKeywords []string // key_facts 抽出用キーワード（リスト順を維持）
	FallbackSummary string   // 本文が取得できなかったときの定型文
	AnnotateVersion bool     // 版数表記を key_facts に追加する（ガイドライン系ソース向け）
}

package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var testHints = SourceHints{
	Publisher:       "PMDA",
	Jurisdiction:    JurisdictionJP,
	KeyFactKeywords: []string{"承認", "回収", "安全"},
	FallbackSummary: "PMDAの関連更新（要詳細確認）。",
}

func TestGuessDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"iso", "公開日 2025-03-31 のお知らせ", "2025-03-31"},
		{"slash", "2025/4/1 改訂", "2025-04-01"},
		{"japanese ymd", "2025年4月1日 付けで改正", "2025-04-01"},
		{"reiwa era", "令和7年4月1日 施行", "2025-04-01"},
		{"english mdy", "Published on March 31, 2025", "2025-03-31"},
		{"english dmy", "31 March 2025", "2025-03-31"},
		{"no date", "日付を含まないテキスト", ""},
		{"invalid day", "2025-02-30 error", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, guessDate(tt.in))
		})
	}
}

func TestBuildRecordDateFromLabelThenBody(t *testing.T) {
	// ラベルに日付があればそれを優先
	rec := BuildRecord("2025年1月15日 医療機器の通知", "https://x/a", "本文 2024-12-01", testHints)
	assert.Equal(t, "2025-01-15", rec.Date)

	// ラベルに無ければ本文先頭から
	rec = BuildRecord("医療機器の通知", "https://x/a", "2024年12月1日付けの事務連絡です。", testHints)
	assert.Equal(t, "2024-12-01", rec.Date)

	// どちらにも無ければ空
	rec = BuildRecord("医療機器の通知", "https://x/a", "日付なしの本文", testHints)
	assert.Empty(t, rec.Date)
}

func TestInferDocTypePriority(t *testing.T) {
	// 公募系とガイドライン系が混在したら call が勝つ（判定順が意味を持つ）
	assert.Equal(t, DocTypeCall, inferDocType("研究開発の公募について ガイドラインを参照"))
	assert.Equal(t, DocTypeGuidance, inferDocType("医療情報システム安全管理ガイドライン"))
	assert.Equal(t, DocTypeNotice, inferDocType("事務連絡の発出について"))
	assert.Equal(t, DocTypeSafety, inferDocType("クラスI回収のお知らせ"))
	assert.Equal(t, DocTypeNews, inferDocType("最新のお知らせ一覧"))
	assert.Equal(t, DocTypeOther, inferDocType("無関係なテキスト"))
}

func TestExtractDeadline(t *testing.T) {
	assert.Equal(t, "2025-03-31", extractDeadline("応募締切: 2025-03-31"))
	assert.Equal(t, "2025-06-30", extractDeadline("提出期限は令和7年6月30日です"))

	// 締切語の近傍に日付が無ければ最初の日付トークンにフォールバック
	assert.Equal(t, "2025-05-01", extractDeadline("2025-05-01 公開。締切は追って通知します。"))

	// 日付トークンが1つも無ければ空
	assert.Empty(t, extractDeadline("締切は未定です"))
}

func TestBuildRecordDeadlineOnlyForCalls(t *testing.T) {
	// call 以外の種別では締切を探さない
	rec := BuildRecord("安全管理ガイドライン", "https://x/g", "改訂版。2025-03-31", testHints)
	assert.Equal(t, DocTypeGuidance, rec.DocType)
	assert.Empty(t, rec.Deadline)

	rec = BuildRecord("研究公募のお知らせ", "https://x/c", "応募締切: 2025-03-31", testHints)
	assert.Equal(t, DocTypeCall, rec.DocType)
	assert.Equal(t, "2025-03-31", rec.Deadline)
}

func TestBuildRecordSummaryTruncation(t *testing.T) {
	long := strings.Repeat("あ", 500)
	rec := BuildRecord("タイトル", "https://x/a", long, testHints)

	runes := []rune(rec.Summary)
	assert.Len(t, runes, summaryMaxRunes+1) // 260文字 + "…"
	assert.Equal(t, "…", string(runes[len(runes)-1]))

	short := strings.Repeat("あ", 100)
	rec = BuildRecord("タイトル", "https://x/a", short, testHints)
	assert.Equal(t, short, rec.Summary)
}

func TestBuildRecordFallbackSummary(t *testing.T) {
	rec := BuildRecord("取得失敗ページ", "https://x/a", "", testHints)
	assert.Equal(t, "PMDAの関連更新（要詳細確認）。", rec.Summary)
}

func TestBuildRecordKeyFacts(t *testing.T) {
	// キーワードリスト順で、本文中の出現順ではない。重複もしない。
	rec := BuildRecord("回収と承認について", "https://x/a", "承認 承認 回収", testHints)
	assert.Equal(t, []string{"含意: 承認", "含意: 回収"}, rec.KeyFacts)

	rec = BuildRecord("無関係", "https://x/a", "キーワードなし", testHints)
	assert.Empty(t, rec.KeyFacts)
}

func TestBuildRecordVersionAnnotation(t *testing.T) {
	hints := testHints
	hints.AnnotateVersion = true

	rec := BuildRecord("安全管理ガイドライン 第6版", "https://x/g", "", hints)
	assert.Contains(t, rec.KeyFacts, "版数: 第6版")

	rec = BuildRecord("Guideline Ver.2.1", "https://x/g", "", hints)
	assert.Contains(t, rec.KeyFacts, "版数: Ver.2.1")
}

func TestBuildRecordCitationAndID(t *testing.T) {
	rec := BuildRecord("通知", "https://x/a", "本文", testHints)
	assert.Equal(t, "web", rec.Citation.Type)
	assert.Equal(t, "PMDA", rec.Citation.Publisher)
	assert.Equal(t, "https://x/a", rec.Citation.Link)
	assert.Equal(t, RecordID("通知", "https://x/a"), rec.ID)
	assert.Empty(t, rec.ChangeType) // 分類前は未設定
}

func TestBuildRecordEmptyLabel(t *testing.T) {
	rec := BuildRecord("", "https://x/a", "", testHints)
	assert.Equal(t, "PMDA update", rec.Title)
}

// =============================================================================
// main.go - med-relay パイプラインのエントリーポイント
// =============================================================================
//
// 規制・公募・市場関連の公開ページを1回クロールし、更新候補リンクを
// 構造化レコードに変換して references.json / references.yaml に保存する
// CLIツールです。
//
// 【処理フロー】
//
//	┌─────────────┐    ┌─────────────┐    ┌─────────────┐
//	│  1. 設定     │ -> │  2. 収集    │ -> │  3. 差分    │
//	│  読み込み    │    │  スクレイピ │    │  分類       │
//	└─────────────┘    └─────────────┘    └─────────────┘
//	       │                  │                  │
//	       v                  v                  v
//	.env読み込み        各ソースを順番に    前回スナップショット
//	CLIフラグ解析       クロール            と突き合わせ
//
//	┌─────────────┐    ┌─────────────┐
//	│  4. 出力     │ -> │  5. 配信    │
//	│  JSON/YAML  │    │  Notion     │
//	└─────────────┘    └─────────────┘
//
// 【CLIフラグ一覧】
//
//	-sources     収集するソース（カンマ区切り、デフォルト: all）
//	-perSource   一覧ページあたりの最大件数（0=ソースごとのデフォルト）
//	-delayMs     ソース間の待ち時間（デフォルト: 500ms）
//	-out         出力ディレクトリ（デフォルト: datastore）
//	-snapshot    差分判定用スナップショットのパス
//	-notionClip  new/updated レコードをNotionに保存
//
// 個別ソースの失敗はログに残して続行し、終了コードは0のまま
// （部分的なデータでも無いよりは良い、という方針）。
//
// =============================================================================
package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"

	"med-relay/internal/pipeline"
)

func main() {
	// .env ファイルから環境変数を読み込み（無ければ環境変数のみで続行）
	if err := godotenv.Load(); err != nil {
		warnf(".env file not loaded: %v (using environment variables only)", err)
	}

	cfg := ParseFlags()

	sources := cfg.Input.Sources()
	if len(sources) == 0 {
		fatalf("no sources specified")
	}

	// --- 1) Load previous snapshot (missing/corrupt -> everything is new) ---
	prevIndex := pipeline.LoadPrevIndex(cfg.Output.Snapshot())
	infof("previous snapshot: %d known links", len(prevIndex))

	// --- 2) Collect sources sequentially ---
	srcCfg := pipeline.DefaultSourceConfig()
	delay := time.Duration(cfg.Input.DelayMs) * time.Millisecond
	result := pipeline.CollectSources(sources, cfg.Input.PerSource, delay, srcCfg)

	if len(result.Errors) > 0 {
		warnf("%d source(s) failed (collected from %d of %d sources)",
			len(result.Errors), len(result.Sources), len(sources))
	}

	// --- 3) Classify changes against the previous snapshot ---
	bundle := pipeline.NewReferenceBundle(result.Sources)
	for i := range bundle.Sources {
		pipeline.ClassifyChanges(bundle.Sources[i].Items, prevIndex)
	}

	// --- 4) Post-process summaries and persist ---
	pipeline.EnsureSummaries(&bundle)

	if err := pipeline.WriteBundle(cfg.Output.OutDir, bundle); err != nil {
		fatalf("writing bundle: %v", err)
	}
	infof("wrote %s/references.(json|yaml): %d sources", cfg.Output.OutDir, len(bundle.Sources))

	// --- 5) Clip to Notion (if enabled) ---
	if cfg.Output.NotionClip {
		clipToNotion(cfg, bundle)
	}
}

// clipToNotion は new/updated レコードをNotionデータベースに保存する
func clipToNotion(cfg *PipelineConfig, bundle pipeline.ReferenceBundle) {
	notionToken := os.Getenv("NOTION_TOKEN")
	if notionToken == "" {
		fatalf("NOTION_TOKEN environment variable is required for Notion integration")
	}

	clipper, err := pipeline.NewNotionClipper(notionToken, cfg.Output.NotionDatabaseID)
	if err != nil {
		fatalf("creating Notion clipper: %v", err)
	}

	ctx := context.Background()

	if cfg.Output.NotionDatabaseID == "" {
		if cfg.Output.NotionPageID == "" {
			fatalf("-notionPageID is required when creating a new Notion database")
		}
		dbID, err := clipper.CreateDatabase(ctx, cfg.Output.NotionPageID)
		if err != nil {
			fatalf("creating Notion database: %v", err)
		}
		infof("Notion database created: %s (set NOTION_DATABASE_ID=%s in .env)", dbID, dbID)
	}

	clipped := clipper.ClipFreshRecords(ctx, bundle)
	infof("clipped %d records to Notion", clipped)
}

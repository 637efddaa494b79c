// =============================================================================
// config.go - パイプライン設定
// =============================================================================
//
// CLIフラグの解析と設定管理を行います。
//
// =============================================================================
package main

import (
	"flag"
	"os"
	"path/filepath"
	"strings"

	"med-relay/internal/pipeline"
)

// PipelineConfig はパイプラインの全設定を保持する
type PipelineConfig struct {
	Input  InputConfig
	Output OutputConfig
}

// InputConfig は入力ソースに関する設定
type InputConfig struct {
	// SourcesRaw はカンマ区切りのソース文字列（-sources フラグの値）
	SourcesRaw string

	// PerSource はソースあたりの最大件数（0=各ソースのデフォルト上限）
	PerSource int

	// DelayMs はソース間の待ち時間（ミリ秒）
	DelayMs int
}

// Sources はSourcesRawをパースしてスライスで返す
// "all" を指定すると全ソースに展開される
func (c *InputConfig) Sources() []string {
	var result []string
	for _, s := range strings.Split(c.SourcesRaw, ",") {
		s = strings.TrimSpace(strings.ToLower(s))
		if s == "" {
			continue
		}
		if s == "all" {
			return pipeline.SourceKeys()
		}
		result = append(result, s)
	}
	return result
}

// OutputConfig は出力に関する設定
type OutputConfig struct {
	// OutDir は references.json / references.yaml の出力先ディレクトリ
	OutDir string

	// SnapshotPath は差分判定に使う前回スナップショット
	// （空の場合は OutDir/references.json、つまり前回の出力）
	SnapshotPath string

	// NotionClip がtrueの場合、new/updated レコードをNotionに保存
	NotionClip bool

	// NotionPageID は新規データベース作成時の親ページID
	NotionPageID string

	// NotionDatabaseID は既存のデータベースID
	NotionDatabaseID string
}

// Snapshot は実際に読むスナップショットのパスを返す
func (c *OutputConfig) Snapshot() string {
	if c.SnapshotPath != "" {
		return c.SnapshotPath
	}
	return filepath.Join(c.OutDir, "references.json")
}

// ParseFlags はCLIフラグを解析してPipelineConfigを返す
func ParseFlags() *PipelineConfig {
	cfg := &PipelineConfig{}

	// Input flags
	flag.StringVar(&cfg.Input.SourcesRaw, "sources", "all", "sources to crawl (comma separated, or 'all')")
	flag.IntVar(&cfg.Input.PerSource, "perSource", 0, "max items per listing page (0=per-source default)")
	flag.IntVar(&cfg.Input.DelayMs, "delayMs", 500, "delay between sources in milliseconds")

	// Output flags
	flag.StringVar(&cfg.Output.OutDir, "out", "datastore", "output directory for references.json/yaml")
	flag.StringVar(&cfg.Output.SnapshotPath, "snapshot", "", "previous snapshot path (default: <out>/references.json)")
	flag.BoolVar(&cfg.Output.NotionClip, "notionClip", false, "clip new/updated records to Notion database")
	flag.StringVar(&cfg.Output.NotionPageID, "notionPageID", os.Getenv("NOTION_PAGE_ID"), "parent page ID for creating new Notion database")
	flag.StringVar(&cfg.Output.NotionDatabaseID, "notionDatabaseID", os.Getenv("NOTION_DATABASE_ID"), "existing Notion database ID")

	flag.Parse()
	return cfg
}

// =============================================================================
// Lambda: collect-updates
// =============================================================================
//
// 全ソースから規制・公募の更新を収集し、Notion DBに保存するLambda関数。
// Lambda環境ではローカルのスナップショットを持たないため差分分類は行わず、
// 収集した全レコードをそのまま保存します。
//
// 環境変数:
//   - NOTION_TOKEN:       Notion API Token (必須)
//   - NOTION_DATABASE_ID: NotionデータベースID (必須)
//   - SOURCES:            収集するソース (デフォルト: all)
//   - PER_SOURCE:         一覧ページあたりの件数 (デフォルト: 0 = ソース既定)
//   - DELAY_MS:           ソース間の待ち時間ミリ秒 (デフォルト: 500)
//
// =============================================================================
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/lambda"

	"med-relay/internal/pipeline"
)

// LambdaConfig は環境変数から読み込む設定
type LambdaConfig struct {
	Sources          string
	PerSource        int
	DelayMs          int
	NotionToken      string
	NotionDatabaseID string
}

// Response はLambdaレスポンス
type Response struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Collected  int    `json:"collected"`
	Clipped    int    `json:"clipped"`
}

// Handler はLambdaのメインハンドラー
func Handler(ctx context.Context, event interface{}) (Response, error) {
	log.Println("Starting collect-updates Lambda...")

	cfg := loadConfig()

	if cfg.NotionToken == "" {
		return Response{StatusCode: 400, Message: "NOTION_TOKEN is required"}, fmt.Errorf("NOTION_TOKEN is required")
	}
	if cfg.NotionDatabaseID == "" {
		return Response{StatusCode: 400, Message: "NOTION_DATABASE_ID is required"}, fmt.Errorf("NOTION_DATABASE_ID is required")
	}

	log.Printf("Config: sources=%s, perSource=%d", cfg.Sources, cfg.PerSource)

	sources := parseSources(cfg.Sources)
	srcCfg := pipeline.DefaultSourceConfig()
	delay := time.Duration(cfg.DelayMs) * time.Millisecond

	result := pipeline.CollectSources(sources, cfg.PerSource, delay, srcCfg)

	if len(result.Errors) > 0 {
		log.Printf("WARNING: %d source(s) failed:", len(result.Errors))
		for _, e := range result.Errors {
			log.Printf("  %s", e)
		}
	}

	collected := 0
	for _, src := range result.Sources {
		collected += len(src.Items)
	}
	log.Printf("Collected %d records from %d sources", collected, len(result.Sources))

	if collected == 0 {
		return Response{StatusCode: 200, Message: "No records collected"}, nil
	}

	bundle := pipeline.NewReferenceBundle(result.Sources)
	pipeline.EnsureSummaries(&bundle)

	clipper, err := pipeline.NewNotionClipper(cfg.NotionToken, cfg.NotionDatabaseID)
	if err != nil {
		log.Printf("Error creating Notion clipper: %v", err)
		return Response{StatusCode: 500, Message: err.Error(), Collected: collected}, err
	}

	clipped := clipper.ClipFreshRecords(ctx, bundle)
	log.Printf("Clipped %d records to Notion", clipped)

	msg := fmt.Sprintf("Collected %d, clipped %d", collected, clipped)
	if len(result.Errors) > 0 {
		msg += fmt.Sprintf(" (%d source errors)", len(result.Errors))
	}
	return Response{StatusCode: 200, Message: msg, Collected: collected, Clipped: clipped}, nil
}

func loadConfig() LambdaConfig {
	return LambdaConfig{
		Sources:          envOrDefault("SOURCES", "all"),
		PerSource:        envInt("PER_SOURCE", 0),
		DelayMs:          envInt("DELAY_MS", 500),
		NotionToken:      os.Getenv("NOTION_TOKEN"),
		NotionDatabaseID: os.Getenv("NOTION_DATABASE_ID"),
	}
}

func parseSources(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(strings.ToLower(s))
		if s == "" {
			continue
		}
		if s == "all" {
			return pipeline.SourceKeys()
		}
		out = append(out, s)
	}
	return out
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func main() {
	lambda.Start(Handler)
}

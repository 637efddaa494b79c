package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestMakeSource(t *testing.T) {
	src := MakeSource("regulation_and_policy", "PMDA", "https://x/", nil)

	assert.Equal(t, "regulation_and_policy", src.Category)
	assert.NotNil(t, src.Items)
	assert.Empty(t, src.Items)

	fetched, err := time.Parse(time.RFC3339, src.FetchedAt)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), fetched, time.Minute)
}

func TestEnsureSummariesFillsEmptySummary(t *testing.T) {
	bundle := NewReferenceBundle([]SourceBundle{
		{Items: []Record{
			{Title: "公募のお知らせ", KeyFacts: []string{"含意: 公募"}},
		}},
	})

	EnsureSummaries(&bundle)

	assert.Equal(t, "公募のお知らせ 含意: 公募", bundle.Sources[0].Items[0].Summary)
}

func TestEnsureSummariesKeepsExistingSummary(t *testing.T) {
	bundle := NewReferenceBundle([]SourceBundle{
		{Items: []Record{{Title: "t", Summary: "既存の要約"}}},
	})

	EnsureSummaries(&bundle)

	assert.Equal(t, "既存の要約", bundle.Sources[0].Items[0].Summary)
}

func TestEnsureSummariesTrimsLongQuote(t *testing.T) {
	words := strings.Fields(strings.Repeat("word ", 40))
	bundle := NewReferenceBundle([]SourceBundle{
		{Items: []Record{{Title: "t", Summary: "s", Quote: strings.Join(words, " ")}}},
	})

	EnsureSummaries(&bundle)

	quote := bundle.Sources[0].Items[0].Quote
	assert.True(t, strings.HasSuffix(quote, "…"))
	assert.Len(t, strings.Fields(strings.TrimSuffix(quote, "…")), quoteMaxWords)
}

func TestWriteBundleProducesBothFormats(t *testing.T) {
	dir := t.TempDir()
	bundle := NewReferenceBundle([]SourceBundle{
		MakeSource("funding_and_grants", "AMED", "https://x/", []Record{
			{
				Title:    "公募",
				ID:       "abc",
				KeyFacts: []string{"含意: 公募"},
				Summary:  "s",
				Citation: Citation{Type: "web", Publisher: "AMED", Link: "https://x/a"},
			},
		}),
	})

	require.NoError(t, WriteBundle(dir, bundle))

	// JSON側を読み戻せること
	var fromJSON ReferenceBundle
	require.NoError(t, readJSONFile(filepath.Join(dir, "references.json"), &fromJSON))
	assert.Equal(t, bundle.GeneratedAt, fromJSON.GeneratedAt)
	require.Len(t, fromJSON.Sources, 1)
	assert.Equal(t, "公募", fromJSON.Sources[0].Items[0].Title)

	// YAML側も等価であること
	yamlBytes, err := os.ReadFile(filepath.Join(dir, "references.yaml"))
	require.NoError(t, err)
	var fromYAML ReferenceBundle
	require.NoError(t, yaml.Unmarshal(yamlBytes, &fromYAML))
	assert.Equal(t, fromJSON.GeneratedAt, fromYAML.GeneratedAt)
	require.Len(t, fromYAML.Sources, 1)
	assert.Equal(t, fromJSON.Sources[0].Items, fromYAML.Sources[0].Items)
}

func TestWriteBundleOverwritesPrevious(t *testing.T) {
	dir := t.TempDir()

	first := NewReferenceBundle([]SourceBundle{MakeSource("c", "n1", "https://x/", nil)})
	require.NoError(t, WriteBundle(dir, first))

	second := NewReferenceBundle([]SourceBundle{MakeSource("c", "n2", "https://x/", nil)})
	require.NoError(t, WriteBundle(dir, second))

	var got ReferenceBundle
	require.NoError(t, readJSONFile(filepath.Join(dir, "references.json"), &got))
	require.Len(t, got.Sources, 1)
	assert.Equal(t, "n2", got.Sources[0].Name)
}

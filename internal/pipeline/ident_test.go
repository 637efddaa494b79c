package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordIDDeterministic(t *testing.T) {
	a := RecordID("医療機器の通知", "https://x/a")
	b := RecordID("医療機器の通知", "https://x/a")
	assert.Equal(t, a, b)
	assert.Len(t, a, 16)
}

func TestRecordIDLinkSensitive(t *testing.T) {
	// タイトルが同じでもリンクが違えばIDは変わる
	a := RecordID("同じタイトル", "https://x/a")
	b := RecordID("同じタイトル", "https://x/b")
	assert.NotEqual(t, a, b)
}

func TestRecordIDTitleSensitive(t *testing.T) {
	a := RecordID("タイトルA", "https://x/a")
	b := RecordID("タイトルB", "https://x/a")
	assert.NotEqual(t, a, b)
}

func TestRecordIDTrimsInput(t *testing.T) {
	a := RecordID("  title  ", "  https://x/a  ")
	b := RecordID("title", "https://x/a")
	assert.Equal(t, a, b)
}

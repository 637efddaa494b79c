// =============================================================================
// diff.go - 変更分類
// =============================================================================
//
// 新しいクロール結果を前回スナップショットと突き合わせ、各レコードに
// new / updated / unchanged を付与します。
//
// 判定は「日付が変わったか、要約の先頭120文字が変わったか」という
// 近似であり、ページ全体のハッシュ比較ではありません。見逃し
// （日付も要約先頭も偶然一致）と過検出（要約の切り詰め境界のずれ）は
// 仕様として許容している既知の限界です。
//
// =============================================================================
package pipeline

// summaryComparePrefix は updated 判定で比較する要約の先頭文字数
const summaryComparePrefix = 120

// BuildPrevIndex は前回バンドルから link → PrevEntry の索引を作る
func BuildPrevIndex(bundle *ReferenceBundle) map[string]PrevEntry {
	index := map[string]PrevEntry{}
	if bundle == nil {
		return index
	}
	for _, src := range bundle.Sources {
		for _, item := range src.Items {
			if item.Citation.Link == "" {
				continue
			}
			index[item.Citation.Link] = PrevEntry{
				Date:    item.Date,
				ID:      item.ID,
				Summary: item.Summary,
			}
		}
	}
	return index
}

// LoadPrevIndex は前回の references.json を読み込んで索引にする
//
// ファイルが無い・壊れている場合は「前回状態なし」として空の索引を返す
// （その結果、全レコードが new になる）。初回実行と同じ扱い。
func LoadPrevIndex(path string) map[string]PrevEntry {
	var bundle ReferenceBundle
	if err := readJSONFile(path, &bundle); err != nil {
		warnf("previous snapshot not loaded (%v), treating all records as new", err)
		return map[string]PrevEntry{}
	}
	return BuildPrevIndex(&bundle)
}

// ClassifyChanges は各レコードに change_type を付与する（in place）
//
//   - 索引にリンクが無い → new
//   - 日付が入っていて前回と異なる、または両方の要約があり先頭120文字が
//     異なる → updated
//   - それ以外 → unchanged
func ClassifyChanges(records []Record, prev map[string]PrevEntry) {
	for i := range records {
		records[i].ChangeType = classifyOne(&records[i], prev)
	}
}

func classifyOne(rec *Record, prev map[string]PrevEntry) ChangeType {
	entry, ok := prev[rec.Citation.Link]
	if !ok {
		return ChangeNew
	}
	if rec.Date != "" && rec.Date != entry.Date {
		return ChangeUpdated
	}
	if rec.Summary != "" && entry.Summary != "" &&
		truncatePrefix(rec.Summary, summaryComparePrefix) != truncatePrefix(entry.Summary, summaryComparePrefix) {
		return ChangeUpdated
	}
	return ChangeUnchanged
}

package book

import (
	"iter"
	"slices"
	"sort"

	"xiangqi/internal/xiangqi"
)

// Index 按局面分组的频率表。构建后只读，可被多个请求并发读取。
type Index struct {
	byBoard map[string][]Record
	order   []string // 局面首次出现的顺序
	total   int
}

// Build 按局面分组，组内按频率降序稳定排序（同频保持输入顺序）。
func Build(records []Record) *Index {
	ix := &Index{byBoard: make(map[string][]Record)}
	for _, rec := range records {
		if _, seen := ix.byBoard[rec.Board]; !seen {
			ix.order = append(ix.order, rec.Board)
		}
		ix.byBoard[rec.Board] = append(ix.byBoard[rec.Board], rec)
	}
	for _, group := range ix.byBoard {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Frequency > group[j].Frequency
		})
	}
	ix.total = len(records)
	return ix
}

// Lookup 精确匹配局面。找不到是常态，不是错误。返回副本，索引本身只读。
func (ix *Index) Lookup(board string) ([]Record, bool) {
	group, ok := ix.byBoard[board]
	return slices.Clone(group), ok
}

// Moves 返回该局面下 side 方的记录，频率降序。
func (ix *Index) Moves(board string, side xiangqi.Side) []Record {
	var out []Record
	for _, rec := range ix.byBoard[board] {
		if rec.Side == side {
			out = append(out, rec)
		}
	}
	return out
}

// All 按首次出现顺序遍历所有局面。产出的切片是内部数据，调用方不得修改。
func (ix *Index) All() iter.Seq2[string, []Record] {
	return func(yield func(string, []Record) bool) {
		for _, board := range ix.order {
			if !yield(board, ix.byBoard[board]) {
				return
			}
		}
	}
}

// Len 不同局面数。
func (ix *Index) Len() int { return len(ix.order) }

// Records 记录总数。
func (ix *Index) Records() int { return ix.total }

package suggest

import (
	"xiangqi/internal/book"
	"xiangqi/internal/xiangqi"
)

type Difference struct {
	Index int // 槽位 0..89
	Col   int
	Row   int
	A     string
	B     string
}

type Comparison struct {
	Identical   bool
	Differences []Difference
}

// Compare 按两字符槽位比较两个编码。
func (e *Engine) Compare(a, b string) (Comparison, error) {
	if err := e.ready(); err != nil {
		return Comparison{}, err
	}
	if err := xiangqi.ValidateEncoding(a); err != nil {
		return Comparison{}, err
	}
	if err := xiangqi.ValidateEncoding(b); err != nil {
		return Comparison{}, err
	}
	cmp := Comparison{Identical: a == b}
	for i := 0; i < xiangqi.EncodedLen; i += 2 {
		if a[i:i+2] == b[i:i+2] {
			continue
		}
		slot := i / 2
		cmp.Differences = append(cmp.Differences, Difference{
			Index: slot,
			Col:   slot / xiangqi.Rows,
			Row:   slot % xiangqi.Rows,
			A:     a[i : i+2],
			B:     b[i : i+2],
		})
	}
	return cmp, nil
}

const analysisTop = 3

type Analysis struct {
	Board      string
	Found      bool
	RedCount   int
	BlackCount int
	Total      int
	TopRed     []book.Record
	TopBlack   []book.Record
}

// Analyze 只读查询索引，不做合法性校验。
func (e *Engine) Analyze(board string) (Analysis, error) {
	if err := e.ready(); err != nil {
		return Analysis{}, err
	}
	if err := xiangqi.ValidateEncoding(board); err != nil {
		return Analysis{}, err
	}
	an := Analysis{Board: board}
	group, ok := e.ix.Lookup(board)
	if !ok {
		return an, nil
	}
	red := e.ix.Moves(board, xiangqi.Red)
	black := e.ix.Moves(board, xiangqi.Black)
	an.Found = true
	an.RedCount = len(red)
	an.BlackCount = len(black)
	an.Total = len(group)
	an.TopRed = red[:min(analysisTop, len(red))]
	an.TopBlack = black[:min(analysisTop, len(black))]
	return an, nil
}

type Info struct {
	Available bool
	Records   int
	Boards    int
	TopK      int
}

// Info 不会失败：索引不可用时 Available 为 false。
func (e *Engine) Info() Info {
	info := Info{Available: e.Available()}
	if e != nil {
		info.TopK = e.topK
	}
	if info.Available {
		info.Records = e.ix.Records()
		info.Boards = e.ix.Len()
	}
	return info
}

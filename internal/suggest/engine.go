// Package suggest 基于历史频率表给出走法建议，并能直接执行建议的最佳走法。
package suggest

import (
	"fmt"

	"xiangqi/internal/book"
	"xiangqi/internal/xiangqi"
)

const DefaultTopK = 3

type Mode string

const (
	ModeExact     Mode = "exact"     // 历史数据精确命中
	ModeSimilar   Mode = "similar"   // 借用最相似局面的走法
	ModeGenerated Mode = "generated" // 按规则枚举
	ModeNone      Mode = "none"
)

type Suggestion struct {
	Move        xiangqi.Move
	Frequency   int64 // 枚举出的走法为 0
	Piece       string
	From        string
	To          string
	Description string
}

type Result struct {
	Mode        Mode
	Side        xiangqi.Side
	Board       string
	Suggestions []Suggestion
	// 只在 ModeSimilar 下有意义
	Similarity   float64
	MatchedBoard string
	// 该方在所用数据源里可选的走法数
	Available int
}

type Option func(*Engine)

// WithTopK 修改 topK<=0 时使用的默认值。
func WithTopK(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.topK = k
		}
	}
}

// Engine 持有只读索引，可被并发调用。
type Engine struct {
	ix   *book.Index
	topK int
}

// New 构造引擎；ix 为 nil 表示索引不可用，所有入口都返回 ErrIndexUnavailable。
func New(ix *book.Index, opts ...Option) *Engine {
	e := &Engine{ix: ix, topK: DefaultTopK}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Available() bool { return e != nil && e.ix != nil }

func (e *Engine) ready() error {
	if !e.Available() {
		return &xiangqi.Error{Kind: xiangqi.KindIndexUnavailable, Reason: "frequency index was not loaded"}
	}
	return nil
}

func checkSide(side xiangqi.Side) error {
	if side != xiangqi.Red && side != xiangqi.Black {
		return &xiangqi.Error{Kind: xiangqi.KindMalformedEncoding, Reason: fmt.Sprintf("side must be red or black, got %s", side)}
	}
	return nil
}

// Suggest 依次尝试精确命中、相似局面、规则枚举，第一个产出有效走法的策略胜出。
// 三者都为空时返回 ModeNone，不算错误。
func (e *Engine) Suggest(board string, side xiangqi.Side, topK int) (Result, error) {
	if err := e.ready(); err != nil {
		return Result{}, err
	}
	if err := checkSide(side); err != nil {
		return Result{}, err
	}
	pos, err := xiangqi.Decode(board)
	if err != nil {
		return Result{}, err
	}
	if topK <= 0 {
		topK = e.topK
	}
	return e.suggest(pos, board, side, topK), nil
}

func (e *Engine) suggest(pos *xiangqi.Position, board string, side xiangqi.Side, topK int) Result {
	res := Result{Side: side, Board: board}

	// 1. 精确命中
	if recs := e.ix.Moves(board, side); len(recs) > 0 {
		if out := admit(pos, side, recs, topK); len(out) > 0 {
			res.Mode = ModeExact
			res.Suggestions = out
			res.Available = len(recs)
			return res
		}
	}

	// 2. 最相似局面
	if matched, score, recs := e.mostSimilar(board, side); recs != nil {
		if out := admit(pos, side, recs, topK); len(out) > 0 {
			res.Mode = ModeSimilar
			res.Suggestions = out
			res.Similarity = score
			res.MatchedBoard = matched
			res.Available = len(recs)
			return res
		}
	}

	// 3. 规则枚举
	legal := pos.LegalMoves(side)
	if len(legal) > 0 {
		n := min(topK, len(legal))
		res.Mode = ModeGenerated
		res.Suggestions = make([]Suggestion, 0, n)
		for _, m := range legal[:n] {
			res.Suggestions = append(res.Suggestions, annotate(pos, m, 0))
		}
		res.Available = len(legal)
		return res
	}

	res.Mode = ModeNone
	return res
}

// mostSimilar 扫描除 board 本身外、含 side 方记录的局面，返回得分最高的一个（同分取先出现的）。
func (e *Engine) mostSimilar(board string, side xiangqi.Side) (string, float64, []book.Record) {
	var (
		best      string
		bestScore = -1.0
		bestRecs  []book.Record
	)
	for candidate := range e.ix.All() {
		if candidate == board {
			continue
		}
		recs := e.ix.Moves(candidate, side)
		if len(recs) == 0 {
			continue
		}
		if score := Similarity(board, candidate); score > bestScore {
			best, bestScore, bestRecs = candidate, score, recs
		}
	}
	return best, bestScore, bestRecs
}

// Similarity 逐字符比较两个编码，返回相同字符的比例。
func Similarity(a, b string) float64 {
	same := 0
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] == b[i] {
			same++
		}
	}
	return float64(same) / float64(xiangqi.EncodedLen)
}

// admit 取前 topK 条记录，只保留在当前局面仍然合法的走法。
func admit(pos *xiangqi.Position, side xiangqi.Side, recs []book.Record, topK int) []Suggestion {
	if len(recs) > topK {
		recs = recs[:topK]
	}
	var out []Suggestion
	for _, rec := range recs {
		if pos.CheckSideMove(side, rec.Move).Legal {
			out = append(out, annotate(pos, rec.Move, rec.Frequency))
		}
	}
	return out
}

func annotate(pos *xiangqi.Position, m xiangqi.Move, freq int64) Suggestion {
	s := Suggestion{
		Move:      m,
		Frequency: freq,
		From:      m.From.String(),
		To:        m.To.String(),
	}
	if pc := pos.PieceAt(m.From); pc != nil {
		s.Piece = pc.Name()
	}
	s.Description = fmt.Sprintf("%s从%s移动到%s", s.Piece, s.From, s.To)
	return s
}

package suggest

import (
	"fmt"

	"xiangqi/internal/xiangqi"
)

// Execution 是执行一步建议走法的结果。
type Execution struct {
	Before      string
	Board       string
	Side        xiangqi.Side
	Move        xiangqi.Move
	Mode        Mode
	Frequency   int64
	Piece       string
	Captured    string // 被吃棋子的显示名，没有吃子为空
	Description string
	GameOver    bool
	Winner      xiangqi.Side
}

// Execute 取 topK=1 的建议并落子，返回新局面和终局状态。
func (e *Engine) Execute(board string, side xiangqi.Side) (Execution, error) {
	if err := e.ready(); err != nil {
		return Execution{}, err
	}
	if err := checkSide(side); err != nil {
		return Execution{}, err
	}
	pos, err := xiangqi.Decode(board)
	if err != nil {
		return Execution{}, err
	}
	res := e.suggest(pos, board, side, 1)
	if len(res.Suggestions) == 0 {
		return Execution{}, &xiangqi.Error{
			Kind:   xiangqi.KindNoSuggestionAvailable,
			Reason: fmt.Sprintf("no move found for %s", side),
		}
	}
	best := res.Suggestions[0]
	captured, err := pos.ApplyMove(best.Move)
	if err != nil {
		return Execution{}, err
	}
	status := pos.CheckGameOver()
	ex := Execution{
		Before:      board,
		Board:       pos.Encode(),
		Side:        side,
		Move:        best.Move,
		Mode:        res.Mode,
		Frequency:   best.Frequency,
		Piece:       best.Piece,
		Description: best.Description,
		GameOver:    status.Over,
		Winner:      status.Winner,
	}
	if captured != nil {
		ex.Captured = captured.Name()
	}
	return ex, nil
}

package xiangqi

import "fmt"

// Position = 棋子列表 + 由列表派生的占位表。
// grid 只是缓存，任何时候都可以由 Pieces 重新算出来。
type Position struct {
	Pieces []Piece
	grid   [Rows][Cols]int16 // Pieces 下标 +1，0 表示空
}

// NewPosition 用给定棋子构造局面；两个棋子占同一格或坐标越界时报错。
func NewPosition(pieces ...Piece) (*Position, error) {
	seen := make(map[Square]bool, len(pieces))
	for _, pc := range pieces {
		sq, on := pc.Loc.Square()
		if !on {
			continue
		}
		if !sq.OnBoard() {
			return nil, newError(KindCoordinateOutOfRange, "%s %s is off the board", pc.Name(), sq)
		}
		if seen[sq] {
			return nil, newError(KindMalformedEncoding, "two pieces on %s", sq)
		}
		seen[sq] = true
	}
	pos := &Position{Pieces: append([]Piece(nil), pieces...)}
	pos.rebuild()
	return pos, nil
}

// rebuild 从棋子列表重建占位表。两个棋子同格是内部错误，直接 panic。
func (p *Position) rebuild() {
	p.grid = [Rows][Cols]int16{}
	for i, pc := range p.Pieces {
		sq, on := pc.Loc.Square()
		if !on {
			continue
		}
		if p.grid[sq.Row][sq.Col] != 0 {
			panic(fmt.Sprintf("xiangqi: two pieces claim %s", sq))
		}
		p.grid[sq.Row][sq.Col] = int16(i + 1)
	}
}

func (p *Position) indexAt(sq Square) int {
	if !sq.OnBoard() {
		return -1
	}
	return int(p.grid[sq.Row][sq.Col]) - 1
}

// PieceAt 返回 sq 上的棋子；空格或越界返回 nil。
func (p *Position) PieceAt(sq Square) *Piece {
	i := p.indexAt(sq)
	if i < 0 {
		return nil
	}
	return &p.Pieces[i]
}

func (p *Position) occupied(col, row int) bool {
	return p.grid[row][col] != 0
}

// Clone 深拷贝，互不影响。
func (p *Position) Clone() *Position {
	np := &Position{Pieces: append([]Piece(nil), p.Pieces...)}
	np.grid = p.grid
	return np
}

// Active 返回 side 方仍在盘上的棋子（按列表顺序）。
func (p *Position) Active(side Side) []Piece {
	var out []Piece
	for _, pc := range p.Pieces {
		if pc.Side == side && !pc.Loc.Captured() {
			out = append(out, pc)
		}
	}
	return out
}

// OnBoardCount 盘上棋子数
func (p *Position) OnBoardCount() int {
	n := 0
	for _, pc := range p.Pieces {
		if !pc.Loc.Captured() {
			n++
		}
	}
	return n
}

func (p *Position) KingExists(side Side) bool {
	for _, pc := range p.Pieces {
		if pc.Kind == KindKing && pc.Side == side && !pc.Loc.Captured() {
			return true
		}
	}
	return false
}

// ApplyMove 执行走子：目标格若有子则标记为被吃，走子方移动，重建占位表。
// 这里不做规则检查（由 CheckMove 负责），只拒绝坐标越界和起点无子。
func (p *Position) ApplyMove(m Move) (captured *Piece, err error) {
	if !m.From.OnBoard() || !m.To.OnBoard() {
		return nil, newError(KindCoordinateOutOfRange, "move %s leaves the board", m)
	}
	from := p.indexAt(m.From)
	if from < 0 {
		return nil, newError(KindIllegalMove, "%s", ReasonNoPiece)
	}
	if m.From == m.To {
		return nil, newError(KindIllegalMove, "%s", ReasonNoOp)
	}
	if to := p.indexAt(m.To); to >= 0 {
		p.Pieces[to].Loc = Captured
		captured = &p.Pieces[to]
	}
	p.Pieces[from].Loc = On(m.To)
	p.rebuild()
	return captured, nil
}

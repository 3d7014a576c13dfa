package xiangqi

import "fmt"

const (
	ReasonLegal         = "legal move"
	ReasonNoPiece       = "no piece at origin"
	ReasonOutOfBounds   = "destination out of bounds"
	ReasonNoOp          = "no-op move"
	ReasonOwnPiece      = "cannot capture own piece"
	ReasonGeneralsFace  = "generals may not face each other unobstructed"
	ReasonWrongSide     = "piece at origin belongs to the other side"
	reasonShapeTemplate = "%s %s cannot move from %s to %s"
)

// Verdict 走法校验结果：不合法时 Reason 说明具体原因。
type Verdict struct {
	Legal  bool   `json:"legal"`
	Reason string `json:"reason"`
}

func legal() Verdict               { return Verdict{Legal: true, Reason: ReasonLegal} }
func reject(reason string) Verdict { return Verdict{Reason: reason} }

// Err 把拒绝结果转成 IllegalMove 错误；合法时返回 nil。
func (v Verdict) Err() error {
	if v.Legal {
		return nil
	}
	return &Error{Kind: KindIllegalMove, Reason: v.Reason}
}

// CheckMove 按顺序校验：起点有子、终点在盘内、非原地、不吃己方、棋子走法、王不见王。
// 不修改局面，多次调用之间没有共享状态。
func (p *Position) CheckMove(from, to Square) Verdict {
	mover := p.PieceAt(from)
	if mover == nil {
		return reject(ReasonNoPiece)
	}
	if !to.OnBoard() {
		return reject(ReasonOutOfBounds)
	}
	if from == to {
		return reject(ReasonNoOp)
	}
	target := p.PieceAt(to)
	if target != nil && target.Side == mover.Side {
		return reject(ReasonOwnPiece)
	}

	var ok bool
	switch mover.Kind {
	case KindChariot:
		ok = p.validChariot(from, to)
	case KindHorse:
		ok = p.validHorse(from, to)
	case KindElephant:
		ok = p.validElephant(mover.Side, from, to)
	case KindAdvisor:
		ok = validAdvisor(mover.Side, from, to)
	case KindKing:
		ok = validKing(mover.Side, from, to)
	case KindPawn:
		ok = validPawn(mover.Side, from, to)
	case KindCannon:
		ok = p.validCannon(from, to, target != nil)
	default:
		return reject(fmt.Sprintf("%s has no movement rule", mover.Name()))
	}
	if !ok {
		return reject(fmt.Sprintf(reasonShapeTemplate, mover.Kind, mover.Name(), from, to))
	}

	if p.generalsFaceAfter(from, to) {
		return reject(ReasonGeneralsFace)
	}
	return legal()
}

// CheckSideMove 在 CheckMove 之外还要求起点棋子属于 side。
func (p *Position) CheckSideMove(side Side, m Move) Verdict {
	if pc := p.PieceAt(m.From); pc != nil && pc.Side != side {
		return reject(ReasonWrongSide)
	}
	return p.CheckMove(m.From, m.To)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// 直线上 from 与 to 之间（不含两端）的棋子数；不在一条直线上返回 -1
func (p *Position) countBetween(from, to Square) int {
	if from.Col != to.Col && from.Row != to.Row {
		return -1
	}
	dc, dr := sign(to.Col-from.Col), sign(to.Row-from.Row)
	n := 0
	for c, r := from.Col+dc, from.Row+dr; c != to.Col || r != to.Row; c, r = c+dc, r+dr {
		if p.occupied(c, r) {
			n++
		}
	}
	return n
}

// 车：横竖直走，中间不能有子
func (p *Position) validChariot(from, to Square) bool {
	return p.countBetween(from, to) == 0
}

// 炮：不吃子时同车；吃子时中间恰好一个炮架
func (p *Position) validCannon(from, to Square, capture bool) bool {
	n := p.countBetween(from, to)
	if n < 0 {
		return false
	}
	if capture {
		return n == 1
	}
	return n == 0
}

// 马：日字，长边方向紧邻的一格（马腿）必须为空
func (p *Position) validHorse(from, to Square) bool {
	dc, dr := to.Col-from.Col, to.Row-from.Row
	switch {
	case absInt(dc) == 2 && absInt(dr) == 1:
		return !p.occupied(from.Col+sign(dc), from.Row) // 憋马腿
	case absInt(dc) == 1 && absInt(dr) == 2:
		return !p.occupied(from.Col, from.Row+sign(dr))
	}
	return false
}

// 相：田字，不过河，象眼不能有子
func (p *Position) validElephant(side Side, from, to Square) bool {
	dc, dr := to.Col-from.Col, to.Row-from.Row
	if absInt(dc) != 2 || absInt(dr) != 2 {
		return false
	}
	if !ownHalf(side, to.Row) {
		return false
	}
	return !p.occupied(from.Col+sign(dc), from.Row+sign(dr))
}

// 士：九宫内斜走一格
func validAdvisor(side Side, from, to Square) bool {
	if absInt(to.Col-from.Col) != 1 || absInt(to.Row-from.Row) != 1 {
		return false
	}
	return inPalace(side, to.Col, to.Row)
}

// 将：九宫内上下左右一格
func validKing(side Side, from, to Square) bool {
	if absInt(to.Col-from.Col)+absInt(to.Row-from.Row) != 1 {
		return false
	}
	return inPalace(side, to.Col, to.Row)
}

// 兵：一次一格，永不后退；未过河只能向前，过河后可左右
func validPawn(side Side, from, to Square) bool {
	dc, dr := to.Col-from.Col, to.Row-from.Row
	if absInt(dc)+absInt(dr) != 1 {
		return false
	}
	if dr != 0 {
		return dr == pawnDir(side)
	}
	return pawnCrossedRiver(side, from.Row)
}

package xiangqi

// LegalMoves 枚举 side 方所有合法走法：按棋子列表顺序，每个子尝试全盘每一格（列优先）。
func (p *Position) LegalMoves(side Side) []Move {
	var moves []Move
	for _, pc := range p.Active(side) {
		from, _ := pc.Loc.Square()
		for c := 0; c < Cols; c++ {
			for r := 0; r < Rows; r++ {
				to := Sq(c, r)
				if to == from {
					continue
				}
				if p.CheckMove(from, to).Legal {
					moves = append(moves, Move{From: from, To: to})
				}
			}
		}
	}
	return moves
}

// HasLegalMove 比 LegalMoves 省事：找到一步就返回。
func (p *Position) HasLegalMove(side Side) bool {
	for _, pc := range p.Active(side) {
		from, _ := pc.Loc.Square()
		for c := 0; c < Cols; c++ {
			for r := 0; r < Rows; r++ {
				if p.CheckMove(from, Sq(c, r)).Legal {
					return true
				}
			}
		}
	}
	return false
}

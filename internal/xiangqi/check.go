package xiangqi

// generalsFaceAfter 在占位表副本上模拟 from->to，判断走完后两王是否同列且中间无子。
// 任一方的王被这步吃掉时不检查。
func (p *Position) generalsFaceAfter(from, to Square) bool {
	grid := p.grid
	mover := p.indexAt(from)
	grid[to.Row][to.Col] = grid[from.Row][from.Col]
	grid[from.Row][from.Col] = 0

	kings := [2]Square{}
	found := [2]bool{}
	for i, pc := range p.Pieces {
		if pc.Kind != KindKing || (pc.Side != Red && pc.Side != Black) {
			continue
		}
		sq, on := pc.Loc.Square()
		if !on {
			continue
		}
		if i == mover {
			sq = to
		} else if sq == to {
			continue // 被吃
		}
		if !found[pc.Side] {
			kings[pc.Side] = sq
			found[pc.Side] = true
		}
	}
	if !found[Red] || !found[Black] {
		return false
	}

	rk, bk := kings[Red], kings[Black]
	if rk.Col != bk.Col {
		return false
	}
	lo, hi := rk.Row, bk.Row
	if lo > hi {
		lo, hi = hi, lo
	}
	for r := lo + 1; r < hi; r++ {
		if grid[r][rk.Col] != 0 {
			return false // 中间有子
		}
	}
	return true
}

// GameStatus 终局判断结果。
type GameStatus struct {
	Over   bool `json:"game_over"`
	Winner Side `json:"-"`
}

// CheckGameOver 某方的王不在盘上即终局，另一方获胜。
func (p *Position) CheckGameOver() GameStatus {
	if !p.KingExists(Red) {
		return GameStatus{Over: true, Winner: Black}
	}
	if !p.KingExists(Black) {
		return GameStatus{Over: true, Winner: Red}
	}
	return GameStatus{Winner: NoSide}
}

// InCheck 判断 side 的王是否可被对方某个子一步吃到。
func (p *Position) InCheck(side Side) bool {
	var king Square
	found := false
	for _, pc := range p.Pieces {
		if pc.Kind == KindKing && pc.Side == side {
			if sq, on := pc.Loc.Square(); on {
				king, found = sq, true
				break
			}
		}
	}
	if !found {
		return false
	}
	for _, pc := range p.Active(side.Opponent()) {
		sq, _ := pc.Loc.Square()
		if p.CheckMove(sq, king).Legal {
			return true
		}
	}
	return false
}

package xiangqi

import (
	"strings"
	"unicode"
)

const (
	Cols       = 9
	Rows       = 10
	NumSquares = Rows * Cols

	// 河界：0..4 为黑方半场，5..9 为红方半场
	RiverRow = 5
)

func onBoard(col, row int) bool {
	return col >= 0 && col < Cols && row >= 0 && row < Rows
}

// 兵的前进方向：红向上(-1)，黑向下(+1)
func pawnDir(side Side) int {
	if side == Red {
		return -1
	}
	if side == Black {
		return +1
	}
	return 0
}

// 是否已经过河
func pawnCrossedRiver(side Side, row int) bool {
	if side == Red {
		return row < RiverRow
	}
	if side == Black {
		return row >= RiverRow
	}
	return false
}

// 是否在己方半场（相/象不能过河）
func ownHalf(side Side, row int) bool {
	if side == Red {
		return row >= RiverRow
	}
	if side == Black {
		return row < RiverRow
	}
	return false
}

// 是否在九宫
func inPalace(side Side, col, row int) bool {
	if col < 3 || col > 5 {
		return false
	}
	if side == Black {
		return row >= 0 && row <= 2
	}
	if side == Red {
		return row >= 7 && row <= 9
	}
	return false
}

var letterToKind = map[rune]PieceKind{
	'r': KindChariot,  // 车
	'h': KindHorse,    // 马
	'e': KindElephant, // 相 / 象
	'a': KindAdvisor,  // 仕 / 士
	'k': KindKing,     // 帅 / 将
	'c': KindCannon,   // 炮
	'p': KindPawn,     // 兵 / 卒
}

// 开局摆法；大写红方，小写黑方。行 0 在最上面。
const initialBoardString = `rheakaehr
.........
.c.....c.
p.p.p.p.p
.........
.........
P.P.P.P.P
.C.....C.
.........
RHEAKAEHR`

type homeSlot struct {
	kind PieceKind
	side Side
}

var (
	initialPieces []Piece
	// 开局每个格子的原始棋子，解码时据此推断身份
	homeTemplate = map[Square]homeSlot{}
)

func init() {
	initialPieces = parseInitialBoard()
	for _, pc := range initialPieces {
		sq, _ := pc.Loc.Square()
		homeTemplate[sq] = homeSlot{kind: pc.Kind, side: pc.Side}
	}
}

// 黑方在前、红方在后，顺序与存档工具的棋子列表一致
func parseInitialBoard() []Piece {
	lines := make([]string, 0, Rows)
	for _, line := range strings.Split(initialBoardString, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) != Rows {
		panic("initialBoardString 行数不为 10")
	}
	var pieces []Piece
	for r := 0; r < Rows; r++ {
		if len(lines[r]) != Cols {
			panic("initialBoardString 列数不为 9")
		}
		for c, ch := range lines[r] {
			if ch == '.' {
				continue
			}
			kind, ok := letterToKind[unicode.ToLower(ch)]
			if !ok {
				panic("unknown piece letter: " + string(ch))
			}
			side := Black
			if unicode.IsUpper(ch) {
				side = Red
			}
			pieces = append(pieces, Piece{Kind: kind, Side: side, Loc: On(Sq(c, r))})
		}
	}
	return pieces
}

// NewInitialPosition 返回标准开局局面。
func NewInitialPosition() *Position {
	pieces := make([]Piece, len(initialPieces))
	copy(pieces, initialPieces)
	pos := &Position{Pieces: pieces}
	pos.rebuild()
	return pos
}

// inferPiece 根据开局模板推断 sq 上棋子的身份。
// 只在棋子仍位于（或回到）同类开局格时准确；其余格子按半场定方，身份记为未知。
func inferPiece(sq Square) Piece {
	if slot, ok := homeTemplate[sq]; ok {
		return Piece{Kind: slot.kind, Side: slot.side, Loc: On(sq)}
	}
	side := Red
	if sq.Row < RiverRow {
		side = Black
	}
	return Piece{Kind: KindUnknown, Side: side, Loc: On(sq)}
}

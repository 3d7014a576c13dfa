package xiangqi

import (
	"fmt"
	"strings"
)

type Side int8

const (
	NoSide Side = -1
	Red    Side = 0 // 先手，下方
	Black  Side = 1 // 后手，上方
)

func (s Side) String() string {
	switch s {
	case Red:
		return "red"
	case Black:
		return "black"
	default:
		return "none"
	}
}

// Opponent 返回对方；NoSide 的对方仍是 NoSide。
func (s Side) Opponent() Side {
	switch s {
	case Red:
		return Black
	case Black:
		return Red
	default:
		return NoSide
	}
}

// ParseSide 接受 "red"/"black"，以及常见的简写和“红”“黑”。
func ParseSide(s string) (Side, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red", "r", "w", "红":
		return Red, true
	case "black", "b", "黑":
		return Black, true
	default:
		return NoSide, false
	}
}

type PieceKind int8

const (
	KindUnknown  PieceKind = iota // 解码时无法推断
	KindChariot                   // 车
	KindHorse                     // 马
	KindElephant                  // 相 / 象
	KindAdvisor                   // 仕 / 士
	KindKing                      // 帅 / 将
	KindPawn                      // 兵 / 卒
	KindCannon                    // 炮
)

func (k PieceKind) String() string {
	switch k {
	case KindChariot:
		return "chariot"
	case KindHorse:
		return "horse"
	case KindElephant:
		return "elephant"
	case KindAdvisor:
		return "advisor"
	case KindKing:
		return "king"
	case KindPawn:
		return "pawn"
	case KindCannon:
		return "cannon"
	default:
		return "unknown"
	}
}

// 红黑同类棋子显示名不同
var pieceNames = map[PieceKind][2]string{
	KindChariot:  {"车", "车"},
	KindHorse:    {"马", "马"},
	KindElephant: {"相", "象"},
	KindAdvisor:  {"仕", "士"},
	KindKing:     {"帅", "将"},
	KindPawn:     {"兵", "卒"},
	KindCannon:   {"炮", "炮"},
}

// Name 返回棋子在该方的显示名。
func (k PieceKind) Name(side Side) string {
	names, ok := pieceNames[k]
	if !ok {
		return "未知"
	}
	if side == Black {
		return names[1]
	}
	return names[0]
}

// Square 棋盘格：列 0..8，行 0..9（行 0 为黑方底线）。
type Square struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

func Sq(col, row int) Square { return Square{Col: col, Row: row} }

func (s Square) OnBoard() bool {
	return s.Col >= 0 && s.Col < Cols && s.Row >= 0 && s.Row < Rows
}

func (s Square) String() string {
	return fmt.Sprintf("(%d,%d)", s.Col, s.Row)
}

// Location 是棋子的位置状态：在盘上 (On) 或已被吃 (Captured)。
// 零值即 Captured。
type Location struct {
	sq Square
	on bool
}

var Captured = Location{}

func On(sq Square) Location { return Location{sq: sq, on: true} }

// Square 返回所在格；被吃的棋子返回 false。
func (l Location) Square() (Square, bool) {
	return l.sq, l.on
}

func (l Location) Captured() bool { return !l.on }

type Piece struct {
	Kind PieceKind
	Side Side
	Loc  Location
}

func (p Piece) Name() string { return p.Kind.Name(p.Side) }

type Move struct {
	From Square `json:"from"`
	To   Square `json:"to"`
}

package xiangqi

import "strings"

const (
	// EncodedLen 90 格 × 2 位数字
	EncodedLen = NumSquares * 2

	emptySlot = "99"
)

// slotOf 编码按列优先：slot = col*10 + row
func slotOf(sq Square) int { return sq.Col*Rows + sq.Row }

func squareOfSlot(slot int) Square { return Sq(slot/Rows, slot%Rows) }

// Encode 把局面编码成 180 位数字串：每格两位，有子写该子自身的“列行”，空格写 99。
func (p *Position) Encode() string {
	var slots [NumSquares]string
	for i := range slots {
		slots[i] = emptySlot
	}
	for _, pc := range p.Pieces {
		sq, on := pc.Loc.Square()
		if !on {
			continue
		}
		slots[slotOf(sq)] = string([]byte{byte('0' + sq.Col), byte('0' + sq.Row)})
	}
	var sb strings.Builder
	sb.Grow(EncodedLen)
	for _, s := range slots {
		sb.WriteString(s)
	}
	return sb.String()
}

// ValidateEncoding 只检查长度和字符集。
func ValidateEncoding(s string) error {
	if len(s) != EncodedLen {
		return newError(KindMalformedEncoding, "encoded position must be %d digits, got %d characters", EncodedLen, len(s))
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return newError(KindMalformedEncoding, "non-digit %q at offset %d", s[i], i)
		}
	}
	return nil
}

// Decode 解码 180 位数字串。
//
// 编码不带棋子身份，只能按开局模板推断（见 inferPiece），
// 所以对走动过的棋子是尽力而为：没有对应开局格的棋子身份为未知。
func Decode(s string) (*Position, error) {
	if err := ValidateEncoding(s); err != nil {
		return nil, err
	}
	pieces := make([]Piece, 0, 32)
	seen := make(map[Square]int, 32)
	for slot := 0; slot < NumSquares; slot++ {
		v := s[slot*2 : slot*2+2]
		if v == emptySlot {
			continue
		}
		sq := Sq(int(v[0]-'0'), int(v[1]-'0'))
		if !sq.OnBoard() {
			return nil, newError(KindMalformedEncoding, "slot %d holds off-board coordinate %s", slot, v)
		}
		if prev, dup := seen[sq]; dup {
			return nil, newError(KindMalformedEncoding, "slots %d and %d both claim %s", prev, slot, sq)
		}
		seen[sq] = slot
		pieces = append(pieces, inferPiece(sq))
	}
	pos := &Position{Pieces: pieces}
	pos.rebuild()
	return pos, nil
}

func (m Move) String() string {
	return string([]byte{
		byte('0' + m.From.Col), byte('0' + m.From.Row),
		byte('0' + m.To.Col), byte('0' + m.To.Row),
	})
}

// ParseMove 解析 4 位数字走法 "起列起行终列终行"。
func ParseMove(s string) (Move, error) {
	if len(s) != 4 {
		return Move{}, newError(KindMalformedEncoding, "move must be 4 digits, got %q", s)
	}
	var d [4]int
	for i := 0; i < 4; i++ {
		if s[i] < '0' || s[i] > '9' {
			return Move{}, newError(KindMalformedEncoding, "move must be 4 digits, got %q", s)
		}
		d[i] = int(s[i] - '0')
	}
	m := Move{From: Sq(d[0], d[1]), To: Sq(d[2], d[3])}
	if !m.From.OnBoard() || !m.To.OnBoard() {
		return Move{}, newError(KindCoordinateOutOfRange, "move %q: column must be 0-8 and row 0-9", s)
	}
	return m, nil
}

package xiangqi

import (
	"errors"
	"strings"
	"testing"
)

func TestEncodeInitialPosition(t *testing.T) {
	enc := NewInitialPosition().Encode()
	if len(enc) != EncodedLen {
		t.Fatalf("encoded length: got=%d want=%d", len(enc), EncodedLen)
	}
	// 第 0 列：车(0,0) 卒(0,3) 兵(0,6) 车(0,9)
	if got, want := enc[:20], "00999903999906999909"; got != want {
		t.Fatalf("column 0 slots: got=%s want=%s", got, want)
	}
	// 第 4 列帅将
	col4 := enc[4*20 : 5*20]
	if col4[:2] != "40" || col4[18:] != "49" {
		t.Fatalf("column 4 slots: %s", col4)
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	pos := NewInitialPosition()
	for _, mv := range []string{"1714", "1022", "1410", "7062"} {
		m, err := ParseMove(mv)
		if err != nil {
			t.Fatalf("parse %s: %v", mv, err)
		}
		if _, err := pos.ApplyMove(m); err != nil {
			t.Fatalf("apply %s: %v", mv, err)
		}
		enc := pos.Encode()
		decoded, err := Decode(enc)
		if err != nil {
			t.Fatalf("decode after %s: %v", mv, err)
		}
		if got := decoded.Encode(); got != enc {
			t.Fatalf("round trip after %s:\n got=%s\nwant=%s", mv, got, enc)
		}
		if decoded.OnBoardCount() != pos.OnBoardCount() {
			t.Fatalf("piece count after %s: got=%d want=%d", mv, decoded.OnBoardCount(), pos.OnBoardCount())
		}
	}
}

func TestDecodeInfersInitialIdentities(t *testing.T) {
	want := NewInitialPosition()
	got, err := Decode(want.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, pc := range want.Pieces {
		sq, _ := pc.Loc.Square()
		dp := got.PieceAt(sq)
		if dp == nil {
			t.Fatalf("missing piece at %s", sq)
		}
		if dp.Kind != pc.Kind || dp.Side != pc.Side {
			t.Fatalf("piece at %s: got=%s/%s want=%s/%s", sq, dp.Kind, dp.Side, pc.Kind, pc.Side)
		}
	}
}

func TestDecodeUnknownIdentityBySide(t *testing.T) {
	pos := NewInitialPosition()
	// 红炮平中：(1,7) -> (4,7)，(4,7) 不是任何开局格
	if _, err := pos.ApplyMove(Move{From: Sq(1, 7), To: Sq(4, 7)}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	// 黑炮进到 (1,4)，仍在黑方半场
	if _, err := pos.ApplyMove(Move{From: Sq(1, 2), To: Sq(1, 4)}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	decoded, err := Decode(pos.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	red := decoded.PieceAt(Sq(4, 7))
	if red == nil || red.Kind != KindUnknown || red.Side != Red {
		t.Fatalf("(4,7) should be an unknown red piece, got %+v", red)
	}
	black := decoded.PieceAt(Sq(1, 4))
	if black == nil || black.Kind != KindUnknown || black.Side != Black {
		t.Fatalf("(1,4) should be an unknown black piece, got %+v", black)
	}
	if v := decoded.CheckMove(Sq(4, 7), Sq(3, 7)); v.Legal || !strings.Contains(v.Reason, "no movement rule") {
		t.Fatalf("unknown piece should have no movement rule, got %+v", v)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	valid := NewInitialPosition().Encode()
	cases := map[string]string{
		"short":     valid[:178],
		"long":      valid + "99",
		"non-digit": "a" + valid[1:],
		"empty":     "",
		"off-board": "95" + valid[2:],
		"duplicate": valid[:2] + "00" + valid[4:], // slot 0 和 slot 1 都写 (0,0)
	}
	for name, s := range cases {
		_, err := Decode(s)
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if !errors.Is(err, ErrMalformedEncoding) {
			t.Fatalf("%s: expected MalformedEncoding, got %v", name, err)
		}
	}
}

func TestParseMove(t *testing.T) {
	m, err := ParseMove("0905")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.From != Sq(0, 9) || m.To != Sq(0, 5) {
		t.Fatalf("unexpected move %+v", m)
	}
	if m.String() != "0905" {
		t.Fatalf("String: got=%s", m.String())
	}

	if _, err := ParseMove("9905"); !errors.Is(err, ErrCoordinateOutOfRange) {
		t.Fatalf("column 9 should be out of range, got %v", err)
	}
	if _, err := ParseMove("09a5"); !errors.Is(err, ErrMalformedEncoding) {
		t.Fatalf("non-digit should be malformed, got %v", err)
	}
	if _, err := ParseMove("090"); !errors.Is(err, ErrMalformedEncoding) {
		t.Fatalf("short move should be malformed, got %v", err)
	}
}

package main

import (
	"math/rand"
	"path/filepath"
	"testing"

	"xiangqi/internal/book"
	"xiangqi/internal/xiangqi"
)

func TestSelfPlayRowsAreValid(t *testing.T) {
	rows := selfPlay(rand.New(rand.NewSource(1)), 3, 40)
	if len(rows) == 0 {
		t.Fatalf("no rows generated")
	}
	initial := xiangqi.NewInitialPosition().Encode()
	var total int64
	for _, row := range rows {
		rec, ok := row.Record()
		if !ok {
			t.Fatalf("invalid row %+v", row)
		}
		total += rec.Frequency
		if row.Board == initial && rec.Side != xiangqi.Red {
			t.Fatalf("red moves first from the initial board")
		}
	}
	// 每局至少走了开局第一步
	if total < 3 {
		t.Fatalf("total frequency %d", total)
	}
	if rows[0].Board != initial {
		t.Fatalf("first row should come from the initial board")
	}
}

func TestSelfPlayDeterministic(t *testing.T) {
	a := selfPlay(rand.New(rand.NewSource(7)), 2, 20)
	b := selfPlay(rand.New(rand.NewSource(7)), 2, 20)
	if len(a) != len(b) {
		t.Fatalf("same seed gave %d and %d rows", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("row %d differs", i)
		}
	}
}

func TestSelfPlayFeedsLoader(t *testing.T) {
	rows := selfPlay(rand.New(rand.NewSource(3)), 2, 30)
	path := filepath.Join(t.TempDir(), "book.json.zst")
	if err := book.WriteFile(path, rows); err != nil {
		t.Fatalf("write: %v", err)
	}
	back, err := book.ReadRows(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(back) != len(rows) {
		t.Fatalf("rows: got %d want %d", len(back), len(rows))
	}
}

// gen_book 用随机自对弈生成一份频率表数据集，供本地调试和测试使用。
package main

import (
	"flag"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"

	"xiangqi/internal/book"
	"xiangqi/internal/xiangqi"
)

type key struct {
	board string
	side  xiangqi.Side
	move  xiangqi.Move
}

// selfPlay 从开局随机对弈 games 局，统计每个 (局面, 走子方, 走法) 出现的次数。
// 返回的行按首次出现排序。
func selfPlay(rng *rand.Rand, games, maxPlies int) []book.Row {
	counts := make(map[key]int64)
	var order []key

	for g := 0; g < games; g++ {
		pos := xiangqi.NewInitialPosition()
		side := xiangqi.Red
		for ply := 0; ply < maxPlies; ply++ {
			moves := pos.LegalMoves(side)
			if len(moves) == 0 {
				break
			}
			m := moves[rng.Intn(len(moves))]
			k := key{board: pos.Encode(), side: side, move: m}
			if counts[k] == 0 {
				order = append(order, k)
			}
			counts[k]++

			if _, err := pos.ApplyMove(m); err != nil {
				break
			}
			if pos.CheckGameOver().Over {
				break
			}
			side = side.Opponent()
		}
	}

	rows := make([]book.Row, 0, len(order))
	for _, k := range order {
		rows = append(rows, book.RowOf(book.Record{Board: k.board, Side: k.side, Move: k.move, Frequency: counts[k]}))
	}
	return rows
}

func main() {
	games := flag.Int("games", 50, "number of random games")
	plies := flag.Int("plies", 120, "max plies per game")
	out := flag.String("out", "book.json", "output file (.json, .json.zst, .parquet)")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	start := time.Now()
	rows := selfPlay(rand.New(rand.NewSource(*seed)), *games, *plies)
	if err := book.WriteFile(*out, rows); err != nil {
		log.Fatal().Err(err).Str("out", *out).Msg("write dataset")
	}
	log.Info().
		Int("games", *games).
		Int("rows", len(rows)).
		Str("out", *out).
		Dur("took", time.Since(start)).
		Msg("dataset written")
}

package book

import "xiangqi/internal/xiangqi"

// Record 是频率表中的一行：在 Board 局面下 Side 方走 Move 的次数。
type Record struct {
	Board     string
	Side      xiangqi.Side
	Move      xiangqi.Move
	Frequency int64
}

// Row 是数据集文件里的原始行，JSON 和 parquet 共用。
type Row struct {
	Board     string `json:"board" parquet:"name=board, type=BYTE_ARRAY, convertedtype=UTF8"`
	Player    string `json:"player" parquet:"name=player, type=BYTE_ARRAY, convertedtype=UTF8"`
	Move      string `json:"move" parquet:"name=move, type=BYTE_ARRAY, convertedtype=UTF8"`
	Frequency int64  `json:"frequency" parquet:"name=frequency, type=INT64"`
}

func RowOf(rec Record) Row {
	return Row{
		Board:     rec.Board,
		Player:    rec.Side.String(),
		Move:      rec.Move.String(),
		Frequency: rec.Frequency,
	}
}

// Record 校验并转换一行；不合法时返回 false。
func (r Row) Record() (Record, bool) {
	if xiangqi.ValidateEncoding(r.Board) != nil {
		return Record{}, false
	}
	side, ok := xiangqi.ParseSide(r.Player)
	if !ok {
		return Record{}, false
	}
	mv, err := xiangqi.ParseMove(r.Move)
	if err != nil {
		return Record{}, false
	}
	if r.Frequency < 0 {
		return Record{}, false
	}
	return Record{Board: r.Board, Side: side, Move: mv, Frequency: r.Frequency}, true
}

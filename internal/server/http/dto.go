package httpserver

import (
	"xiangqi/internal/book"
	"xiangqi/internal/suggest"
	"xiangqi/internal/xiangqi"
)

// 所有响应都带 status: "success" / "invalid" / "no_match" / "error"
const (
	statusSuccess = "success"
	statusInvalid = "invalid"
	statusNoMatch = "no_match"
	statusError   = "error"
)

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// 前端棋子列表项，x 为列，y 为行
type PieceDTO struct {
	Name string `json:"name"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Type string `json:"type"` // "red" / "black"
}

type BoardResponse struct {
	Status  string     `json:"status"`
	Message string     `json:"message"`
	Board   string     `json:"board"`
	Pieces  []PieceDTO `json:"pieces"`
}

// MoveRequest 用于 /api/move 和 /api/validate
type MoveRequest struct {
	Board string `json:"board"`
	Move  string `json:"move"` // 4 位数字
}

type MoveResponse struct {
	Status       string     `json:"status"`
	Message      string     `json:"message"`
	Board        string     `json:"board"`
	Pieces       []PieceDTO `json:"pieces"`
	Captured     string     `json:"captured,omitempty"`
	GameOver     bool       `json:"game_over"`
	Winner       string     `json:"winner,omitempty"`
	InCheck      bool       `json:"in_check"`       // 走完后对方是否被将军
	NextHasMoves bool       `json:"next_has_moves"` // 对方是否还有合法走法
}

type ValidateResponse struct {
	Status  string `json:"status"`
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

type SuggestRequest struct {
	Board string `json:"board"`
	Side  string `json:"side"`  // 缺省红方
	TopK  int    `json:"top_k"` // <=0 用配置的默认值
}

type SuggestionDTO struct {
	Move         string `json:"move"`
	Frequency    int64  `json:"frequency"`
	Piece        string `json:"piece"`
	FromPosition string `json:"from_position"`
	ToPosition   string `json:"to_position"`
	Description  string `json:"description"`
}

type SuggestResponse struct {
	Status              string          `json:"status"`
	Message             string          `json:"message"`
	Mode                string          `json:"mode"`
	Board               string          `json:"board_state"`
	Player              string          `json:"player"`
	SuggestedMove       string          `json:"suggested_move,omitempty"`
	Suggestions         []SuggestionDTO `json:"suggestions"`
	TotalMovesAvailable int             `json:"total_moves_available"`
	SimilarityScore     float64         `json:"similarity_score,omitempty"`
	MatchedBoard        string          `json:"matched_board,omitempty"`
}

type ExecuteRequest struct {
	Board  string `json:"board"`
	Player string `json:"player"` // 缺省黑方
}

type ExecuteResponse struct {
	Status        string     `json:"status"`
	Message       string     `json:"message"`
	Board         string     `json:"new_board_state"`
	PreviousBoard string     `json:"previous_board_state"`
	Pieces        []PieceDTO `json:"pieces"`
	Player        string     `json:"player"`
	Move          string     `json:"move_executed"`
	Piece         string     `json:"piece"`
	Captured      string     `json:"captured,omitempty"`
	Description   string     `json:"move_description"`
	Mode          string     `json:"mode"`
	Frequency     int64      `json:"frequency"`
	GameOver      bool       `json:"game_over"`
	Winner        string     `json:"winner,omitempty"`
}

type BoardRequest struct {
	Board string `json:"board"`
}

type CompareRequest struct {
	FrontendBoard string `json:"frontend_board"`
	TargetBoard   string `json:"target_board"`
}

type DifferenceDTO struct {
	PositionIndex int    `json:"position_index"`
	Column        int    `json:"column"`
	Row           int    `json:"row"`
	Coordinate    string `json:"coordinate"`
	FrontendPiece string `json:"frontend_piece"`
	TargetPiece   string `json:"target_piece"`
}

type CompareResponse struct {
	Status          string          `json:"status"`
	IsMatch         bool            `json:"is_match"`
	DifferenceCount int             `json:"difference_count"`
	Differences     []DifferenceDTO `json:"differences"`
	FrontendBoard   string          `json:"frontend_board"`
	TargetBoard     string          `json:"target_board"`
}

type RecordDTO struct {
	Move      string `json:"move"`
	Player    string `json:"player"`
	Frequency int64  `json:"frequency"`
}

type AnalysisDTO struct {
	Board           string      `json:"board_state"`
	RedMovesCount   int         `json:"red_moves_count"`
	BlackMovesCount int         `json:"black_moves_count"`
	TotalMovesCount int         `json:"total_moves_count"`
	HasRedOptions   bool        `json:"has_red_options"`
	HasBlackOptions bool        `json:"has_black_options"`
	TopRedMoves     []RecordDTO `json:"top_red_moves"`
	TopBlackMoves   []RecordDTO `json:"top_black_moves"`
}

type AnalyzeResponse struct {
	Status   string      `json:"status"`
	Message  string      `json:"message"`
	Analysis AnalysisDTO `json:"analysis"`
}

type EngineInfoDTO struct {
	Available      bool `json:"available"`
	TotalRecords   int  `json:"total_records"`
	DistinctBoards int  `json:"distinct_boards"`
	DefaultTopK    int  `json:"default_top_k"`
}

type EngineInfoResponse struct {
	Status    string        `json:"status"`
	ModelInfo EngineInfoDTO `json:"model_info"`
}

func piecesToDTO(pos *xiangqi.Position) []PieceDTO {
	out := make([]PieceDTO, 0, len(pos.Pieces))
	for _, pc := range pos.Pieces {
		sq, on := pc.Loc.Square()
		if !on {
			continue
		}
		out = append(out, PieceDTO{Name: pc.Name(), X: sq.Col, Y: sq.Row, Type: pc.Side.String()})
	}
	return out
}

// winnerToString 未终局时返回空串，配合 omitempty
func winnerToString(over bool, s xiangqi.Side) string {
	if !over {
		return ""
	}
	return s.String()
}

func suggestionsToDTO(ss []suggest.Suggestion) []SuggestionDTO {
	out := make([]SuggestionDTO, len(ss))
	for i, s := range ss {
		out[i] = SuggestionDTO{
			Move:         s.Move.String(),
			Frequency:    s.Frequency,
			Piece:        s.Piece,
			FromPosition: s.From,
			ToPosition:   s.To,
			Description:  s.Description,
		}
	}
	return out
}

func recordsToDTO(recs []book.Record) []RecordDTO {
	out := make([]RecordDTO, len(recs))
	for i, r := range recs {
		out[i] = RecordDTO{Move: r.Move.String(), Player: r.Side.String(), Frequency: r.Frequency}
	}
	return out
}

func differencesToDTO(ds []suggest.Difference) []DifferenceDTO {
	out := make([]DifferenceDTO, len(ds))
	for i, d := range ds {
		out[i] = DifferenceDTO{
			PositionIndex: d.Index,
			Column:        d.Col,
			Row:           d.Row,
			Coordinate:    xiangqi.Sq(d.Col, d.Row).String(),
			FrontendPiece: d.A,
			TargetPiece:   d.B,
		}
	}
	return out
}

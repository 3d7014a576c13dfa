package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"xiangqi/internal/suggest"
	"xiangqi/internal/xiangqi"
)

const maxBodyBytes = 1 << 16

// Handler 实现 http.Handler，用于 /api/* 路由。
// 每个请求各自解码局面，不在请求之间保存对局。
type Handler struct {
	eng *suggest.Engine
	log zerolog.Logger
}

func NewHandler(eng *suggest.Engine, log zerolog.Logger) *Handler {
	return &Handler{eng: eng, log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/init":
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.handleInit(w, r)

	case "/api/move":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.handleMove(w, r)

	case "/api/validate":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.handleValidate(w, r)

	case "/api/ai/suggest":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.handleSuggest(w, r)

	case "/api/ai/execute_move":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.handleExecute(w, r, false)

	case "/api/ai/black_auto_move":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.handleExecute(w, r, true)

	case "/api/ai/compare_boards":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.handleCompare(w, r)

	case "/api/ai/analyze_board":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.handleAnalyze(w, r)

	case "/api/ai/engine_info":
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.handleEngineInfo(w, r)

	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleInit(w http.ResponseWriter, r *http.Request) {
	pos := xiangqi.NewInitialPosition()
	h.writeJSON(w, r, http.StatusOK, BoardResponse{
		Status:  statusSuccess,
		Message: "board initialised",
		Board:   pos.Encode(),
		Pieces:  piecesToDTO(pos),
	})
}

func (h *Handler) handleMove(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if !h.decode(w, r, &req) {
		return
	}
	pos, m, err := parseMoveRequest(req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if v := pos.CheckMove(m.From, m.To); !v.Legal {
		h.writeError(w, r, v.Err())
		return
	}
	next := pos.PieceAt(m.From).Side.Opponent()
	captured, err := pos.ApplyMove(m)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	status := pos.CheckGameOver()
	resp := MoveResponse{
		Status:       statusSuccess,
		Message:      "move applied",
		Board:        pos.Encode(),
		Pieces:       piecesToDTO(pos),
		GameOver:     status.Over,
		Winner:       winnerToString(status.Over, status.Winner),
		InCheck:      !status.Over && pos.InCheck(next),
		NextHasMoves: !status.Over && pos.HasLegalMove(next),
	}
	if captured != nil {
		resp.Captured = captured.Name()
	}
	if status.Over {
		resp.Message = fmt.Sprintf("game over, %s wins", status.Winner)
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if !h.decode(w, r, &req) {
		return
	}
	pos, m, err := parseMoveRequest(req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	v := pos.CheckMove(m.From, m.To)
	h.writeJSON(w, r, http.StatusOK, ValidateResponse{
		Status:  statusSuccess,
		Valid:   v.Legal,
		Message: v.Reason,
	})
}

func parseMoveRequest(req MoveRequest) (*xiangqi.Position, xiangqi.Move, error) {
	pos, err := xiangqi.Decode(req.Board)
	if err != nil {
		return nil, xiangqi.Move{}, err
	}
	m, err := xiangqi.ParseMove(req.Move)
	if err != nil {
		return nil, xiangqi.Move{}, err
	}
	return pos, m, nil
}

func (h *Handler) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req SuggestRequest
	if !h.decode(w, r, &req) {
		return
	}
	side, err := sideOrDefault(req.Side, xiangqi.Red)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.eng.Suggest(req.Board, side, req.TopK)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := SuggestResponse{
		Status:              statusSuccess,
		Mode:                string(res.Mode),
		Board:               res.Board,
		Player:              res.Side.String(),
		Suggestions:         suggestionsToDTO(res.Suggestions),
		TotalMovesAvailable: res.Available,
	}
	switch res.Mode {
	case suggest.ModeExact:
		resp.Message = fmt.Sprintf("found %d suggestions", len(res.Suggestions))
	case suggest.ModeSimilar:
		resp.Message = fmt.Sprintf("found %d suggestions from a similar board (%.1f%%)", len(res.Suggestions), res.Similarity*100)
		resp.SimilarityScore = res.Similarity
		resp.MatchedBoard = res.MatchedBoard
	case suggest.ModeGenerated:
		resp.Message = fmt.Sprintf("generated %d suggestions from the current board", len(res.Suggestions))
	default:
		resp.Status = statusNoMatch
		resp.Message = "no suggestions available"
	}
	if len(res.Suggestions) > 0 {
		resp.SuggestedMove = res.Suggestions[0].Move.String()
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

func (h *Handler) handleExecute(w http.ResponseWriter, r *http.Request, blackOnly bool) {
	var req ExecuteRequest
	if !h.decode(w, r, &req) {
		return
	}
	side := xiangqi.Black
	if !blackOnly {
		var err error
		if side, err = sideOrDefault(req.Player, xiangqi.Black); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	ex, err := h.eng.Execute(req.Board, side)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	pos, err := xiangqi.Decode(ex.Board)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := ExecuteResponse{
		Status:        statusSuccess,
		Message:       "move executed",
		Board:         ex.Board,
		PreviousBoard: ex.Before,
		Pieces:        piecesToDTO(pos),
		Player:        ex.Side.String(),
		Move:          ex.Move.String(),
		Piece:         ex.Piece,
		Captured:      ex.Captured,
		Description:   ex.Description,
		Mode:          string(ex.Mode),
		Frequency:     ex.Frequency,
		GameOver:      ex.GameOver,
		Winner:        winnerToString(ex.GameOver, ex.Winner),
	}
	if ex.GameOver {
		resp.Message = fmt.Sprintf("game over, %s wins", ex.Winner)
	}
	h.log.Debug().
		Str("rid", GetRequestID(r.Context())).
		Str("player", resp.Player).
		Str("move", resp.Move).
		Str("mode", resp.Mode).
		Msg("executed suggestion")
	h.writeJSON(w, r, http.StatusOK, resp)
}

func (h *Handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if !h.decode(w, r, &req) {
		return
	}
	cmp, err := h.eng.Compare(req.FrontendBoard, req.TargetBoard)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, CompareResponse{
		Status:          statusSuccess,
		IsMatch:         cmp.Identical,
		DifferenceCount: len(cmp.Differences),
		Differences:     differencesToDTO(cmp.Differences),
		FrontendBoard:   req.FrontendBoard,
		TargetBoard:     req.TargetBoard,
	})
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req BoardRequest
	if !h.decode(w, r, &req) {
		return
	}
	an, err := h.eng.Analyze(req.Board)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := AnalyzeResponse{
		Status:  statusSuccess,
		Message: "analysis complete",
		Analysis: AnalysisDTO{
			Board:           an.Board,
			RedMovesCount:   an.RedCount,
			BlackMovesCount: an.BlackCount,
			TotalMovesCount: an.Total,
			HasRedOptions:   an.RedCount > 0,
			HasBlackOptions: an.BlackCount > 0,
			TopRedMoves:     recordsToDTO(an.TopRed),
			TopBlackMoves:   recordsToDTO(an.TopBlack),
		},
	}
	if !an.Found {
		resp.Status = statusNoMatch
		resp.Message = "board not found in the frequency index"
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

func (h *Handler) handleEngineInfo(w http.ResponseWriter, r *http.Request) {
	info := h.eng.Info()
	code := http.StatusOK
	status := statusSuccess
	if !info.Available {
		code = http.StatusServiceUnavailable
		status = statusError
	}
	h.writeJSON(w, r, code, EngineInfoResponse{
		Status: status,
		ModelInfo: EngineInfoDTO{
			Available:      info.Available,
			TotalRecords:   info.Records,
			DistinctBoards: info.Boards,
			DefaultTopK:    info.TopK,
		},
	})
}

func sideOrDefault(s string, def xiangqi.Side) (xiangqi.Side, error) {
	if s == "" {
		return def, nil
	}
	side, ok := xiangqi.ParseSide(s)
	if !ok {
		return xiangqi.NoSide, &xiangqi.Error{Kind: xiangqi.KindMalformedEncoding, Reason: fmt.Sprintf("unknown side %q", s)}
	}
	return side, nil
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeJSON(w, r, http.StatusBadRequest, ErrorResponse{Status: statusError, Message: "bad json"})
		return false
	}
	return true
}

// statusFor 把错误类别映射成响应状态和 HTTP 状态码。
func statusFor(err error) (string, int) {
	switch xiangqi.KindOf(err) {
	case xiangqi.KindMalformedEncoding, xiangqi.KindCoordinateOutOfRange:
		return statusError, http.StatusBadRequest
	case xiangqi.KindIllegalMove:
		return statusInvalid, http.StatusOK
	case xiangqi.KindNoSuggestionAvailable:
		return statusNoMatch, http.StatusOK
	case xiangqi.KindIndexUnavailable:
		return statusError, http.StatusServiceUnavailable
	default:
		return statusError, http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	var xe *xiangqi.Error
	if errors.As(err, &xe) && xe.Reason != "" {
		msg = xe.Reason
	}
	if code >= http.StatusInternalServerError {
		h.log.Error().Err(err).Str("rid", GetRequestID(r.Context())).Str("path", r.URL.Path).Msg("request failed")
	}
	h.writeJSON(w, r, code, ErrorResponse{Status: status, Message: msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Str("rid", GetRequestID(r.Context())).Msg("writeJSON")
	}
}

package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"xiangqi/internal/book"
	"xiangqi/internal/suggest"
	"xiangqi/internal/xiangqi"
)

func initialBoard() string { return xiangqi.NewInitialPosition().Encode() }

func testRouter(t *testing.T, withIndex bool) http.Handler {
	t.Helper()
	var ix *book.Index
	if withIndex {
		board := initialBoard()
		recs := []book.Record{}
		for _, row := range []book.Row{
			{Board: board, Player: "red", Move: "1714", Frequency: 9},
			{Board: board, Player: "red", Move: "7774", Frequency: 4},
			{Board: board, Player: "black", Move: "1022", Frequency: 6},
		} {
			rec, ok := row.Record()
			if !ok {
				t.Fatalf("bad fixture row %+v", row)
			}
			recs = append(recs, rec)
		}
		ix = book.Build(recs)
	}
	return NewRouter(zerolog.Nop(), suggest.New(ix), "")
}

func do(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	out := map[string]any{}
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s %s: bad json response: %v\n%s", method, path, err, rr.Body.String())
		}
	}
	return rr, out
}

func TestHealthz(t *testing.T) {
	rr, _ := do(t, testRouter(t, false), http.MethodGet, "/healthz", nil)
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing request id header")
	}
}

func TestRequestIDPassthroughAndCORS(t *testing.T) {
	h := testRouter(t, false)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Header().Get("X-Request-ID") != "abc" {
		t.Fatalf("request id not echoed: %q", rr.Header().Get("X-Request-ID"))
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/move", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("preflight: %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}
}

func TestInit(t *testing.T) {
	rr, out := do(t, testRouter(t, false), http.MethodGet, "/api/init", nil)
	if rr.Code != http.StatusOK || out["status"] != "success" {
		t.Fatalf("init: %d %v", rr.Code, out)
	}
	if out["board"] != initialBoard() {
		t.Fatalf("init board mismatch")
	}
	if pieces := out["pieces"].([]any); len(pieces) != 32 {
		t.Fatalf("pieces: %d", len(pieces))
	}
	if rr, _ := do(t, testRouter(t, false), http.MethodPost, "/api/init", nil); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /api/init: %d", rr.Code)
	}
}

func TestMove(t *testing.T) {
	h := testRouter(t, false)
	rr, out := do(t, h, http.MethodPost, "/api/move", MoveRequest{Board: initialBoard(), Move: "1710"})
	if rr.Code != http.StatusOK || out["status"] != "success" {
		t.Fatalf("move: %d %v", rr.Code, out)
	}
	if out["captured"] != "马" || out["game_over"] != false || out["next_has_moves"] != true {
		t.Fatalf("move result: %v", out)
	}
	if pieces := out["pieces"].([]any); len(pieces) != 31 {
		t.Fatalf("pieces after capture: %d", len(pieces))
	}

	rr, out = do(t, h, http.MethodPost, "/api/move", MoveRequest{Board: initialBoard(), Move: "0919"})
	if rr.Code != http.StatusOK || out["status"] != "invalid" || out["message"] != xiangqi.ReasonOwnPiece {
		t.Fatalf("own piece: %d %v", rr.Code, out)
	}

	rr, out = do(t, h, http.MethodPost, "/api/move", MoveRequest{Board: initialBoard(), Move: "9919"})
	if rr.Code != http.StatusBadRequest || out["status"] != "error" {
		t.Fatalf("column 9: %d %v", rr.Code, out)
	}

	rr, _ = do(t, h, http.MethodPost, "/api/move", MoveRequest{Board: "123", Move: "0908"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("short board: %d", rr.Code)
	}

	rr, out = do(t, h, http.MethodPost, "/api/move", "{")
	if rr.Code != http.StatusBadRequest || out["message"] != "bad json" {
		t.Fatalf("bad json: %d %v", rr.Code, out)
	}
}

func piecesBoard(t *testing.T, pieces ...xiangqi.Piece) string {
	t.Helper()
	pos, err := xiangqi.NewPosition(pieces...)
	if err != nil {
		t.Fatal(err)
	}
	return pos.Encode()
}

func on(kind xiangqi.PieceKind, side xiangqi.Side, col, row int) xiangqi.Piece {
	return xiangqi.Piece{Kind: kind, Side: side, Loc: xiangqi.On(xiangqi.Sq(col, row))}
}

func TestMoveRejectsFacingGenerals(t *testing.T) {
	// 两王已经同列，红帅上一步仍然对脸
	board := piecesBoard(t,
		on(xiangqi.KindKing, xiangqi.Red, 4, 9),
		on(xiangqi.KindKing, xiangqi.Black, 4, 0),
		on(xiangqi.KindChariot, xiangqi.Red, 0, 9),
	)
	rr, out := do(t, testRouter(t, false), http.MethodPost, "/api/move", MoveRequest{Board: board, Move: "4948"})
	if rr.Code != http.StatusOK || out["status"] != "invalid" || out["message"] != xiangqi.ReasonGeneralsFace {
		t.Fatalf("facing generals: %d %v", rr.Code, out)
	}
}

func TestMoveGameOver(t *testing.T) {
	// 盘上没有黑将
	board := piecesBoard(t,
		on(xiangqi.KindKing, xiangqi.Red, 4, 9),
		on(xiangqi.KindChariot, xiangqi.Red, 0, 9),
		on(xiangqi.KindChariot, xiangqi.Black, 0, 0),
	)
	rr, out := do(t, testRouter(t, false), http.MethodPost, "/api/move", MoveRequest{Board: board, Move: "0900"})
	if rr.Code != http.StatusOK || out["game_over"] != true || out["winner"] != "red" {
		t.Fatalf("game over: %d %v", rr.Code, out)
	}
	if out["message"] != "game over, red wins" {
		t.Fatalf("message: %v", out["message"])
	}
}

func TestValidate(t *testing.T) {
	h := testRouter(t, false)
	_, out := do(t, h, http.MethodPost, "/api/validate", MoveRequest{Board: initialBoard(), Move: "1714"})
	if out["status"] != "success" || out["valid"] != true || out["message"] != xiangqi.ReasonLegal {
		t.Fatalf("legal: %v", out)
	}
	_, out = do(t, h, http.MethodPost, "/api/validate", MoveRequest{Board: initialBoard(), Move: "1712"})
	if out["valid"] != false {
		t.Fatalf("cannon without screen should be invalid: %v", out)
	}
}

func TestSuggest(t *testing.T) {
	h := testRouter(t, true)
	rr, out := do(t, h, http.MethodPost, "/api/ai/suggest", SuggestRequest{Board: initialBoard()})
	if rr.Code != http.StatusOK || out["status"] != "success" || out["mode"] != "exact" {
		t.Fatalf("suggest: %d %v", rr.Code, out)
	}
	if out["player"] != "red" || out["suggested_move"] != "1714" {
		t.Fatalf("default side should be red: %v", out)
	}
	if s := out["suggestions"].([]any); len(s) != 2 {
		t.Fatalf("suggestions: %v", s)
	}

	_, out = do(t, h, http.MethodPost, "/api/ai/suggest", SuggestRequest{Board: initialBoard(), Side: "black", TopK: 1})
	if out["suggested_move"] != "1022" || len(out["suggestions"].([]any)) != 1 {
		t.Fatalf("black suggest: %v", out)
	}

	rr, _ = do(t, h, http.MethodPost, "/api/ai/suggest", SuggestRequest{Board: initialBoard(), Side: "green"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown side: %d", rr.Code)
	}
}

func TestSuggestNoMatch(t *testing.T) {
	board := piecesBoard(t, on(xiangqi.KindKing, xiangqi.Black, 4, 0))
	h := testRouter(t, true)
	rr, out := do(t, h, http.MethodPost, "/api/ai/suggest", SuggestRequest{Board: board, Side: "red"})
	if rr.Code != http.StatusOK || out["status"] != "no_match" || out["mode"] != "none" {
		t.Fatalf("no match: %d %v", rr.Code, out)
	}
	rr, out = do(t, h, http.MethodPost, "/api/ai/execute_move", ExecuteRequest{Board: board, Player: "red"})
	if rr.Code != http.StatusOK || out["status"] != "no_match" {
		t.Fatalf("execute no match: %d %v", rr.Code, out)
	}
}

func TestExecuteMove(t *testing.T) {
	h := testRouter(t, true)
	rr, out := do(t, h, http.MethodPost, "/api/ai/execute_move", ExecuteRequest{Board: initialBoard()})
	if rr.Code != http.StatusOK || out["status"] != "success" {
		t.Fatalf("execute: %d %v", rr.Code, out)
	}
	if out["player"] != "black" || out["move_executed"] != "1022" || out["mode"] != "exact" {
		t.Fatalf("default player should be black: %v", out)
	}
	if out["previous_board_state"] != initialBoard() || out["new_board_state"] == initialBoard() {
		t.Fatalf("boards not updated: %v", out)
	}

	_, out = do(t, h, http.MethodPost, "/api/ai/execute_move", ExecuteRequest{Board: initialBoard(), Player: "red"})
	if out["move_executed"] != "1714" {
		t.Fatalf("red execute: %v", out)
	}

	// black_auto_move 忽略 player
	_, out = do(t, h, http.MethodPost, "/api/ai/black_auto_move", ExecuteRequest{Board: initialBoard(), Player: "red"})
	if out["player"] != "black" || out["move_executed"] != "1022" {
		t.Fatalf("black auto move: %v", out)
	}
}

func TestCompareBoards(t *testing.T) {
	h := testRouter(t, true)
	a := initialBoard()
	b := "99" + a[2:]
	_, out := do(t, h, http.MethodPost, "/api/ai/compare_boards", CompareRequest{FrontendBoard: a, TargetBoard: b})
	if out["status"] != "success" || out["is_match"] != false || out["difference_count"] != float64(1) {
		t.Fatalf("compare: %v", out)
	}
	diff := out["differences"].([]any)[0].(map[string]any)
	if diff["coordinate"] != "(0,0)" || diff["frontend_piece"] != "00" || diff["target_piece"] != "99" {
		t.Fatalf("difference: %v", diff)
	}
	rr, _ := do(t, h, http.MethodPost, "/api/ai/compare_boards", CompareRequest{FrontendBoard: a, TargetBoard: "1"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad target: %d", rr.Code)
	}
}

func TestAnalyzeBoard(t *testing.T) {
	h := testRouter(t, true)
	_, out := do(t, h, http.MethodPost, "/api/ai/analyze_board", BoardRequest{Board: initialBoard()})
	an := out["analysis"].(map[string]any)
	if out["status"] != "success" || an["red_moves_count"] != float64(2) || an["black_moves_count"] != float64(1) {
		t.Fatalf("analyze: %v", out)
	}
	_, out = do(t, h, http.MethodPost, "/api/ai/analyze_board", BoardRequest{Board: "99" + initialBoard()[2:]})
	if out["status"] != "no_match" {
		t.Fatalf("unknown board: %v", out)
	}
}

func TestEngineInfo(t *testing.T) {
	rr, out := do(t, testRouter(t, true), http.MethodGet, "/api/ai/engine_info", nil)
	info := out["model_info"].(map[string]any)
	if rr.Code != http.StatusOK || info["total_records"] != float64(3) || info["distinct_boards"] != float64(1) {
		t.Fatalf("engine info: %d %v", rr.Code, out)
	}
	rr, _ = do(t, testRouter(t, false), http.MethodGet, "/api/ai/engine_info", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("engine info without index: %d", rr.Code)
	}
}

func TestIndexUnavailable(t *testing.T) {
	h := testRouter(t, false)
	for _, path := range []string{"/api/ai/suggest", "/api/ai/execute_move", "/api/ai/black_auto_move", "/api/ai/analyze_board"} {
		rr, out := do(t, h, http.MethodPost, path, BoardRequest{Board: initialBoard()})
		if rr.Code != http.StatusServiceUnavailable || out["status"] != "error" {
			t.Fatalf("%s: %d %v", path, rr.Code, out)
		}
	}
	rr, _ := do(t, h, http.MethodPost, "/api/ai/compare_boards", CompareRequest{FrontendBoard: initialBoard(), TargetBoard: initialBoard()})
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("compare: %d", rr.Code)
	}
	// 规则接口不依赖索引
	if rr, _ := do(t, h, http.MethodPost, "/api/validate", MoveRequest{Board: initialBoard(), Move: "1714"}); rr.Code != http.StatusOK {
		t.Fatalf("validate without index: %d", rr.Code)
	}
}

func TestUnknownPath(t *testing.T) {
	rr, _ := do(t, testRouter(t, false), http.MethodGet, "/api/nope", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown path: %d", rr.Code)
	}
}

func TestStaticRoutes(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>xiangqi</h1>"), 0o644); err != nil {
		t.Fatal(err)
	}
	h := NewRouter(zerolog.Nop(), suggest.New(nil), dir)

	rr, _ := do(t, h, http.MethodGet, "/", nil)
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/web/" {
		t.Fatalf("root redirect: %d %q", rr.Code, rr.Header().Get("Location"))
	}
	rr, _ = do(t, h, http.MethodGet, "/web/", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "xiangqi") {
		t.Fatalf("index: %d %s", rr.Code, rr.Body.String())
	}
	rr, _ = do(t, h, http.MethodGet, "/missing", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing: %d", rr.Code)
	}
}

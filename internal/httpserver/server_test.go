package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/robalobadob/jeopardy/internal/board"
	"github.com/robalobadob/jeopardy/internal/game"
	"github.com/robalobadob/jeopardy/internal/store"
	"github.com/robalobadob/jeopardy/internal/trivia"
)

type builderFunc func(ctx context.Context) (*board.Board, error)

func (f builderFunc) Build(ctx context.Context) (*board.Board, error) { return f(ctx) }

func sixByFive() game.Builder {
	return builderFunc(func(ctx context.Context) (*board.Board, error) {
		cats := make([]*board.Category, 6)
		for i := range cats {
			cats[i] = &board.Category{Title: fmt.Sprintf("cat %d", i)}
			for j := 0; j < 5; j++ {
				cats[i].Clues = append(cats[i].Clues, board.NewClue(fmt.Sprintf("q%d%d", i, j), fmt.Sprintf("a%d%d", i, j)))
			}
		}
		return board.New(cats)
	})
}

func newTestServer(t *testing.T, b game.Builder) (*httptest.Server, *http.Client) {
	t.Helper()
	srv := New(store.NewMemoryStore(), b, Options{SessionSecret: "test"})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return ts, &http.Client{Jar: jar}
}

func TestHealth(t *testing.T) {
	ts, client := newTestServer(t, sixByFive())
	resp, err := client.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content type = %q", ct)
	}
}

func TestIndexIssuesSessionCookie(t *testing.T) {
	ts, client := newTestServer(t, sixByFive())
	resp, err := client.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	found := false
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookieName && c.HttpOnly {
			found = true
		}
	}
	if !found {
		t.Fatal("session cookie not issued")
	}
}

func TestBoardSnapshotBeforeStart(t *testing.T) {
	ts, client := newTestServer(t, sixByFive())
	resp, err := client.Get(ts.URL + "/api/board")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var snap game.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.Phase != game.PhaseIdle || snap.Grid != nil {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

// wsClient dials /ws with the client's cookies.
func wsClient(t *testing.T, ts *httptest.Server, client *http.Client) *websocket.Conn {
	t.Helper()
	resp, err := client.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	dialer := websocket.Dialer{Jar: client.Jar, HandshakeTimeout: 5 * time.Second}
	conn, _, err := dialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var env Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	return env
}

func expectType(t *testing.T, conn *websocket.Conn, typ string) Envelope {
	t.Helper()
	env := readEnvelope(t, conn)
	if env.Type != typ {
		t.Fatalf("got %s, want %s", env.Type, typ)
	}
	return env
}

func TestWebSocketGameFlow(t *testing.T) {
	ts, client := newTestServer(t, sixByFive())
	conn := wsClient(t, ts, client)

	expectType(t, conn, MsgShowLoading)
	expectType(t, conn, MsgHideLoading)
	env := expectType(t, conn, MsgDisplayGrid)

	var grid game.GridView
	if err := json.Unmarshal(env.Payload, &grid); err != nil {
		t.Fatal(err)
	}
	if len(grid.Categories) != 6 || len(grid.Categories[0].Cells) != 5 || grid.Categories[0].Cells[0] != board.Placeholder {
		t.Fatalf("unexpected grid %+v", grid)
	}

	click := func(col, row int) {
		msg := fmt.Sprintf(`{"type":"cell_click","payload":{"col":%d,"row":%d}}`, col, row)
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			t.Fatal(err)
		}
	}
	cellText := func() string {
		env := expectType(t, conn, MsgUpdateCell)
		var p CellPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			t.Fatal(err)
		}
		if *p.Col != 0 || *p.Row != 0 {
			t.Fatalf("update for (%d,%d)", *p.Col, *p.Row)
		}
		return p.Text
	}

	click(0, 0)
	if got := cellText(); got != "q00" {
		t.Fatalf("first click shows %q", got)
	}
	click(0, 0)
	if got := cellText(); got != "a00" {
		t.Fatalf("second click shows %q", got)
	}

	// Third click and an out-of-bounds click render nothing; the ping reply
	// proves they were processed.
	click(0, 0)
	click(9, 9)
	_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`))
	expectType(t, conn, MsgPong)

	_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"reset"}`))
	expectType(t, conn, MsgShowLoading)
	expectType(t, conn, MsgHideLoading)
	env = expectType(t, conn, MsgDisplayGrid)
	if err := json.Unmarshal(env.Payload, &grid); err != nil {
		t.Fatal(err)
	}
	if grid.Categories[0].Cells[0] != board.Placeholder {
		t.Fatalf("reset grid shows %q", grid.Categories[0].Cells[0])
	}

	resp, err := client.Get(ts.URL + "/api/board")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var snap struct {
		Phase string `json:"phase"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.Phase != string(game.PhaseReady) {
		t.Fatalf("phase = %s", snap.Phase)
	}
}

func TestWebSocketBuildFailure(t *testing.T) {
	b := builderFunc(func(ctx context.Context) (*board.Board, error) {
		return nil, &trivia.FetchError{Op: "category", CategoryID: 1, Err: errors.New("down")}
	})
	ts, client := newTestServer(t, b)
	conn := wsClient(t, ts, client)

	expectType(t, conn, MsgShowLoading)
	expectType(t, conn, MsgHideLoading)
	env := expectType(t, conn, MsgShowError)
	var p ErrorPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(p.Message, "Reset") {
		t.Fatalf("error message %q", p.Message)
	}
}

func TestResolveCell(t *testing.T) {
	col, row, err := resolveCell(json.RawMessage(`{"col":2,"row":4}`))
	if err != nil || col != 2 || row != 4 {
		t.Fatalf("got (%d,%d) %v", col, row, err)
	}
	for _, raw := range []string{`{"col":1}`, `{"row":1}`, `"x"`, `{"col":"a","row":1}`} {
		if _, _, err := resolveCell(json.RawMessage(raw)); !errors.Is(err, errBadCell) {
			t.Errorf("%s: expected errBadCell, got %v", raw, err)
		}
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	s := &sessionSigner{secret: []byte("k")}
	tok, _, err := s.sign("3f1b6a52-3f0e-4d3e-9b8e-7c9a1b2c3d4e")
	if err != nil {
		t.Fatal(err)
	}
	id, err := s.parse(tok)
	if err != nil || id != "3f1b6a52-3f0e-4d3e-9b8e-7c9a1b2c3d4e" {
		t.Fatalf("parse = %q, %v", id, err)
	}

	other := &sessionSigner{secret: []byte("other")}
	if _, err := other.parse(tok); !errors.Is(err, errNoSession) {
		t.Fatalf("foreign token accepted: %v", err)
	}
}

func TestSessionReusedAcrossRequests(t *testing.T) {
	ts, client := newTestServer(t, sixByFive())
	conn := wsClient(t, ts, client)
	expectType(t, conn, MsgShowLoading)
	expectType(t, conn, MsgHideLoading)
	expectType(t, conn, MsgDisplayGrid)

	resp, err := client.Get(ts.URL + "/api/board")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var snap game.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.Phase != game.PhaseReady || snap.Grid == nil {
		t.Fatalf("snapshot did not see the socket's board: %+v", snap)
	}
}

func TestWebSocketIssuesSessionCookie(t *testing.T) {
	ts, client := newTestServer(t, sixByFive())

	// Dial without visiting the page first; the handshake must carry the cookie.
	dialer := websocket.Dialer{Jar: client.Jar, HandshakeTimeout: 5 * time.Second}
	conn, resp, err := dialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })

	found := false
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookieName {
			found = true
		}
	}
	if !found {
		t.Fatal("handshake carried no session cookie")
	}

	expectType(t, conn, MsgShowLoading)
	expectType(t, conn, MsgHideLoading)
	expectType(t, conn, MsgDisplayGrid)

	r, err := client.Get(ts.URL + "/api/board")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Body.Close()
	var snap game.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.Phase != game.PhaseReady {
		t.Fatalf("phase = %s, want ready", snap.Phase)
	}
}

func TestSecureCookiesOption(t *testing.T) {
	srv := New(store.NewMemoryStore(), sixByFive(), Options{SessionSecret: "test", SecureCookies: true})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookieName {
			if !c.Secure || c.SameSite != http.SameSiteStrictMode {
				t.Fatalf("cookie secure=%v samesite=%v", c.Secure, c.SameSite)
			}
			return
		}
	}
	t.Fatal("session cookie not issued")
}

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// ---------- helpers ----------

// startTestServer spins up an httptest.Server backed by a fresh Hub/Game
// pair and a temp-dir terrain map database.
func startTestServer(t *testing.T) (*httptest.Server, string, *Hub, func()) {
	t.Helper()

	tmpDir := t.TempDir()
	os.WriteFile(filepath.Join(tmpDir, "index.html"), []byte("<html>test</html>"), 0o644)
	jsDir := filepath.Join(tmpDir, "js")
	os.MkdirAll(jsDir, 0o755)
	os.WriteFile(filepath.Join(jsDir, "main.js"), []byte("// test"), 0o644)

	db, err := OpenDB(filepath.Join(tmpDir, "terrain.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	hub := NewHub(nil, db)
	game := NewGame(hub)
	hub.game = game

	ctx, cancel := context.WithCancel(context.Background())
	go game.Run(ctx)
	go hub.Run(ctx)

	mux := SetupRoutes(hub, tmpDir)
	srv := httptest.NewServer(mux)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	return srv, wsURL, hub, func() {
		cancel()
		srv.Close()
		db.Close()
	}
}

func dialWS(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial WS: %v", err)
	}
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read WS: %v", err)
	}
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	var data interface{}
	json.Unmarshal(env.Data, &data)
	return Envelope{Type: env.Type, Data: data}
}

func sendMsg(t *testing.T, conn *websocket.Conn, eventType string, data interface{}) {
	t.Helper()
	env := Envelope{Type: eventType, Data: data}
	raw, _ := json.Marshal(env)
	if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		t.Fatalf("write WS: %v", err)
	}
}

func dataMap(t *testing.T, env Envelope) map[string]interface{} {
	t.Helper()
	raw, _ := json.Marshal(env.Data)
	var m map[string]interface{}
	json.Unmarshal(raw, &m)
	return m
}

// joinAndDrain sends a join and consumes the joined/gameState replies.
func joinAndDrain(t *testing.T, conn *websocket.Conn, callname string) string {
	t.Helper()
	sendMsg(t, conn, EventJoin, JoinMsg{Callname: callname, TeamName: "NATO"})
	joined := readEnvelope(t, conn)
	if joined.Type != EventJoined {
		t.Fatalf("expected joined, got %s", joined.Type)
	}
	_ = readEnvelope(t, conn) // initial gameState snapshot
	return dataMap(t, joined)["playerId"].(string)
}

// ---------- HTTP surface ----------

func TestHealthEndpoint(t *testing.T) {
	srv, _, _, cleanup := startTestServer(t)
	defer cleanup()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("GET /health status = %d, want 200", resp.StatusCode)
	}
	var body map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&body)
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
}

func TestListTerrainMapsEndpoint(t *testing.T) {
	srv, _, _, cleanup := startTestServer(t)
	defer cleanup()

	resp, err := http.Get(srv.URL + "/api/terrain-maps")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var maps []TerrainMapRow
	json.NewDecoder(resp.Body).Decode(&maps)
	if len(maps) < 3 {
		t.Errorf("expected at least 3 built-in terrain maps, got %d", len(maps))
	}
}

func TestGetTerrainMapEndpoint(t *testing.T) {
	srv, _, _, cleanup := startTestServer(t)
	defer cleanup()

	resp, err := http.Get(srv.URL + "/api/terrain-maps/forest")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("GET /api/terrain-maps/forest status = %d, want 200", resp.StatusCode)
	}
	var tm TerrainMapRow
	json.NewDecoder(resp.Body).Decode(&tm)
	if tm.ID != "forest" {
		t.Errorf("expected id forest, got %s", tm.ID)
	}
}

func TestGetTerrainMapNotFound(t *testing.T) {
	srv, _, _, cleanup := startTestServer(t)
	defer cleanup()

	resp, err := http.Get(srv.URL + "/api/terrain-maps/nonexistent")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 404 {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestJoinQREndpoint(t *testing.T) {
	srv, _, _, cleanup := startTestServer(t)
	defer cleanup()

	resp, err := http.Get(srv.URL + "/api/terrain-maps/default/join-qr")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("GET join-qr status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}
}

func TestCacheControlHeader(t *testing.T) {
	srv, _, _, cleanup := startTestServer(t)
	defer cleanup()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if cc := resp.Header.Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("expected Cache-Control: no-cache, got %q", cc)
	}
}

// ---------- WebSocket join/input/broadcast flow ----------

func TestWSJoinAssignsPlayerAndTank(t *testing.T) {
	srv, wsURL, hub, cleanup := startTestServer(t)
	_ = srv
	defer cleanup()

	c := dialWS(t, wsURL)
	defer c.Close()

	id := joinAndDrain(t, c, "Tester")
	if id == "" {
		t.Fatal("expected a non-empty player id")
	}

	time.Sleep(20 * time.Millisecond)
	players, tanks, _, _, _ := hub.game.HealthStats()
	if players != 1 || tanks != 1 {
		t.Errorf("expected 1 player and 1 tank, got players=%d tanks=%d", players, tanks)
	}
}

func TestWSInputThenGameStateBroadcast(t *testing.T) {
	srv, wsURL, _, cleanup := startTestServer(t)
	_ = srv
	defer cleanup()

	c := dialWS(t, wsURL)
	defer c.Close()

	joinAndDrain(t, c, "Mover")
	sendMsg(t, c, EventPlayerInput, PlayerInputMsg{Movement: Vector2{1, 0}, Shoot: false})

	env := readEnvelope(t, c)
	if env.Type != EventGameState && env.Type != EventPlayerState {
		t.Fatalf("expected a gameState or playerState push, got %s", env.Type)
	}
}

func TestWSDisconnectRemovesPlayer(t *testing.T) {
	srv, wsURL, hub, cleanup := startTestServer(t)
	_ = srv
	defer cleanup()

	c := dialWS(t, wsURL)
	joinAndDrain(t, c, "Leaver")
	c.Close()

	deadline := time.Now().Add(1 * time.Second)
	for time.Now().Before(deadline) {
		players, _, _, _, _ := hub.game.HealthStats()
		if players == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("expected player to be removed after disconnect")
}

func TestWSUnknownEventIsIgnored(t *testing.T) {
	srv, wsURL, _, cleanup := startTestServer(t)
	_ = srv
	defer cleanup()

	c := dialWS(t, wsURL)
	defer c.Close()

	sendMsg(t, c, "notARealEvent", map[string]string{})
	// Connection should still work afterward.
	joinAndDrain(t, c, "Recoverer")
}

// ---------- Util functions ----------

func TestGenerateIDLength(t *testing.T) {
	id := GenerateID(4)
	if len(id) != 8 {
		t.Errorf("expected 8 chars, got %d: %s", len(id), id)
	}
	id2 := GenerateID(8)
	if len(id2) != 16 {
		t.Errorf("expected 16 chars, got %d: %s", len(id2), id2)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, min, max, want float64
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{15, 0, 10, 10},
		{0, 0, 10, 0},
		{10, 0, 10, 10},
	}
	for _, tt := range tests {
		got := Clamp(tt.v, tt.min, tt.max)
		if got != tt.want {
			t.Errorf("Clamp(%f, %f, %f) = %f, want %f", tt.v, tt.min, tt.max, got, tt.want)
		}
	}
}

func TestDistance(t *testing.T) {
	d := Distance(0, 0, 3, 4)
	if d != 5 {
		t.Errorf("Distance(0,0,3,4) = %f, want 5", d)
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		input, wantApprox float64
	}{
		{0, 0},
		{3.14159, 3.14159},
		{-3.14159, -3.14159},
		{7, 7 - 2*3.14159265358979},
	}
	for _, tt := range tests {
		got := NormalizeAngle(tt.input)
		diff := got - tt.wantApprox
		if diff > 0.01 || diff < -0.01 {
			t.Errorf("NormalizeAngle(%f) = %f, want ~%f", tt.input, got, tt.wantApprox)
		}
	}
}

func TestLerpAngle(t *testing.T) {
	got := LerpAngle(0, 1, 0.5)
	want := 0.5
	diff := got - want
	if diff > 0.01 || diff < -0.01 {
		t.Errorf("LerpAngle(0, 1, 0.5) = %f, want ~%f", got, want)
	}
}

package main

import (
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/gorilla/websocket"
)

const msgpackSubprotocol = "msgpack"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	Subprotocols:    []string{msgpackSubprotocol},
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// mapIDFromJoinQRPath extracts {id} from "/api/terrain-maps/{id}/join-qr".
func mapIDFromJoinQRPath(path string) string {
	const prefix = "/api/terrain-maps/"
	const suffix = "/join-qr"
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		return ""
	}
	return path[len(prefix) : len(path)-len(suffix)]
}

// SetupRoutes configures HTTP routes (SPEC_FULL §6 "HTTP surface").
func SetupRoutes(hub *Hub, clientDir string) *http.ServeMux {
	mux := http.NewServeMux()

	fs := http.FileServer(http.Dir(clientDir))
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		if r.URL.Path == "/" {
			http.ServeFile(w, r, filepath.Join(clientDir, "index.html"))
			return
		}
		fs.ServeHTTP(w, r)
	}))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		players, tanks, shells, upgrades, trees := hub.game.HealthStats()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":   "ok",
			"players":  players,
			"tanks":    tanks,
			"shells":   shells,
			"upgrades": upgrades,
			"trees":    trees,
		})
	})

	mux.HandleFunc("/api/terrain-maps", func(w http.ResponseWriter, r *http.Request) {
		maps, err := hub.db.ListTerrainMaps()
		if err != nil {
			http.Error(w, "failed to list terrain maps", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(maps)
	})

	mux.HandleFunc("/api/terrain-maps/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/join-qr") {
			joinQRHandler(hub)(w, r)
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/api/terrain-maps/")
		tm, ok := lookupTerrainMap(hub.db, id)
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(tm)
	})

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)
		if !hub.CanAccept(ip) {
			RecordConnectionRejected("rate_limit")
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("ws upgrade error", map[string]interface{}{"error": err.Error()})
			return
		}

		hub.TrackConnect(ip)

		binary := conn.Subprotocol() == msgpackSubprotocol
		client := NewClient(hub, conn, ip, binary)
		hub.register <- client

		go client.WritePump()
		go client.ReadPump()
	})

	return mux
}

package main

import (
	"fmt"
	"net/http"

	qrcode "github.com/skip2/go-qrcode"
)

// joinQRHandler renders a scan-to-join QR code for one terrain map, so a
// phone running the mobile controller can join the arena without typing a
// URL (SPEC_FULL §11 domain stack: mobile-controller pairing).
func joinQRHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mapIDFromJoinQRPath(r.URL.Path)
		if id == "" {
			http.NotFound(w, r)
			return
		}
		if _, ok := lookupTerrainMap(hub.db, id); !ok {
			http.NotFound(w, r)
			return
		}

		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		joinURL := fmt.Sprintf("%s://%s/?map=%s", scheme, r.Host, id)

		png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
		if err != nil {
			http.Error(w, "failed to render QR code", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	}
}

package http

import (
	"encoding/json"
	"net/http"

	"github.com/tg383520/geo-quiz/internal/app"
)

// NewRouter mounts the websocket endpoint, the map asset, health and metrics.
// metrics may be nil.
func NewRouter(service *app.QuizService, ws *WSHandler, metrics http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", ws.ServeWS)
	mux.HandleFunc("GET /healthz", healthz(service))
	mux.HandleFunc("GET /map.svg", mapAsset(service))
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}
	return mux
}

func healthz(service *app.QuizService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := service.Status()
		code := http.StatusOK
		if st.State != app.StatusReady {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(st)
	}
}

func mapAsset(service *app.QuizService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		asset, ok := service.Map()
		if !ok {
			http.Error(w, "map not loaded", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_, _ = w.Write(asset.Raw())
	}
}

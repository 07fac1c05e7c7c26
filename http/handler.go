package http

import (
	"net/http"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

func HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func HandleReadyCheck(readinessCheck func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !readinessCheck() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func HandleVersion(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(version))
	}
}

func HandleWithCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// HandleStatsStream pushes a JSON snapshot to each websocket client on every
// interval until the client goes away.
func HandleStatsStream(interval time.Duration, snapshot func() any) http.Handler {
	return websocket.Server{
		Handler: func(conn *websocket.Conn) {
			defer conn.Close()

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for range ticker.C {
				body, err := json.Marshal(snapshot())
				if err != nil {
					logs.Warn(errors.New("encoding stats snapshot failed").Wrap(err))
					return
				}
				if _, err := conn.Write(body); err != nil {
					return
				}
			}
		},
	}
}

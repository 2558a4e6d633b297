package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/weichenlin/tripmate/internal/cache"
	"github.com/weichenlin/tripmate/internal/dispatcher"
	"github.com/weichenlin/tripmate/internal/linking"
)

type Server struct {
	dispatcher    *dispatcher.Dispatcher
	linking       *linking.Service
	cache         *cache.Cache
	channelSecret string
	httpSrv       *http.Server
	port          int
}

// ServerConfig holds everything the HTTP layer needs.
type ServerConfig struct {
	Dispatcher    *dispatcher.Dispatcher
	Linking       *linking.Service
	Cache         *cache.Cache
	ChannelSecret string
	Port          int
}

func New(cfg ServerConfig) *Server {
	s := &Server{
		dispatcher:    cfg.Dispatcher,
		linking:       cfg.Linking,
		cache:         cfg.Cache,
		channelSecret: cfg.ChannelSecret,
		port:          cfg.Port,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", s.handleHealthCheck)

	// Chat platform webhook
	mux.HandleFunc("POST /callback", s.handleWebhook)

	// Travel-site account linking redirect
	mux.HandleFunc("GET /linking/callback", s.handleLinkingCallback)
}

func (s *Server) Start() error {
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	stats := s.cache.Stats()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"cache": map[string]any{
			"hits":     stats.Hits,
			"misses":   stats.Misses,
			"hit_rate": stats.HitRate,
		},
	})
}

func (s *Server) handleLinkingCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		http.Error(w, "missing state or code", http.StatusBadRequest)
		return
	}

	if err := s.linking.HandleCallback(r.Context(), state, code); err != nil {
		http.Error(w, "linking failed", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, "<html><body>帳號綁定完成，可以回到聊天室了。</body></html>")
}

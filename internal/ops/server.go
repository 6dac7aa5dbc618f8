// Package ops assembles the operational HTTP surface: health and metrics
// endpoints, the event WebSocket feed, and the asset upsert API used by
// the external price-refresh collaborator. The bot itself has no
// network-facing API; this server is for operators and sidecars.
package ops

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/snackbot/economy-engine/internal/events"
	"github.com/snackbot/economy-engine/internal/metrics"
	"github.com/snackbot/economy-engine/internal/model"
	"github.com/snackbot/economy-engine/internal/oracle"
	"github.com/snackbot/economy-engine/internal/store"
)

// Server exposes the ops endpoints over a chi router.
type Server struct {
	store store.Store
	hub   *events.Hub
}

// NewServer creates an ops server. Pass nil for hub to disable the
// event feed endpoint.
func NewServer(st store.Store, hub *events.Hub) *Server {
	return &Server{store: st, hub: hub}
}

// Router builds the HTTP routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"economy-engine"}`))
	})

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if s.hub != nil {
			r.Get("/ws", s.hub.HandleWS)
		}
		r.Get("/assets", s.listAssets)
		r.Post("/assets", s.upsertAsset)
		r.Get("/assets/{symbol}", s.getAsset)
	})

	return r
}

// listAssets handles GET /api/v1/assets[?class=stocks|crypto]
func (s *Server) listAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := s.store.ListAssets(r.Context(), r.URL.Query().Get("class"))
	if err != nil {
		writeError(w, "failed to list assets", http.StatusInternalServerError)
		return
	}
	if assets == nil {
		assets = []model.Asset{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(assets)
}

// getAsset handles GET /api/v1/assets/{symbol}
func (s *Server) getAsset(w http.ResponseWriter, r *http.Request) {
	symbol := oracle.Normalize(chi.URLParam(r, "symbol"))

	asset, err := s.store.GetAsset(r.Context(), symbol)
	if err != nil {
		writeError(w, "failed to read asset", http.StatusInternalServerError)
		return
	}
	if asset == nil {
		writeError(w, "asset not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(asset)
}

// upsertAsset handles POST /api/v1/assets, the write side of the price
// oracle, called by the price-refresh collaborator on its schedule.
func (s *Server) upsertAsset(w http.ResponseWriter, r *http.Request) {
	var asset model.Asset
	if err := json.NewDecoder(r.Body).Decode(&asset); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	asset.Symbol = oracle.Normalize(asset.Symbol)
	if asset.Symbol == "" {
		writeError(w, "symbol is required", http.StatusBadRequest)
		return
	}
	if asset.Class != model.ClassStocks && asset.Class != model.ClassCrypto {
		writeError(w, "class must be stocks or crypto", http.StatusBadRequest)
		return
	}
	if !asset.Price.IsPositive() {
		writeError(w, "price must be positive", http.StatusBadRequest)
		return
	}
	if asset.UpdatedAt.IsZero() {
		asset.UpdatedAt = time.Now().UTC()
	}

	if err := s.store.PutAsset(r.Context(), &asset); err != nil {
		writeError(w, "failed to write asset", http.StatusInternalServerError)
		return
	}

	slog.Info("asset updated",
		"symbol", asset.Symbol,
		"class", asset.Class,
		"price", asset.Price.String(),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(asset)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// Package api provides the HTTP ingest surface for serve mode.
//
// POST /v1/transactions        — apply one transaction record
// GET  /v1/transactions/{tx}   — look up a cached transaction
// GET  /v1/accounts            — full ledger snapshot
// GET  /v1/accounts/{client}   — one account
// GET  /v1/stats               — run counters
// GET  /health                 — liveness
// GET  /metrics                — Prometheus metrics (when enabled)
//
// The engine is single-writer by contract: one mutex serializes every
// mutation so each account's transaction order stays total.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reckon-ledger/reckon/internal/domain"
	"github.com/reckon-ledger/reckon/internal/engine"
	"github.com/reckon-ledger/reckon/internal/ledger"
)

// Server is the reckon HTTP API server.
type Server struct {
	mu             sync.Mutex // serializes engine mutations and snapshots
	proc           *engine.Processor
	metricsEnabled bool
}

// NewServer creates a server over an engine processor.
func NewServer(proc *engine.Processor) *Server {
	return &Server{proc: proc}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/transactions", s.handlePostTransaction)
		r.Get("/transactions/{tx}", s.handleGetTransaction)
		r.Get("/accounts", s.handleListAccounts)
		r.Get("/accounts/{client}", s.handleGetAccount)
		r.Get("/stats", s.handleStats)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// ─── Wire Types ─────────────────────────────────────────────────────────────

// transactionRequest mirrors the CSV record shape.
type transactionRequest struct {
	Type   string `json:"type"`
	Client uint16 `json:"client"`
	Tx     uint32 `json:"tx"`
	Amount string `json:"amount,omitempty"`
}

// accountResponse is one snapshot row.
type accountResponse struct {
	Client    uint16 `json:"client"`
	Available string `json:"available"`
	Held      string `json:"held"`
	Total     string `json:"total"`
	Locked    bool   `json:"locked"`
}

func toAccountResponse(a ledger.Account) accountResponse {
	return accountResponse{
		Client:    uint16(a.Client),
		Available: domain.FormatAmount(a.Available),
		Held:      domain.FormatAmount(a.Held),
		Total:     domain.FormatAmount(a.Total),
		Locked:    a.Locked,
	}
}

// ─── Handlers ───────────────────────────────────────────────────────────────

// handlePostTransaction applies one record.
// Structural problems are 400s; semantic rejections are 422s carrying
// the discard reason — mirroring the engine's two error tiers.
func (s *Server) handlePostTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	kind, err := domain.ParseKind(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx := domain.Transaction{
		Kind:   kind,
		Client: domain.ClientID(req.Client),
		ID:     domain.TxID(req.Tx),
	}
	if kind.Funded() {
		if req.Amount == "" {
			writeError(w, http.StatusBadRequest, kind.String()+" requires an amount")
			return
		}
		amount, err := domain.ParseAmount(req.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		tx.Amount = amount
	}

	s.mu.Lock()
	applyErr := s.proc.Apply(tx)
	s.mu.Unlock()

	if applyErr != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"applied": false,
			"reason":  applyErr.Error(),
		})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{"applied": true})
}

// handleGetTransaction returns a cached deposit/withdrawal.
func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "tx"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	s.mu.Lock()
	cached := s.proc.Cache().Lookup(domain.TxID(id))
	s.mu.Unlock()

	if cached == nil {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tx":            uint32(cached.ID),
		"client":        uint16(cached.Client),
		"kind":          cached.Kind.String(),
		"amount":        domain.FormatAmount(cached.Amount),
		"dispute_state": cached.State.String(),
	})
}

// handleListAccounts returns the full snapshot in insertion order.
func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snapshot := s.proc.Ledger().Snapshot()
	s.mu.Unlock()

	out := make([]accountResponse, 0, len(snapshot))
	for _, acct := range snapshot {
		out = append(out, toAccountResponse(acct))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"accounts": out})
}

// handleGetAccount returns one account.
func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "client"), 10, 16)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	s.mu.Lock()
	acct := s.proc.Ledger().Get(domain.ClientID(id))
	var resp accountResponse
	if acct != nil {
		resp = toAccountResponse(*acct)
	}
	s.mu.Unlock()

	if acct == nil {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleStats returns the run counters.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	stats := s.proc.Stats()
	accounts := s.proc.Ledger().Len()
	cached := s.proc.Cache().Len()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":     stats.RunID.String(),
		"processed":  stats.Processed,
		"discarded":  stats.Discarded,
		"accounts":   accounts,
		"cached_txs": cached,
	})
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

package devstore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
)

type queryRequest struct {
	Select []any  `json:"select"`
	From   string `json:"from"`
	Opts   struct {
		Compact bool     `json:"compact"`
		OrderBy []string `json:"orderBy"`
	} `json:"opts"`
}

// Handler returns the HTTP routes of the store.
func (s *Store) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/fdb/{network}/{ledger}/query", s.handleQuery).Methods(http.MethodPost)
	r.HandleFunc("/fdb/{network}/{ledger}/transact", s.handleTransact).Methods(http.MethodPost)
	return r
}

// checkLedger answers 404 for any ledger other than the one served.
func (s *Store) checkLedger(w http.ResponseWriter, r *http.Request) bool {
	vars := mux.Vars(r)
	if vars["network"] != s.network || vars["ledger"] != s.ledger {
		writeError(w, http.StatusNotFound, "ledger not found: "+vars["network"]+"/"+vars["ledger"])
		return false
	}
	return true
}

func (s *Store) handleQuery(w http.ResponseWriter, r *http.Request) {
	if !s.checkLedger(w, r) {
		return
	}
	if status, ok := s.takeFailure("query"); ok {
		writeError(w, status, "injected failure")
		return
	}

	var q queryRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query: "+err.Error())
		return
	}

	desc := len(q.Opts.OrderBy) > 0 && strings.EqualFold(q.Opts.OrderBy[0], "DESC")
	results, err := s.Query(q.From, q.Select, q.Opts.Compact, desc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Store) handleTransact(w http.ResponseWriter, r *http.Request) {
	if !s.checkLedger(w, r) {
		return
	}
	if status, ok := s.takeFailure("transact"); ok {
		writeError(w, status, "injected failure")
		return
	}

	var items []map[string]any
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&items); err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction: "+err.Error())
		return
	}

	tempids, block, err := s.Transact(items)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tempids": tempids,
		"block":   block,
		"status":  http.StatusOK,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"status": status, "message": msg})
}

// Serve runs the store on addr until ctx is cancelled.
func (s *Store) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	server := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()
	logger.Info("devstore listening", "addr", ln.Addr().String(), "ledger", s.network+"/"+s.ledger)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

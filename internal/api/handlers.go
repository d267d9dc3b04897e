package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/susu3304/pointbot/internal/ledger"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

func (a *API) handleListPoints(w http.ResponseWriter, r *http.Request) {
	limit := defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		if n > maxLimit {
			n = maxLimit
		}
		limit = n
	}

	entries, ok := a.ledger.TopN(limit, r.URL.Query().Get("prefix"))
	if !ok {
		entries = []ledger.Entry{}
	}
	a.writeJSON(w, http.StatusOK, entries)
}

func (a *API) handleGetPoints(w http.ResponseWriter, r *http.Request) {
	identity := mux.Vars(r)["identity"]
	score, ok := a.ledger.Lookup(identity)
	if !ok {
		http.Error(w, "no points recorded", http.StatusNotFound)
		return
	}
	a.writeJSON(w, http.StatusOK, ledger.Entry{Identity: identity, Score: score})
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Warn("Failed to write response", zap.Error(err))
	}
}

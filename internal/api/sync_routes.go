package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/APWalter/trade-journal/internal/syncer"
)

type syncRequest struct {
	AccountID string `json:"accountId"`
}

// parseAccountID reads accountId from the JSON body, falling back to
// the query string.
func parseAccountID(r *http.Request) string {
	var req syncRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.AccountID != "" {
		return req.AccountID
	}
	return r.URL.Query().Get("accountId")
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	accountID := parseAccountID(r)
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "accountId is required")
		return
	}

	result, err := s.orch.SyncAccount(r.Context(), accountID)
	if err != nil {
		s.logger.Error().Str("account", accountID).Err(err).Msg("Sync failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSyncAll(w http.ResponseWriter, r *http.Request) {
	if s.scheduler == nil {
		writeError(w, http.StatusServiceUnavailable, "auto-sync scheduler not running")
		return
	}
	if s.scheduler.InFlight() {
		writeJSON(w, http.StatusAccepted, map[string]any{
			"success": true,
			"message": "Sync already in progress",
		})
		return
	}

	// The pass outlives the request; detach it from the request context.
	go s.scheduler.SyncAll(context.Background())
	writeJSON(w, http.StatusAccepted, map[string]any{
		"success": true,
		"message": "Sync started for all accounts",
	})
}

func (s *Server) handleListSynchronizations(w http.ResponseWriter, r *http.Request) {
	checkpoints, err := s.store.ListCheckpoints(r.Context(), s.userID, syncer.Service)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list synchronizations")
		writeError(w, http.StatusInternalServerError, "failed to fetch synchronizations")
		return
	}
	writeJSON(w, http.StatusOK, checkpoints)
}

func (s *Server) handleDeleteSynchronization(w http.ResponseWriter, r *http.Request) {
	accountID := parseAccountID(r)
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "accountId is required")
		return
	}

	if err := s.store.DeleteCheckpoint(r.Context(), s.userID, syncer.Service, accountID); err != nil {
		s.logger.Error().Str("account", accountID).Err(err).Msg("Failed to delete synchronization")
		writeError(w, http.StatusInternalServerError, "failed to delete synchronization")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

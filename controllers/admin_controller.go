package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"aligned_server/services"
	"aligned_server/utils"
)

// AdminController exposes the pairing-cycle maintenance operations.
type AdminController struct {
	PairingService *services.PairingService
	MatchStore     services.MatchStore
}

// RunPairingCycleHandler kicks off match generation for a cycle. The cycle id
// defaults to the current ISO week, so ops can simply POST with an empty body.
func (c *AdminController) RunPairingCycleHandler(w http.ResponseWriter, r *http.Request) {
	var request struct {
		CycleID string `json:"cycleId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if request.CycleID == "" {
		request.CycleID = utils.CycleID(time.Now())
	}

	// Batch timeout for the whole run; per-pair failures are absorbed inside.
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	created, err := c.PairingService.RunCycle(ctx, request.CycleID)
	if err != nil {
		log.Printf("❌ Pairing cycle %s failed: %v", request.CycleID, err)
		WriteServiceError(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"cycleId":        request.CycleID,
		"matchesCreated": created,
	})
}

// ExpireCycleHandler sweeps every still-open match of a closed cycle to
// expired. Idempotent; safe to re-run.
func (c *AdminController) ExpireCycleHandler(w http.ResponseWriter, r *http.Request) {
	var request struct {
		CycleID string `json:"cycleId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if request.CycleID == "" {
		http.Error(w, "Missing cycleId", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Minute)
	defer cancel()

	expired, err := c.MatchStore.ExpireCycle(ctx, request.CycleID)
	if err != nil {
		log.Printf("❌ Failed to expire cycle %s: %v", request.CycleID, err)
		WriteServiceError(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"cycleId": request.CycleID,
		"expired": expired,
	})
}

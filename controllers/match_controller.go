package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"aligned_server/models"
	"aligned_server/services"
)

// MatchController handles the member-facing Aligned endpoints.
type MatchController struct {
	DecisionService *services.DecisionService
}

// GetCurrentMatchHandler returns the requesting member's open match, shaped
// by the disclosure rules for their side of it.
func (c *MatchController) GetCurrentMatchHandler(w http.ResponseWriter, r *http.Request) {
	memberID := r.URL.Query().Get("memberId")
	if memberID == "" {
		http.Error(w, "Missing memberId parameter", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	view, err := c.DecisionService.CurrentMatch(ctx, memberID)
	if err != nil {
		log.Printf("❌ Failed to fetch current match for %s: %v", memberID, err)
		WriteServiceError(w, err)
		return
	}
	if view == nil {
		WriteJSONResponse(w, http.StatusNotFound, map[string]string{"error": "no active match this cycle"})
		return
	}

	WriteJSONResponse(w, http.StatusOK, view)
}

// DecideHandler records an accept/pass decision and returns the resulting
// disclosed view.
func (c *MatchController) DecideHandler(w http.ResponseWriter, r *http.Request) {
	var request struct {
		MemberID string `json:"memberId"`
		MatchID  string `json:"matchId"`
		Decision string `json:"decision"` // accept, pass
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Println("❌ Invalid request payload:", err)
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if request.MemberID == "" || request.MatchID == "" || request.Decision == "" {
		log.Println("⚠️ Missing required fields in decide request")
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		return
	}
	if !models.ValidDecision(request.Decision) {
		WriteServiceError(w, models.ErrInvalidDecision)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	view, err := c.DecisionService.Decide(ctx, request.MemberID, request.MatchID, request.Decision)
	if err != nil {
		log.Printf("❌ Failed to process decision by %s on %s: %v", request.MemberID, request.MatchID, err)
		WriteServiceError(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, view)
}

// GetMatchHistoryHandler lists the member's past and present matches, each
// shaped by the disclosure rules that applied when it closed.
func (c *MatchController) GetMatchHistoryHandler(w http.ResponseWriter, r *http.Request) {
	memberID := r.URL.Query().Get("memberId")
	if memberID == "" {
		http.Error(w, "Missing memberId parameter", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	views, err := c.DecisionService.MatchHistory(ctx, memberID)
	if err != nil {
		log.Printf("❌ Failed to fetch match history for %s: %v", memberID, err)
		WriteServiceError(w, err)
		return
	}
	if views == nil {
		views = []models.DisclosedMatchView{}
	}

	WriteJSONResponse(w, http.StatusOK, views)
}

package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"aligned_server/models"
	"aligned_server/services"

	"github.com/gorilla/mux"
)

// MemberController handles the directory admin surface. The matching engine
// itself only ever reads these profiles.
type MemberController struct {
	MemberDirectoryService *services.MemberDirectoryService
}

// UpsertMemberHandler creates or replaces a member profile.
func (c *MemberController) UpsertMemberHandler(w http.ResponseWriter, r *http.Request) {
	var profile models.MemberProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		log.Println("❌ Invalid request payload:", err)
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := c.MemberDirectoryService.UpsertProfile(ctx, &profile); err != nil {
		log.Printf("❌ Failed to upsert member %s: %v", profile.MemberID, err)
		WriteServiceError(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, map[string]string{
		"message":  "Profile saved successfully",
		"memberId": profile.MemberID,
	})
}

// GetMemberHandler fetches a member profile by id.
func (c *MemberController) GetMemberHandler(w http.ResponseWriter, r *http.Request) {
	memberID := mux.Vars(r)["memberId"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	profile, err := c.MemberDirectoryService.GetProfile(ctx, memberID)
	if err != nil {
		log.Printf("❌ Failed to fetch member %s: %v", memberID, err)
		WriteServiceError(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, profile)
}

// DeleteMemberHandler removes a member profile from the directory.
func (c *MemberController) DeleteMemberHandler(w http.ResponseWriter, r *http.Request) {
	memberID := mux.Vars(r)["memberId"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := c.MemberDirectoryService.DeleteProfile(ctx, memberID); err != nil {
		log.Printf("❌ Failed to delete member %s: %v", memberID, err)
		WriteServiceError(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, map[string]string{
		"message":  "Profile deleted successfully",
		"memberId": memberID,
	})
}

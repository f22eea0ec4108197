package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"aligned_server/services"
)

// PhotoController issues presigned URLs for profile photo storage.
type PhotoController struct {
	PhotoService *services.PhotoService
}

// GenerateUploadURLHandler returns a presigned PUT URL for a new profile photo.
func (c *PhotoController) GenerateUploadURLHandler(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		MemberID string `json:"memberId"`
		FileType string `json:"fileType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Printf("❌ Error decoding request body: %v", err)
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if payload.MemberID == "" || payload.FileType == "" {
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	url, key, err := c.PhotoService.GenerateUploadURL(ctx, payload.MemberID, payload.FileType)
	if err != nil {
		log.Printf("❌ Error generating upload URL: %v", err)
		http.Error(w, "Failed to generate pre-signed URL", http.StatusInternalServerError)
		return
	}

	WriteJSONResponse(w, http.StatusOK, map[string]string{"url": url, "key": key})
}

// GenerateReadURLHandler returns a presigned GET URL for a stored photo key.
func (c *PhotoController) GenerateReadURLHandler(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Key == "" {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	url, err := c.PhotoService.GenerateReadURL(ctx, payload.Key)
	if err != nil {
		log.Printf("❌ Error generating read URL: %v", err)
		http.Error(w, "Failed to generate read pre-signed URL", http.StatusInternalServerError)
		return
	}

	WriteJSONResponse(w, http.StatusOK, map[string]string{"url": url})
}

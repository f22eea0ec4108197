package routes

import (
	"aligned_server/controllers"
	"aligned_server/services"

	"github.com/gorilla/mux"
)

// RegisterPhotoRoutes registers the presigned photo URL routes under `/api/photos`
func RegisterPhotoRoutes(router *mux.Router, photoService *services.PhotoService) {
	controller := &controllers.PhotoController{PhotoService: photoService}

	photoRouter := router.PathPrefix("/api/photos").Subrouter()
	photoRouter.HandleFunc("/upload-url", controller.GenerateUploadURLHandler).Methods("POST")
	photoRouter.HandleFunc("/read-url", controller.GenerateReadURLHandler).Methods("POST")
}

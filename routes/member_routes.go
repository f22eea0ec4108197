package routes

import (
	"aligned_server/controllers"
	"aligned_server/services"

	"github.com/gorilla/mux"
)

// RegisterMemberRoutes registers the directory admin routes under `/api/members`
func RegisterMemberRoutes(router *mux.Router, memberDirectoryService *services.MemberDirectoryService) {
	controller := &controllers.MemberController{MemberDirectoryService: memberDirectoryService}

	memberRouter := router.PathPrefix("/api/members").Subrouter()
	memberRouter.HandleFunc("", controller.UpsertMemberHandler).Methods("PUT")
	memberRouter.HandleFunc("/{memberId}", controller.GetMemberHandler).Methods("GET")
	memberRouter.HandleFunc("/{memberId}", controller.DeleteMemberHandler).Methods("DELETE")
}

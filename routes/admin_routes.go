package routes

import (
	"aligned_server/controllers"
	"aligned_server/services"

	"github.com/gorilla/mux"
)

// RegisterAdminRoutes registers the pairing-cycle ops routes under `/api/admin/aligned`
func RegisterAdminRoutes(router *mux.Router, pairingService *services.PairingService, matchStore services.MatchStore) {
	controller := &controllers.AdminController{PairingService: pairingService, MatchStore: matchStore}

	adminRouter := router.PathPrefix("/api/admin/aligned").Subrouter()
	adminRouter.HandleFunc("/run-cycle", controller.RunPairingCycleHandler).Methods("POST")
	adminRouter.HandleFunc("/expire-cycle", controller.ExpireCycleHandler).Methods("POST")
}

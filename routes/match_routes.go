package routes

import (
	"aligned_server/controllers"
	"aligned_server/middleware"
	"aligned_server/services"

	"github.com/gorilla/mux"
)

// RegisterMatchRoutes registers the member-facing Aligned routes under `/api/aligned`
func RegisterMatchRoutes(router *mux.Router, decisionService *services.DecisionService, throttle *middleware.Throttle) {
	controller := &controllers.MatchController{DecisionService: decisionService}

	alignedRouter := router.PathPrefix("/api/aligned").Subrouter()
	alignedRouter.HandleFunc("/current", controller.GetCurrentMatchHandler).Methods("GET")
	alignedRouter.HandleFunc("/history", controller.GetMatchHistoryHandler).Methods("GET")

	decideRouter := alignedRouter.PathPrefix("/decide").Subrouter()
	decideRouter.Use(throttle.Middleware)
	decideRouter.HandleFunc("", controller.DecideHandler).Methods("POST")
}

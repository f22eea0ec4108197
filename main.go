package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"aligned_server/middleware"
	"aligned_server/routes"
	"aligned_server/services"
	"aligned_server/socket"
	"aligned_server/utils"

	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

func main() {
	// Initialize DynamoDB client and service
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient()
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	// The realtime server doubles as the reveal notification emitter.
	// Runs for the life of the process; exit tears it down.
	socketServer := socket.NewServer()
	go func() {
		if err := socketServer.IO.Serve(); err != nil {
			log.Printf("❌ Socket server error: %v", err)
		}
	}()

	// Initialize Services
	matchStore := &services.MatchStoreService{Dynamo: dynamoService}
	memberDirectory := &services.MemberDirectoryService{Dynamo: dynamoService}
	decisionService := &services.DecisionService{
		Store:     matchStore,
		Directory: memberDirectory,
		Notifier:  socketServer,
	}
	pairingService := &services.PairingService{
		Store:     matchStore,
		Directory: memberDirectory,
		MinTier:   os.Getenv("MIN_PAIRING_TIER"),
	}
	photoService := services.NewPhotoService(services.InitializeS3Client())

	// Weekly pairing job: expire the previous cycle, then pair the current one
	cronSpec := os.Getenv("PAIRING_CRON")
	if cronSpec == "" {
		cronSpec = "0 9 * * MON"
	}
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		now := time.Now()
		if _, err := matchStore.ExpireCycle(ctx, utils.PreviousCycleID(now)); err != nil {
			log.Printf("❌ Failed to expire previous cycle: %v", err)
		}
		if _, err := pairingService.RunCycle(ctx, utils.CycleID(now)); err != nil {
			log.Printf("❌ Pairing cycle failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("Invalid PAIRING_CRON %q: %v", cronSpec, err)
	}
	scheduler.Start()
	log.Printf("Pairing job scheduled with spec %q", cronSpec)

	// Set up the server port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Using server port: %s\n", port)

	// Initialize the router
	r := mux.NewRouter()
	r.Handle("/socket.io/", socketServer.IO)

	// Register routes
	routes.RegisterRoutes(r)
	decideThrottle := middleware.NewThrottle(rate.Every(time.Second), 5)
	routes.RegisterMatchRoutes(r, decisionService, decideThrottle)
	routes.RegisterAdminRoutes(r, pairingService, matchStore)
	routes.RegisterMemberRoutes(r, memberDirectory)
	routes.RegisterPhotoRoutes(r, photoService)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", port)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler))
}

package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/cors"

	"github.com/pworkhq/portal/database"
	"github.com/pworkhq/portal/handlers"
	"github.com/pworkhq/portal/services"
)

func main() {
	// Load environment variables from .env file
	err := services.LoadEnv(".env")
	if err != nil {
		fmt.Printf("No .env file loaded: %v\n", err)
	}

	// Initialize database
	db, err := database.InitDB(os.Getenv("DATABASE_PATH"))
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	store := database.NewStore(db)
	if err := store.Seed(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	// Initialize services
	authService := services.NewAuthService()
	mailer := services.NewMailer()

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, store)
	configHandler := handlers.NewConfigHandler(store, hub)
	userHandler := handlers.NewUserHandler(store, authService, hub, mailer)
	projectHandler := handlers.NewProjectHandler(store, hub, mailer)
	boardHandler := handlers.NewBoardHandler(store)
	reportHandler := handlers.NewReportHandler(store)
	wsHandler := handlers.NewWSHandler(store, hub)
	authMiddleware := handlers.NewAuthMiddleware(authService, store)
	guard := handlers.NewRouteGuard(store)

	// Setup router
	r := mux.NewRouter()

	// Auth routes
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/auth/verify", authHandler.VerifyToken).Methods("GET")

	// Protected routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware.Auth)

	api.HandleFunc("/auth/me", authHandler.Me).Methods("GET")

	api.HandleFunc("/dashboard", configHandler.Dashboard).Methods("GET")
	api.HandleFunc("/config", configHandler.GetConfig).Methods("GET")
	api.HandleFunc("/config", configHandler.PatchConfig).Methods("PATCH")

	api.HandleFunc("/users", userHandler.ListUsers).Methods("GET")
	api.HandleFunc("/users", userHandler.CreateUser).Methods("POST")
	api.HandleFunc("/users/{id}", userHandler.UpdateUser).Methods("PATCH")
	api.HandleFunc("/users/{id}", userHandler.DeleteUser).Methods("DELETE")

	api.HandleFunc("/projects", projectHandler.ListProjects).Methods("GET")
	api.HandleFunc("/projects", projectHandler.CreateProject).Methods("POST")
	api.HandleFunc("/projects/{id}", projectHandler.GetProject).Methods("GET")
	api.HandleFunc("/projects/{id}", projectHandler.UpdateProject).Methods("PATCH")
	api.HandleFunc("/projects/{id}", projectHandler.DeleteProject).Methods("DELETE")

	api.HandleFunc("/projects/{id}/columns", projectHandler.AddColumn).Methods("POST")
	api.HandleFunc("/projects/{id}/columns/{columnId}", projectHandler.UpdateColumn).Methods("PATCH")
	api.HandleFunc("/projects/{id}/columns/{columnId}", projectHandler.DeleteColumn).Methods("DELETE")

	api.HandleFunc("/projects/{id}/groups", projectHandler.AddGroup).Methods("POST")
	api.HandleFunc("/projects/{id}/groups/{groupId}", projectHandler.UpdateGroup).Methods("PATCH")
	api.HandleFunc("/projects/{id}/groups/{groupId}", projectHandler.DeleteGroup).Methods("DELETE")

	api.HandleFunc("/projects/{id}/automations", projectHandler.AddAutomation).Methods("POST")
	api.HandleFunc("/projects/{id}/automations/{ruleId}", projectHandler.DeleteAutomation).Methods("DELETE")

	api.HandleFunc("/projects/{id}/items", projectHandler.AddItem).Methods("POST")
	api.HandleFunc("/items/{itemId}", projectHandler.UpdateItem).Methods("PATCH")
	api.HandleFunc("/items/{itemId}", projectHandler.DeleteItem).Methods("DELETE")
	api.HandleFunc("/items/{itemId}/comments", projectHandler.AddComment).Methods("POST")

	api.HandleFunc("/projects/{id}/board", guard.Guard("tickets", boardHandler.GetBoard)).Methods("GET")
	api.HandleFunc("/reports/activity", guard.Guard("reports", reportHandler.Activity)).Methods("GET")
	api.HandleFunc("/reports/chart", guard.Guard("reports", reportHandler.Chart)).Methods("GET")
	api.HandleFunc("/reports/chart/csv", guard.Guard("reports", reportHandler.ChartCSV)).Methods("GET")

	// WebSocket route for real-time snapshots
	api.HandleFunc("/ws", wsHandler.Subscribe)

	// Setup CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // In production, change to your domain
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      c.Handler(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Server starting on port %s", port)
	log.Fatal(server.ListenAndServe())
}

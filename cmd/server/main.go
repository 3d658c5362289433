package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/examtopics-practice/backend/internal/api"
	"github.com/examtopics-practice/backend/internal/auth"
	"github.com/examtopics-practice/backend/internal/database"
	"github.com/examtopics-practice/backend/internal/middleware"
	"github.com/examtopics-practice/backend/internal/remote"
	"github.com/examtopics-practice/backend/internal/treedb"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("[server] no .env file loaded: %v", err)
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// The progress tree shares the main database. The listener needs its own
	// connection string for LISTEN/NOTIFY fan-out.
	tree, err := treedb.NewPostgres(db, database.DSN())
	if err != nil {
		log.Fatalf("Failed to initialize progress tree: %v", err)
	}
	defer tree.Close()

	mirror := remote.New(tree)

	authHandler := auth.NewHandler(db)
	apiHandler := api.NewHandler(mirror)

	r := mux.NewRouter()
	v1 := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	v1.HandleFunc("/auth/guest", authHandler.Guest).Methods("POST")

	// Protected routes
	protected := v1.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"Authentication required"}`))
			return
		}
		authHandler.GetCurrentUser(w, r, userID)
	}).Methods("GET")

	protected.HandleFunc("/progress/merge", apiHandler.MergeProgress).Methods("POST")
	protected.HandleFunc("/progress/{examID}", apiHandler.GetProgress).Methods("GET")
	protected.HandleFunc("/progress/{examID}", apiHandler.ClearProgress).Methods("DELETE")
	protected.HandleFunc("/progress/{examID}/stream", apiHandler.StreamProgress).Methods("GET")
	protected.HandleFunc("/progress/{examID}/questions/{questionID}/answer", apiHandler.SaveAnswer).Methods("POST")
	protected.HandleFunc("/progress/{examID}/questions/{questionID}/bookmark", apiHandler.ToggleBookmark).Methods("POST")
	protected.HandleFunc("/settings/{examID}", apiHandler.GetSettings).Methods("GET")
	protected.HandleFunc("/settings/{examID}", apiHandler.PutSettings).Methods("PUT")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

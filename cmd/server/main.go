package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/emporia-shop/emporia-backend/internal/config"
	"github.com/emporia-shop/emporia-backend/internal/database"
	"github.com/emporia-shop/emporia-backend/internal/handlers"
	"github.com/emporia-shop/emporia-backend/internal/routes"
	"github.com/emporia-shop/emporia-backend/internal/services"
	"github.com/emporia-shop/emporia-backend/pkg/utils"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	if cfg.IsProduction() && cfg.SessionSecret == "change-me-in-production" {
		log.Fatal("SESSION_SECRET must be set in production")
	}

	// Connect to PostgreSQL (catalog store)
	log.Printf("Connecting to PostgreSQL...")
	db, err := database.ConnectPostgres(cfg.PostgresURI)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL: ", err)
	}
	defer db.Close()
	log.Println("✅ Connected to PostgreSQL")

	// Connect to Redis (catalog cache)
	log.Printf("Connecting to Redis...")
	rdb, err := database.ConnectRedis(cfg.RedisURI)
	if err != nil {
		log.Fatal("Failed to connect to Redis: ", err)
	}
	defer rdb.Close()
	log.Println("✅ Connected to Redis")

	// Connect to MongoDB (credential store)
	log.Printf("Connecting to MongoDB...")
	mongoClient, mongoDB, err := database.ConnectMongo(cfg.MongoURI)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB: ", err)
	}
	defer database.DisconnectMongo(mongoClient)
	log.Println("✅ Connected to MongoDB")

	// Credential store with its unique username index
	credentials := services.NewCredentialStore(mongoDB)
	if err := credentials.EnsureIndexes(context.Background()); err != nil {
		log.Fatal("Failed to ensure user indexes: ", err)
	}

	// Cloudinary is optional; without it, item creation still works but
	// feature image uploads are rejected
	var uploads *services.CloudinaryService
	if cfg.CloudinaryName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		uploads, err = services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			log.Printf("Warning: Failed to initialize Cloudinary: %v", err)
			log.Println("File uploads will not be available")
			uploads = nil
		} else {
			log.Println("✅ Cloudinary service initialized")
		}
	} else {
		log.Println("Warning: Cloudinary credentials not found. File uploads will not be available")
	}

	auth := services.NewAuthService(credentials, utils.BcryptHasher{})
	sessions := services.NewSessionManager(
		cfg.SessionSecret,
		cfg.SessionDuration,
		cfg.SessionActiveDuration,
		cfg.SessionCookieName,
		cfg.IsProduction(),
	)

	catalog := services.NewCatalogStore(db)
	cache := services.NewCache(rdb)

	authHandler := handlers.NewAuthHandler(auth, sessions)
	catalogHandler := handlers.NewCatalogHandler(catalog, cache, uploads)

	// Setup router
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.SetupRoutes(r, authHandler, catalogHandler, sessions, cfg.LoginPath)

	log.Printf("🚀 Emporia backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}

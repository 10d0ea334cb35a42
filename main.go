package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tutorLinkAPI/handlers"
	"tutorLinkAPI/internal/notification"
	"tutorLinkAPI/middleware"
	"tutorLinkAPI/services"

	_ "net/http/pprof"
)

var (
	dbPool              *pgxpool.Pool
	notificationService *services.NotificationService
	membershipService   *services.MembershipService
	storageService      *services.FirebaseStorageService
	purchaseService     *services.PurchaseService
	userService         *services.UserService
	reviewService       *services.ReviewService
	moderationService   *services.ModerationService
	likeOverlay         *services.LikeOverlayService
	fcmService          *notification.FCMService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to Postgres")

	notificationService = services.NewNotificationService(dbPool)
	membershipService = services.NewMembershipService(dbPool, notificationService)
	userService = services.NewUserService(dbPool)
	reviewService = services.NewReviewService(dbPool)
	moderationService = services.NewModerationService(reviewService)
	likeOverlay = services.NewLikeOverlayService()

	storageService, err = services.NewFirebaseStorageService("./serviceAccountKey.json")
	if err != nil {
		log.Fatal("Failed to initialize proof storage:", err)
	}
	purchaseService = services.NewPurchaseService(storageService, membershipService)

	fcmService, err = notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		notificationService.SetPushProvider(fcmService)
		log.Println("FCM Push Provider initialized successfully")
	}

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	// Initialize handlers
	membershipHandler := handlers.NewMembershipHandler(membershipService)
	userHandler := handlers.NewUserHandler(userService)
	purchaseHandler := handlers.NewPurchaseHandler(purchaseService)
	reviewHandler := handlers.NewReviewHandler(reviewService, moderationService, likeOverlay)
	adminHandler := handlers.NewAdminHandler(membershipService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "tutorLink-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/membership/plans", membershipHandler.GetPlans).Methods("GET")

	// Review listing is public; ownership affordances appear for logged-in users.
	listReviews := middleware.OptionalAuthMiddleware(http.HandlerFunc(reviewHandler.ListTutorReviews))
	api.Handle("/tutors/{tutorID}/reviews", listReviews).Methods("GET")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/me", userHandler.GetMe).Methods("GET")
	protected.HandleFunc("/me", userHandler.UpdateMe).Methods("PUT")

	protected.HandleFunc("/membership", membershipHandler.GetCurrentMembership).Methods("GET")

	protected.HandleFunc("/membership/purchase", purchaseHandler.OpenSession).Methods("POST")
	protected.HandleFunc("/membership/purchase", purchaseHandler.GetSession).Methods("GET")
	protected.HandleFunc("/membership/purchase", purchaseHandler.Dismiss).Methods("DELETE")
	protected.HandleFunc("/membership/purchase/channel", purchaseHandler.SelectChannel).Methods("PUT")
	protected.HandleFunc("/membership/purchase/qr", purchaseHandler.GetChannelQR).Methods("GET")
	protected.HandleFunc("/membership/purchase/proof", purchaseHandler.AttachProof).Methods("POST")
	protected.HandleFunc("/membership/purchase/submit", purchaseHandler.Submit).Methods("POST")
	protected.HandleFunc("/membership/purchase/acknowledge", purchaseHandler.Acknowledge).Methods("POST")

	protected.HandleFunc("/tutors/{tutorID}/reviews", reviewHandler.CreateReview).Methods("POST")
	protected.HandleFunc("/reviews/{reviewID}", reviewHandler.UpdateReview).Methods("PUT")
	protected.HandleFunc("/reviews/{reviewID}", reviewHandler.DeleteReview).Methods("DELETE")
	protected.HandleFunc("/reviews/{reviewID}/like", reviewHandler.ToggleLike).Methods("POST")

	protected.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
	protected.HandleFunc("/notifications/unread-count", notificationHandler.GetUnreadCount).Methods("GET")
	protected.HandleFunc("/notifications/{notificationID}/read", notificationHandler.MarkAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")

	// -------------------------------------------------------------------------
	// ADMIN ROUTES (PAYMENT REVIEW QUEUE)
	// -------------------------------------------------------------------------
	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AdminOnlyMiddleware)

	admin.HandleFunc("/memberships/pending", adminHandler.ListPendingMemberships).Methods("GET")
	admin.HandleFunc("/memberships/{membershipID}/approve", adminHandler.ApproveMembership).Methods("POST")
	admin.HandleFunc("/memberships/{membershipID}/reject", adminHandler.RejectMembership).Methods("POST")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	notificationService.Stop()

	log.Println("Server shutdown complete")
}

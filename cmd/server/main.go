package main

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkozic/askbox/internal/config"
	"github.com/mkozic/askbox/internal/database"
	postgresrepo "github.com/mkozic/askbox/internal/repository/postgres"
	"github.com/mkozic/askbox/internal/service"
	"github.com/mkozic/askbox/internal/transport/http/handlers"
	"github.com/mkozic/askbox/internal/transport/http/middleware"
	"github.com/mkozic/askbox/pkg/logger"
)

func main() {
	logger.Init()
	defer logger.Sync()

	cfg := config.Load()

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		logger.Fatalf("connecting to database: %v", err)
	}
	defer pool.Close()
	logger.Infof("Connected to database")

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	friendRepo := postgresrepo.NewFriendshipRepo(pool)
	questionRepo := postgresrepo.NewQuestionRepo(pool)
	answerRepo := postgresrepo.NewAnswerRepo(pool)

	// Services
	gate := service.NewGate(friendRepo, questionRepo)
	links := service.NewLinkAllocator(questionRepo)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	userService := service.NewUserService(userRepo)
	friendService := service.NewFriendService(friendRepo, userRepo, gate)
	questionService := service.NewQuestionService(questionRepo, answerRepo, userRepo, gate, links)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	friendHandler := handlers.NewFriendHandler(friendService)
	questionHandler := handlers.NewQuestionHandler(questionService)

	// Auth middleware
	auth := middleware.Auth(authService)
	metrics := middleware.InitMetrics()

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /auth/register", authHandler.Register)
	mux.HandleFunc("POST /auth/login", authHandler.Login)
	mux.HandleFunc("GET /link/{publicLink}", questionHandler.GetByPublicLink)

	// Protected - Users
	mux.Handle("GET /user/me", auth(http.HandlerFunc(userHandler.Me)))
	mux.Handle("PUT /user/me", auth(http.HandlerFunc(userHandler.UpdateMe)))
	mux.Handle("GET /user/search", auth(http.HandlerFunc(userHandler.Search)))
	mux.Handle("GET /user/{username}", auth(http.HandlerFunc(userHandler.GetProfile)))

	// Protected - Friends
	mux.Handle("GET /friend/request/me", auth(http.HandlerFunc(friendHandler.ListMyRequests)))
	mux.Handle("GET /friend/{username}/friends", auth(http.HandlerFunc(friendHandler.ListFriends)))
	mux.Handle("POST /friend/request/{username}", auth(http.HandlerFunc(friendHandler.SendRequest)))
	mux.Handle("POST /friend/act/{requestId}/{action}", auth(http.HandlerFunc(friendHandler.Respond)))
	mux.Handle("POST /friend/remove/{friendId}", auth(http.HandlerFunc(friendHandler.Remove)))

	// Protected - Questions
	mux.Handle("GET /question/{$}", auth(http.HandlerFunc(questionHandler.List)))
	mux.Handle("POST /question/{$}", auth(http.HandlerFunc(questionHandler.Create)))
	mux.Handle("GET /question/{questionId}", auth(http.HandlerFunc(questionHandler.Get)))
	mux.Handle("GET /question/{questionId}/answers", auth(http.HandlerFunc(questionHandler.ListAnswers)))
	mux.Handle("POST /question/{questionId}/answer", auth(http.HandlerFunc(questionHandler.SubmitAnswer)))

	// Start server with CORS
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	logger.Infof("Starting server on %s", addr)
	logger.Fatalf("server stopped: %v", http.ListenAndServe(addr, middleware.CORS(metrics.Count(mux))))
}

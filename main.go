package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/rs/cors"

	"project-service/bootstrap"
	"project-service/events"
	"project-service/handlers"
	"project-service/security"
	"project-service/service"
	"project-service/store/mongostore"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	godotenv.Load()

	logger := log.New(os.Stdout, "[project-service] ", log.LstdFlags)

	mongoURI := getEnv("MONGO_URI", "mongodb://localhost:27017")
	dbName := getEnv("MONGO_DB", "taskmanagedb")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	client, err := mongostore.Connect(ctx, mongoURI)
	cancel()
	if err != nil {
		logger.Fatalf("Error connecting to MongoDB: %v", err)
	}
	defer mongostore.Disconnect(context.Background(), client)

	// Events are best-effort: a missing broker must not keep the API down.
	var publisher *events.Publisher
	if nc, err := nats.Connect(getEnv("NATS_URL", nats.DefaultURL)); err != nil {
		logger.Printf("NATS unavailable, continuing without events: %v", err)
		publisher = events.NewPublisher(nil, logger)
	} else {
		defer nc.Close()
		publisher = events.NewPublisher(nc, logger)
	}

	projectRepo := mongostore.NewProjectRepo(client, dbName, logger)
	userRepo := mongostore.NewUserRepo(client, dbName, logger)

	bootstrap.Seed(context.Background(), logger, userRepo, projectRepo)

	projectService := service.NewProjectService(projectRepo, userRepo, publisher, logger)
	userService := service.NewUserService(userRepo, projectRepo, logger)
	authService := service.NewAuthService(userRepo, logger)

	projectsHandler := handlers.NewProjectsHandler(logger, projectService)
	usersHandler := handlers.NewUsersHandler(logger, userService)
	authHandler := handlers.NewAuthHandler(logger, authService)
	healthHandler := handlers.NewHealthHandler(client)

	router := mux.NewRouter()
	router.HandleFunc("/api/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST")
	router.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")

	router.HandleFunc("/api/projects/available",
		security.Authenticate(security.RoleRequired(projectsHandler.GetAvailableProjects, "teamlead"))).Methods("GET")
	router.HandleFunc("/api/projects/mine",
		security.Authenticate(security.RoleRequired(projectsHandler.GetMyProjects, "teamlead"))).Methods("GET")
	router.HandleFunc("/api/projects",
		security.Authenticate(security.RoleRequired(projectsHandler.CreateProject, "admin"))).Methods("POST")
	router.HandleFunc("/api/projects/{projectId}/pick",
		security.Authenticate(security.RoleRequired(projectsHandler.PickProject, "teamlead"))).Methods("PUT")
	router.HandleFunc("/api/projects/{projectId}/release",
		security.Authenticate(security.RoleRequired(projectsHandler.ReleaseProject, "teamlead"))).Methods("PUT")
	router.HandleFunc("/api/projects/{projectId}/assign-employees",
		security.Authenticate(security.RoleRequired(projectsHandler.AssignEmployees, "teamlead"))).Methods("PUT")
	router.HandleFunc("/api/projects/{projectId}/employees/{employeeId}",
		security.Authenticate(security.RoleRequired(projectsHandler.RemoveEmployee, "teamlead"))).Methods("DELETE")

	router.HandleFunc("/api/users/employees",
		security.Authenticate(security.RoleRequired(usersHandler.GetEmployees, "admin", "teamlead"))).Methods("GET")
	router.HandleFunc("/api/users/employees/available",
		security.Authenticate(security.RoleRequired(usersHandler.GetAvailableEmployees, "teamlead"))).Methods("GET")
	router.HandleFunc("/api/users/team/my-team",
		security.Authenticate(security.RoleRequired(usersHandler.GetMyTeam, "teamlead"))).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{getEnv("FRONTEND_URL", "http://localhost:5173")},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	handler := gorillahandlers.RecoveryHandler()(
		gorillahandlers.LoggingHandler(os.Stdout, c.Handler(router)))

	server := &http.Server{
		Handler:      handler,
		Addr:         ":" + getEnv("PORT", "5000"),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	go func() {
		logger.Printf("Project service started on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Error starting project service: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Println("Shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("Error during shutdown: %v", err)
	}
}

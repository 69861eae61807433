package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"growbrain/internal/config"
	"growbrain/internal/docstore"
	"growbrain/internal/handlers"
	"growbrain/internal/repository"
	"growbrain/internal/security"
	"growbrain/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Open the document store (memory, sqlite, postgres, mysql or mongo)
	store, err := docstore.InitializeWithConfig(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to open document store: %v", err)
	}
	defer store.Close()

	log.Printf("Document store ready (type: %s)", cfg.DocstoreType)

	// Initialize repositories
	teacherRepo := repository.NewTeacherRepository(store)
	studentRepo := repository.NewStudentRepository(store)
	recordRepo := repository.NewRecordRepository(store)

	// Initialize services
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	analyticsService := service.NewAnalyticsService(studentRepo, recordRepo)
	reportService := service.NewReportService(studentRepo, recordRepo, emailService)

	// Initialize handlers
	secret := []byte(cfg.SessionSecret)
	limiter := security.NewRateLimiter(30, time.Minute)
	middleware := handlers.NewMiddleware(secret, limiter)
	dashboardHandler := handlers.NewDashboardHandler(analyticsService)
	activitiesHandler := handlers.NewActivitiesHandler(studentRepo, recordRepo, 10)
	recordsHandler := handlers.NewRecordsHandler(teacherRepo, studentRepo, recordRepo, secret, cfg.SessionDuration)
	reportsHandler := handlers.NewReportsHandler(reportService, teacherRepo)

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/dashboard", middleware.WithTeacherScope(dashboardHandler.GetDashboard))
	mux.HandleFunc("GET /api/activities", middleware.WithTeacherScope(activitiesHandler.GetActivities))
	mux.HandleFunc("GET /api/activities/export", middleware.WithTeacherScope(activitiesHandler.ExportActivities))
	mux.HandleFunc("GET /api/students", middleware.WithTeacherScope(recordsHandler.GetStudents))
	mux.HandleFunc("GET /api/students/{id}/records", middleware.WithTeacherScope(recordsHandler.GetStudentRecords))
	mux.HandleFunc("GET /api/reports/{studentId}", middleware.WithTeacherScope(reportsHandler.GetReport))
	mux.HandleFunc("GET /api/reports/{studentId}/csv", middleware.WithTeacherScope(reportsHandler.DownloadReportCSV))
	mux.HandleFunc("POST /api/reports/{studentId}/notify", middleware.RateLimit(middleware.WithTeacherScope(reportsHandler.NotifyReport)))
	mux.HandleFunc("POST /api/scope", middleware.RateLimit(recordsHandler.SelectScope))
	mux.HandleFunc("DELETE /api/scope", recordsHandler.ClearScope)

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

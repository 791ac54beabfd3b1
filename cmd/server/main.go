// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/blackleo/outreach-backend/internal/config"
	"github.com/blackleo/outreach-backend/internal/controller"
	"github.com/blackleo/outreach-backend/internal/db"
	"github.com/blackleo/outreach-backend/internal/mail"
	"github.com/blackleo/outreach-backend/internal/metrics"
	"github.com/blackleo/outreach-backend/internal/notify"
	"github.com/blackleo/outreach-backend/internal/queue"
	"github.com/blackleo/outreach-backend/internal/repository"
	"github.com/blackleo/outreach-backend/internal/service"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// Database
	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer conn.Close()
	logger.Info("connected to database")

	// Metrics
	metrics.Init()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: metricsMux,
	}
	go func() {
		logger.Info("metrics server started", zap.String("port", cfg.MetricsPort))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("metrics server error", zap.Error(err))
		}
	}()

	// Event feed
	var events queue.EventPublisher = queue.NopPublisher{}
	if cfg.AMQPURL != "" {
		pub, err := queue.NewAMQPPublisher(cfg.AMQPURL)
		if err != nil {
			logger.Fatal("failed to connect to event broker", zap.Error(err))
		}
		defer pub.Close()
		events = pub
		logger.Info("event feed enabled")
	}

	// Mail provider
	var sender mail.Sender
	switch cfg.MailProvider {
	case "smtp":
		sender = &mail.SMTPSender{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
		}
	default:
		sender = mail.NewAPIClient(cfg.MailAPIURL)
	}

	confirmer := notify.NewHTTPConfirmer(cfg.NotifyAPIURL)

	// Repositories
	campaignRepo := &repository.CampaignRepository{DB: conn}
	batchRepo := &repository.BatchRepository{DB: conn}
	companyRepo := &repository.CompanyRepository{DB: conn}
	contactListRepo := &repository.ContactListRepository{DB: conn}

	// Services
	sendService := &service.SendService{
		CampaignRepo: campaignRepo,
		BatchRepo:    batchRepo,
		Mailer:       sender,
		Events:       events,
		Log:          logger,
		BaseURL:      cfg.BaseURL,
		ReplyTo:      cfg.ReplyTo,
		BatchSize:    cfg.BatchSize,
		BatchDelay:   time.Duration(cfg.BatchDelayMS) * time.Millisecond,
	}
	trackingService := &service.TrackingService{
		BatchRepo: batchRepo,
		Events:    events,
		Log:       logger,
	}

	// Controllers
	campaignController := &controller.CampaignController{
		CampaignRepo: campaignRepo,
		BatchRepo:    batchRepo,
	}
	emailController := &controller.EmailController{
		SendService: sendService,
		Tracking:    trackingService,
		BatchRepo:   batchRepo,
		Log:         logger,
	}
	webhookController := &controller.WebhookController{
		Tracking:  trackingService,
		Confirmer: confirmer,
		Log:       logger,
	}
	contactListController := &controller.ContactListController{Repo: contactListRepo}
	companyController := &controller.CompanyController{Repo: companyRepo}

	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"message":"API is working fine!"}`))
	})

	r.Route("/campaign", func(r chi.Router) {
		r.Post("/", campaignController.CreateCampaign)
		r.Get("/", campaignController.ListCampaigns)
		r.Get("/{campaignId}", campaignController.GetCampaignReport)
		r.Delete("/{campaignId}", campaignController.DeleteCampaign)
	})

	r.Route("/email", func(r chi.Router) {
		r.Post("/send", emailController.SendEmail)
		r.Post("/receive", webhookController.InboundReply)
		r.Get("/report/{id}", emailController.BatchReport)
		r.Get("/track", emailController.TrackOpen)
		r.Post("/track", webhookController.DeliveryStatus)
	})

	r.Post("/sns-email-events", webhookController.DeliveryStatus)

	r.Route("/contact-list", func(r chi.Router) {
		r.Post("/", contactListController.CreateContactList)
		r.Get("/", contactListController.GetAllContactLists)
		r.Get("/{id}", contactListController.GetContactListsByCompany)
		r.Delete("/{id}", contactListController.DeleteContactList)
	})

	r.Route("/clients", func(r chi.Router) {
		r.Post("/", companyController.AddClient)
		r.Get("/", companyController.GetClients)
	})

	apiServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("api server started", zap.String("port", cfg.Port))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("api server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("shutdown signal received", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown failed", zap.Error(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics shutdown failed", zap.Error(err))
	}

	logger.Info("shutdown complete")
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"github.com/xdrive/xdrive-logistics/internal/handlers"
	"github.com/xdrive/xdrive-logistics/internal/mailer"
	"github.com/xdrive/xdrive-logistics/internal/payments"
	"github.com/xdrive/xdrive-logistics/internal/repository"
	"github.com/xdrive/xdrive-logistics/internal/service"
	"github.com/xdrive/xdrive-logistics/pkg/config"
	"github.com/xdrive/xdrive-logistics/pkg/database"
	"github.com/xdrive/xdrive-logistics/pkg/events"
	"github.com/xdrive/xdrive-logistics/pkg/logger"
	mw "github.com/xdrive/xdrive-logistics/pkg/middleware"
)

func main() {
	cfg := config.Load()

	// Connect to database
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database.URL, database.Options{
		MaxConns:    cfg.Database.MaxConns,
		MinConns:    cfg.Database.MinConns,
		MaxLifetime: cfg.Database.MaxLifetime,
	})
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Connect to Redis for login rate limiting
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Error("Invalid Redis URL", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	// Connect to event bus; fall back to a no-op publisher so the API
	// keeps working when NATS is down or not deployed.
	var eventBus events.Publisher
	if bus, err := events.NewNATSEventBus(cfg.NATS.URL); err != nil {
		logger.Warn("NATS unavailable, events disabled", "error", err)
		eventBus = events.NoopPublisher{}
	} else {
		eventBus = bus
	}
	defer eventBus.Close()

	mailSvc := buildMailer(cfg)
	stripeClient := payments.NewClient(cfg.Stripe.SecretKey, cfg.Stripe.Currency)

	// Repositories
	userRepo := repository.NewUserRepository(pool)
	verifyRepo := repository.NewVerifyRepository(pool)
	shipmentRepo := repository.NewShipmentRepository(pool)
	offerRepo := repository.NewOfferRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	invoiceRepo := repository.NewInvoiceRepository(pool)
	feedbackRepo := repository.NewFeedbackRepository(pool)
	reportRepo := repository.NewReportRepository(pool)
	rateLimitRepo := repository.NewRateLimitRepository(redisClient)

	// Services
	authService := service.NewAuthService(userRepo, verifyRepo, mailSvc, eventBus, cfg)
	shipmentService := service.NewShipmentService(shipmentRepo, eventBus)
	offerService := service.NewOfferService(offerRepo, shipmentRepo, eventBus)
	bookingService := service.NewBookingService(bookingRepo, eventBus)
	invoiceService := service.NewInvoiceService(invoiceRepo, bookingRepo, stripeClient, eventBus)
	feedbackService := service.NewFeedbackService(feedbackRepo)
	reportService := service.NewReportService(reportRepo)

	h := handlers.New(
		authService,
		shipmentService,
		offerService,
		bookingService,
		invoiceService,
		feedbackService,
		reportService,
		rateLimitRepo,
		cfg,
	)

	// Setup router
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Recover)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Server.BaseURL, "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(mw.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(h.AuthRateLimit())
				r.Post("/register", h.Register)
				r.Post("/login", h.Login)
				r.Post("/resend-verification", h.ResendVerification)
			})
			r.Get("/verify-email", h.VerifyEmail)
			r.Group(func(r chi.Router) {
				r.Use(h.RequireJWT())
				r.Get("/me", h.Me)
			})
		})

		r.Route("/shipments", func(r chi.Router) {
			r.Get("/", h.ListShipments)
			r.Get("/{id}", h.GetShipment)
			r.Group(func(r chi.Router) {
				r.Use(h.RequireJWT("shipper"))
				r.Post("/", h.CreateShipment)
			})
			r.Group(func(r chi.Router) {
				r.Use(h.RequireJWT())
				r.Post("/{id}/cancel", h.CancelShipment)
				r.Post("/{id}/complete", h.CompleteShipment)
			})
		})

		r.Route("/offers", func(r chi.Router) {
			r.Get("/", h.ListOffers)
			r.Group(func(r chi.Router) {
				r.Use(h.RequireJWT("driver"))
				r.Post("/", h.CreateOffer)
			})
			r.Group(func(r chi.Router) {
				r.Use(h.RequireJWT("shipper"))
				r.Post("/{id}/accept", h.AcceptOffer)
				r.Post("/{id}/reject", h.RejectOffer)
			})
		})

		// Back-office surface: operational bookings, invoicing, reporting.
		r.Route("/bookings", func(r chi.Router) {
			r.Use(h.RequireJWT("admin"))
			r.Get("/", h.ListBookings)
			r.Post("/", h.CreateBooking)
			r.Get("/{id}", h.GetBooking)
			r.Patch("/{id}", h.UpdateBooking)
			r.Delete("/{id}", h.DeleteBooking)
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Use(h.RequireJWT("admin"))
			r.Get("/", h.ListInvoices)
			r.Post("/", h.CreateInvoice)
			r.Get("/{id}", h.GetInvoice)
			r.Patch("/{id}/status", h.UpdateInvoiceStatus)
		})

		r.Route("/feedback", func(r chi.Router) {
			r.Get("/", h.ListFeedback)
			r.Group(func(r chi.Router) {
				r.Use(h.RequireJWT())
				r.Post("/", h.CreateFeedback)
			})
		})

		r.Route("/reports", func(r chi.Router) {
			r.Use(h.RequireJWT("admin"))
			r.Get("/gross-margin", h.GrossMargin)
			r.Get("/bookings-by-status", h.BookingsByStatus)
			r.Get("/revenue-by-month", h.RevenueByMonth)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting API server", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func buildMailer(cfg *config.Config) mailer.Service {
	if cfg.Email.DevMode {
		return mailer.NewDevMailer()
	}
	if cfg.Email.MailerSendKey != "" {
		return mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromEmail)
	}
	return mailer.NewSMTPMailer(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPFrom,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPass,
		cfg.Email.SMTPUseTLS,
	)
}

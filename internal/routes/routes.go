package routes

import (
	"log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/salaohub/salon-scheduler/internal/audit"
	"github.com/salaohub/salon-scheduler/internal/bot"
	"github.com/salaohub/salon-scheduler/internal/config"
	"github.com/salaohub/salon-scheduler/internal/convstore"
	"github.com/salaohub/salon-scheduler/internal/gateway"
	"github.com/salaohub/salon-scheduler/internal/handlers"
	infraRepo "github.com/salaohub/salon-scheduler/internal/infra/repository"
	"github.com/salaohub/salon-scheduler/internal/interaction"
	"github.com/salaohub/salon-scheduler/internal/llm"
	"github.com/salaohub/salon-scheduler/internal/middleware"
	"github.com/salaohub/salon-scheduler/internal/payments"
	"github.com/salaohub/salon-scheduler/internal/storage"
	ucBooking "github.com/salaohub/salon-scheduler/internal/usecase/booking"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) {

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// 🔧 INFRA (SINGLETONS)
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db)
	botRepo := infraRepo.NewBotGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	recorder := interaction.NewRecorder(db)

	gw := gateway.NewClient(cfg)
	llmClient := llm.NewClient(cfg)
	convStore := convstore.NewRedisStore(cfg)
	uploader := storage.NewUploader(cfg)

	paymentSvc, err := payments.NewService(cfg)
	if err != nil {
		log.Fatalf("mercadopago: %v", err)
	}

	// ======================================================
	// 🧠 USE CASES — AGENDAMENTO
	// ======================================================
	createAppointmentUC := ucBooking.NewCreateAppointment(bookingRepo, auditDispatcher)
	cancelAppointmentUC := ucBooking.NewCancelAppointment(bookingRepo, auditDispatcher)
	completeAppointmentUC := ucBooking.NewCompleteAppointment(bookingRepo, auditDispatcher)
	availabilityUC := ucBooking.NewGetAvailability(bookingRepo)
	listAppointmentsUC := ucBooking.NewListAppointments(bookingRepo)

	// ======================================================
	// 🤖 BOT
	// ======================================================
	botRouter := bot.NewRouter(
		botRepo,
		gw,
		llmClient,
		convStore,
		recorder,
		createAppointmentUC,
	)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg, gw)
	meHandler := handlers.NewMeHandler(db)
	salonHandler := handlers.NewSalonHandler(db, uploader)

	professionalHandler := handlers.NewProfessionalHandler(db)
	serviceHandler := handlers.NewServiceHandler(db)
	clientHandler := handlers.NewClientHandler(db)
	workingHoursHandler := handlers.NewWorkingHoursHandler(db)

	appointmentHandler := handlers.NewAppointmentHandler(
		db,
		createAppointmentUC,
		cancelAppointmentUC,
		completeAppointmentUC,
		availabilityUC,
		listAppointmentsUC,
	)

	whatsappHandler := handlers.NewWhatsAppHandler(db, cfg, gw)
	webhookHandler := handlers.NewWebhookHandler(botRouter)
	interactionHandler := handlers.NewInteractionHandler(db)
	paymentHandler := handlers.NewPaymentHandler(db, paymentSvc)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)
	reportsHandler := handlers.NewReportsHandler(db)

	publicHandler := handlers.NewPublicHandler(db, createAppointmentUC, availabilityUC)

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🌐 API PÚBLICA
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/:slug", publicHandler.GetSalon)
			publicAPI.GET("/:slug/services", publicHandler.ListServices)
			publicAPI.GET("/:slug/professionals", publicHandler.ListProfessionals)
			publicAPI.GET("/:slug/availability", publicHandler.Availability)
			publicAPI.POST("/:slug/appointments", publicHandler.CreateAppointment)
		}

		// ------------------------------
		// 📬 WEBHOOK DO GATEWAY
		// ------------------------------
		api.POST("/whatsapp/webhook", webhookHandler.Receive)
		api.POST("/whatsapp/webhook/:instance", webhookHandler.Receive)

		// ------------------------------
		// 🔐 AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// 💳 PLANOS (público)
		// ------------------------------
		api.GET("/plans", paymentHandler.ListPlans)

		// ------------------------------
		// 🔐 API PRIVADA
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)

			secured.GET("/me/salon", salonHandler.GetMeSalon)
			secured.PATCH("/me/salon", salonHandler.UpdateMeSalon)
			secured.POST("/me/salon/photo", salonHandler.UploadPhoto)

			secured.GET("/me/professionals", professionalHandler.List)
			secured.POST("/me/professionals", professionalHandler.Create)
			secured.PATCH("/me/professionals/:id", professionalHandler.Update)
			secured.DELETE("/me/professionals/:id", professionalHandler.Delete)

			secured.GET("/me/professionals/:id/working-hours", workingHoursHandler.Get)
			secured.PUT("/me/professionals/:id/working-hours", workingHoursHandler.Update)

			secured.GET("/me/services", serviceHandler.List)
			secured.POST("/me/services", serviceHandler.Create)
			secured.PATCH("/me/services/:id", serviceHandler.Update)

			secured.GET("/me/clients", clientHandler.List)
			secured.POST("/me/clients", clientHandler.Create)
			secured.PATCH("/me/clients/:id", clientHandler.Update)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.POST("/me/appointments", appointmentHandler.Create)
			secured.GET("/me/appointments", appointmentHandler.ListByDate)
			secured.GET("/me/appointments/month", appointmentHandler.ListByMonth)
			secured.GET("/me/appointments/availability", appointmentHandler.Availability)
			secured.PATCH("/me/appointments/:id/cancel", appointmentHandler.Cancel)
			secured.PATCH("/me/appointments/:id/complete", appointmentHandler.Complete)

			// ------------------------------
			// WHATSAPP / BOT
			// ------------------------------
			secured.POST("/me/whatsapp/connect", whatsappHandler.Connect)
			secured.GET("/me/whatsapp/status", whatsappHandler.Status)
			secured.POST("/me/whatsapp/disconnect", whatsappHandler.Disconnect)
			secured.DELETE("/me/whatsapp", whatsappHandler.Delete)
			secured.POST("/me/whatsapp/messages", whatsappHandler.SendMessage)

			secured.GET("/me/bot-config", whatsappHandler.GetBotConfig)
			secured.PATCH("/me/bot-config", whatsappHandler.UpdateBotConfig)

			secured.GET("/me/interactions", interactionHandler.List)
			secured.GET("/me/interactions/metrics", interactionHandler.Metrics)

			// ------------------------------
			// RELATÓRIOS
			// ------------------------------
			secured.GET("/me/reports/clients", reportsHandler.ClientFrequency)
			secured.GET("/me/reports/services", reportsHandler.PopularServices)
			secured.GET("/me/reports/peak-hours", reportsHandler.PeakHours)
			secured.GET("/me/reports/finance", reportsHandler.Finance)

			// ------------------------------
			// ASSINATURA
			// ------------------------------
			secured.POST("/me/subscription/checkout", paymentHandler.CreateCheckout)
			secured.GET("/me/subscription/process", paymentHandler.Process)

			secured.GET("/me/audit-logs", auditLogsHandler.List)

			// ------------------------------
			// ADMIN (plataforma)
			// ------------------------------
			admin := secured.Group("/admin")
			admin.Use(middleware.AdminOnly())
			{
				admin.GET("/system-config", whatsappHandler.GetSystemConfig)
				admin.PATCH("/system-config", whatsappHandler.UpdateSystemConfig)
				admin.POST("/support/connect", whatsappHandler.ConnectSupport)
				admin.GET("/support/interactions", interactionHandler.ListSupport)
				admin.GET("/stats", reportsHandler.AdminStats)
			}
		}
	}
}

package main

import (
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"fieldpro-backend/clients"
	"fieldpro-backend/config"
	"fieldpro-backend/controllers"
	"fieldpro-backend/models"
	"fieldpro-backend/repository"
	"fieldpro-backend/routes"
	"fieldpro-backend/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	config.InitLogger(cfg.Env)
	defer config.Logger.Sync()
	logger := config.Logger

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	config.ConnectDB(cfg.DatabaseURL)
	if err := config.DB.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Address{},
		&models.Service{},
		&models.Ticket{},
		&models.LineItem{},
		&models.Invoice{},
		&models.RecurringTemplate{},
		&models.Lead{},
		&models.Note{},
		&models.CustomerAttribute{},
		&models.ScheduledMessage{},
		&models.WaitlistEntry{},
		&models.AuditLog{},
	); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	config.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	store := repository.NewStore(config.DB, logger)
	bus := services.NewEventBus(logger)
	audit := services.NewAuditService(store, logger)

	var smsGateway services.SMSGateway
	if cfg.TwilioAccountSID != "" {
		smsGateway = clients.NewTwilioSMS(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, logger)
	} else {
		logger.Warn("twilio not configured, scheduled messages will stay pending")
	}
	var mailer services.MagicLinkMailer
	if cfg.EmailGatewayURL != "" {
		mailer = clients.NewEmailGateway(cfg.EmailGatewayURL, cfg.EmailGatewayAPIKey, cfg.EmailGatewaySecret, logger)
	} else {
		logger.Warn("email gateway not configured, magic links will not be delivered")
	}
	var extractor services.Extractor
	if cfg.LLMAPIKey != "" {
		extractor = services.NewLLMExtractor(clients.NewLLMClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger))
	} else {
		logger.Warn("llm not configured, note extraction disabled")
	}

	authService := services.NewAuthService(store, config.RDB, mailer, cfg, audit, logger)
	customerService := services.NewCustomerService(store, bus, audit, logger)
	addressService := services.NewAddressService(store, audit, logger)
	catalogService := services.NewCatalogService(store, audit, logger)
	ticketService := services.NewTicketService(store, bus, audit, logger)
	lineItemService := services.NewLineItemService(store, audit, logger)
	invoiceService := services.NewInvoiceService(store, bus, audit, logger)
	recurrenceService := services.NewRecurrenceService(store, bus, audit, logger)
	leadService := services.NewLeadService(store, bus, audit, logger)
	noteService := services.NewNoteService(store, bus, audit, logger)
	attributeService := services.NewAttributeService(store, audit, logger)
	messageService := services.NewMessageService(store, smsGateway, audit, logger)
	waitlistService := services.NewWaitlistService(store, audit, logger)
	extractionService := services.NewExtractionService(store, attributeService, extractor, logger)

	services.RegisterHandlers(bus, messageService, extractionService, logger)

	scheduler := services.NewScheduler(store, recurrenceService, messageService, extractionService, logger)
	if err := scheduler.Start(cfg.RecurrenceSweepSpec, cfg.MessageSweepSpec, cfg.ExtractionSweepSpec); err != nil {
		logger.Fatal("scheduler start failed", zap.Error(err))
	}
	defer scheduler.Stop()

	router := routes.SetupRouter(routes.Controllers{
		Auth:      controllers.NewAuthController(authService),
		Customers: controllers.NewCustomerController(customerService, addressService),
		Services:  controllers.NewServiceController(catalogService),
		Tickets:   controllers.NewTicketController(ticketService, lineItemService, invoiceService),
		Invoices:  controllers.NewInvoiceController(invoiceService),
		Templates: controllers.NewTemplateController(recurrenceService),
		Leads:     controllers.NewLeadController(leadService),
		Notes:     controllers.NewNoteController(noteService, attributeService, audit),
		Messages:  controllers.NewMessageController(messageService, waitlistService),
	}, strings.Split(cfg.AllowedOrigins, ","))

	logger.Info("listening", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

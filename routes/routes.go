package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"fieldpro-backend/config"
	"fieldpro-backend/controllers"
	"fieldpro-backend/utils"
)

// Controllers bundles the handler groups the router mounts.
type Controllers struct {
	Auth      *controllers.AuthController
	Customers *controllers.CustomerController
	Services  *controllers.ServiceController
	Tickets   *controllers.TicketController
	Invoices  *controllers.InvoiceController
	Templates *controllers.TemplateController
	Leads     *controllers.LeadController
	Notes     *controllers.NoteController
	Messages  *controllers.MessageController
}

func SetupRouter(ctrl Controllers, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(config.PerformanceLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	auth := r.Group("/auth")
	{
		auth.POST("/register", ctrl.Auth.Register)
		auth.POST("/login", ctrl.Auth.Login)
		auth.POST("/magic-link", ctrl.Auth.RequestMagicLink)
		auth.GET("/magic-link/verify", ctrl.Auth.VerifyMagicLink)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", ctrl.Auth.Me)
		auth.PUT("/me", ctrl.Auth.UpdateProfile)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		customers := api.Group("/customers")
		{
			customers.POST("", ctrl.Customers.Create)
			customers.GET("", ctrl.Customers.List)
			customers.GET("/:id", ctrl.Customers.Get)
			customers.PUT("/:id", ctrl.Customers.Update)
			customers.DELETE("/:id", ctrl.Customers.Delete)

			customers.POST("/:id/addresses", ctrl.Customers.AddAddress)
			customers.GET("/:id/addresses", ctrl.Customers.ListAddresses)
			customers.PUT("/:id/addresses/:addressId", ctrl.Customers.UpdateAddress)
			customers.POST("/:id/addresses/:addressId/primary", ctrl.Customers.SetPrimaryAddress)
			customers.DELETE("/:id/addresses/:addressId", ctrl.Customers.DeleteAddress)

			customers.POST("/:id/notes", ctrl.Notes.Create)
			customers.GET("/:id/notes", ctrl.Notes.ListByCustomer)
			customers.PUT("/:id/attributes", ctrl.Notes.SetAttribute)
			customers.GET("/:id/attributes", ctrl.Notes.ListAttributes)
			customers.DELETE("/:id/attributes/:key", ctrl.Notes.DeleteAttribute)

			customers.GET("/:id/messages", ctrl.Messages.ListByCustomer)
		}

		services := api.Group("/services")
		{
			services.POST("", ctrl.Services.Create)
			services.GET("", ctrl.Services.List)
			services.GET("/:id", ctrl.Services.Get)
			services.PUT("/:id", ctrl.Services.Update)
			services.DELETE("/:id", ctrl.Services.Delete)
		}

		tickets := api.Group("/tickets")
		{
			tickets.POST("", ctrl.Tickets.Create)
			tickets.GET("", ctrl.Tickets.List)
			tickets.GET("/:id", ctrl.Tickets.Get)
			tickets.PUT("/:id", ctrl.Tickets.Update)
			tickets.DELETE("/:id", ctrl.Tickets.Delete)

			tickets.POST("/:id/clock-in", ctrl.Tickets.ClockIn)
			tickets.POST("/:id/clock-out", ctrl.Tickets.ClockOut)
			tickets.POST("/:id/complete", ctrl.Tickets.Complete)
			tickets.POST("/:id/cancel", ctrl.Tickets.Cancel)
			tickets.POST("/:id/reopen", ctrl.Tickets.Reopen)
			tickets.POST("/:id/confirmation", ctrl.Tickets.SetConfirmation)

			tickets.POST("/:id/line-items", ctrl.Tickets.AddLineItems)
			tickets.GET("/:id/line-items", ctrl.Tickets.ListLineItems)
			tickets.PUT("/:id/line-items/:itemId", ctrl.Tickets.UpdateLineItem)
			tickets.DELETE("/:id/line-items/:itemId", ctrl.Tickets.RemoveLineItem)

			tickets.POST("/:id/invoice", ctrl.Tickets.DeriveInvoice)
			tickets.GET("/:id/invoice", ctrl.Tickets.GetInvoice)
		}

		invoices := api.Group("/invoices")
		{
			invoices.GET("", ctrl.Invoices.List)
			invoices.GET("/:id", ctrl.Invoices.Get)
			invoices.POST("/:id/send", ctrl.Invoices.Send)
			invoices.POST("/:id/payments", ctrl.Invoices.RecordPayment)
			invoices.POST("/:id/void", ctrl.Invoices.Void)
		}

		templates := api.Group("/recurring-templates")
		{
			templates.POST("", ctrl.Templates.Create)
			templates.GET("", ctrl.Templates.List)
			templates.GET("/:id", ctrl.Templates.Get)
			templates.PUT("/:id", ctrl.Templates.Update)
			templates.DELETE("/:id", ctrl.Templates.Delete)
		}

		leads := api.Group("/leads")
		{
			leads.POST("", ctrl.Leads.Create)
			leads.GET("", ctrl.Leads.List)
			leads.GET("/:id", ctrl.Leads.Get)
			leads.POST("/:id/contacted", ctrl.Leads.MarkContacted)
			leads.POST("/:id/qualified", ctrl.Leads.MarkQualified)
			leads.POST("/:id/convert", ctrl.Leads.Convert)
			leads.POST("/:id/archive", ctrl.Leads.Archive)
			leads.DELETE("/:id", ctrl.Leads.Delete)
		}

		notes := api.Group("/notes")
		{
			notes.PUT("/:id", ctrl.Notes.Update)
			notes.DELETE("/:id", ctrl.Notes.Delete)
		}

		messages := api.Group("/messages")
		{
			messages.POST("", ctrl.Messages.ScheduleCustom)
			messages.POST("/:id/cancel", ctrl.Messages.Cancel)
		}

		waitlist := api.Group("/waitlist")
		{
			waitlist.POST("", ctrl.Messages.AddWaitlistEntry)
			waitlist.GET("", ctrl.Messages.ListWaitlist)
			waitlist.POST("/:id/schedule", ctrl.Messages.ScheduleWaitlistEntry)
			waitlist.POST("/:id/remove", ctrl.Messages.RemoveWaitlistEntry)
		}

		api.GET("/audit/:type/:id", ctrl.Notes.EntityHistory)
	}

	return r
}

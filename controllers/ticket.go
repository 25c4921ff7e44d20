package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fieldpro-backend/models"
	"fieldpro-backend/repository"
	"fieldpro-backend/services"
	"fieldpro-backend/utils"
)

type TicketController struct {
	tickets   *services.TicketService
	lineItems *services.LineItemService
	invoices  *services.InvoiceService
}

func NewTicketController(tickets *services.TicketService, lineItems *services.LineItemService, invoices *services.InvoiceService) *TicketController {
	return &TicketController{tickets: tickets, lineItems: lineItems, invoices: invoices}
}

type LineItemInput struct {
	ServiceID           *uuid.UUID `json:"serviceId"`
	Description         string     `json:"description"`
	Quantity            int64      `json:"quantity" binding:"omitempty,min=1"`
	PriceOverrideCents  *int64     `json:"priceOverrideCents" binding:"omitempty,min=0"`
	DurationOverrideMin *int       `json:"durationOverrideMin"`
}

func toServiceItems(inputs []LineItemInput) []services.LineItemInput {
	items := make([]services.LineItemInput, 0, len(inputs))
	for _, input := range inputs {
		items = append(items, services.LineItemInput{
			ServiceID:           input.ServiceID,
			Description:         input.Description,
			Quantity:            input.Quantity,
			PriceOverrideCents:  input.PriceOverrideCents,
			DurationOverrideMin: input.DurationOverrideMin,
		})
	}
	return items
}

type CreateTicketInput struct {
	CustomerID               uuid.UUID       `json:"customerId" binding:"required"`
	AddressID                *uuid.UUID      `json:"addressId"`
	Title                    string          `json:"title" binding:"required"`
	Description              string          `json:"description"`
	ScheduledAt              *time.Time      `json:"scheduledAt"`
	EstimatedDurationMinutes *int            `json:"estimatedDurationMinutes"`
	IsPriceEstimated         bool            `json:"isPriceEstimated"`
	Items                    []LineItemInput `json:"items"`
}

func (tc *TicketController) Create(c *gin.Context) {
	var input CreateTicketInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	ticket, err := tc.tickets.Create(c.Request.Context(), services.CreateTicketInput{
		CustomerID:               input.CustomerID,
		AddressID:                input.AddressID,
		Title:                    input.Title,
		Description:              input.Description,
		ScheduledAt:              input.ScheduledAt,
		EstimatedDurationMinutes: input.EstimatedDurationMinutes,
		IsPriceEstimated:         input.IsPriceEstimated,
		Items:                    toServiceItems(input.Items),
	})
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

func (tc *TicketController) List(c *gin.Context) {
	filter := repository.TicketFilter{
		Status: models.TicketStatus(c.Query("status")),
		Limit:  parseIntQuery(c, "limit"),
		Offset: parseIntQuery(c, "offset"),
	}
	if customerID, err := uuid.Parse(c.Query("customerId")); err == nil {
		filter.CustomerID = customerID
	}
	if from, err := time.Parse(time.RFC3339, c.Query("from")); err == nil {
		filter.ScheduledFrom = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("to")); err == nil {
		filter.ScheduledTo = &to
	}

	tickets, err := tc.tickets.List(c.Request.Context(), filter)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}

func (tc *TicketController) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	ticket, err := tc.tickets.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

type UpdateTicketInput struct {
	Title                    *string    `json:"title"`
	Description              *string    `json:"description"`
	AddressID                *uuid.UUID `json:"addressId"`
	ScheduledAt              *time.Time `json:"scheduledAt"`
	EstimatedDurationMinutes *int       `json:"estimatedDurationMinutes"`
	IsPriceEstimated         *bool      `json:"isPriceEstimated"`
}

func (tc *TicketController) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var input UpdateTicketInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	ticket, err := tc.tickets.Update(c.Request.Context(), id, services.UpdateTicketInput{
		Title:                    input.Title,
		Description:              input.Description,
		AddressID:                input.AddressID,
		ScheduledAt:              input.ScheduledAt,
		EstimatedDurationMinutes: input.EstimatedDurationMinutes,
		IsPriceEstimated:         input.IsPriceEstimated,
	})
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (tc *TicketController) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	if err := tc.tickets.Delete(c.Request.Context(), id); err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ticket deleted"})
}

func (tc *TicketController) ClockIn(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	ticket, err := tc.tickets.ClockIn(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

type ClockOutInput struct {
	At *time.Time `json:"at"`
}

func (tc *TicketController) ClockOut(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var input ClockOutInput
	if err := c.ShouldBindJSON(&input); err != nil && c.Request.ContentLength > 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	ticket, err := tc.tickets.ClockOut(c.Request.Context(), id, input.At)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (tc *TicketController) Complete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var input ClockOutInput
	if err := c.ShouldBindJSON(&input); err != nil && c.Request.ContentLength > 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	ticket, err := tc.tickets.Complete(c.Request.Context(), id, input.At)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

type CancelTicketInput struct {
	Reason string `json:"reason"`
}

func (tc *TicketController) Cancel(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var input CancelTicketInput
	if err := c.ShouldBindJSON(&input); err != nil && c.Request.ContentLength > 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	ticket, err := tc.tickets.Cancel(c.Request.Context(), id, input.Reason)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (tc *TicketController) Reopen(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	ticket, err := tc.tickets.Reopen(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

type ConfirmationInput struct {
	Status models.ConfirmationStatus `json:"status" binding:"required,oneof=confirmed declined reschedule_requested"`
}

func (tc *TicketController) SetConfirmation(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var input ConfirmationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	ticket, err := tc.tickets.SetConfirmation(c.Request.Context(), id, input.Status)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

type AddLineItemsInput struct {
	Items []LineItemInput `json:"items" binding:"required,min=1"`
}

func (tc *TicketController) AddLineItems(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var input AddLineItemsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	items, err := tc.lineItems.Add(c.Request.Context(), id, toServiceItems(input.Items))
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, items)
}

func (tc *TicketController) ListLineItems(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	items, err := tc.lineItems.ListByTicket(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

type UpdateLineItemInput struct {
	Description     *string `json:"description"`
	Quantity        *int64  `json:"quantity" binding:"omitempty,min=1"`
	UnitPriceCents  *int64  `json:"unitPriceCents" binding:"omitempty,min=0"`
	DurationMinutes *int    `json:"durationMinutes"`
}

func (tc *TicketController) UpdateLineItem(c *gin.Context) {
	itemID, err := parseIDParam(c, "itemId")
	if err != nil {
		return
	}
	var input UpdateLineItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	item, err := tc.lineItems.Update(c.Request.Context(), itemID, services.UpdateLineItemInput{
		Description:     input.Description,
		Quantity:        input.Quantity,
		UnitPriceCents:  input.UnitPriceCents,
		DurationMinutes: input.DurationMinutes,
	})
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (tc *TicketController) RemoveLineItem(c *gin.Context) {
	itemID, err := parseIDParam(c, "itemId")
	if err != nil {
		return
	}
	if err := tc.lineItems.Remove(c.Request.Context(), itemID); err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Line item removed"})
}

// DeriveInvoice computes the authoritative invoice for a completed
// ticket.
func (tc *TicketController) DeriveInvoice(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	invoice, err := tc.invoices.Derive(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func (tc *TicketController) GetInvoice(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	invoice, err := tc.invoices.GetActiveForTicket(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

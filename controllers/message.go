package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fieldpro-backend/models"
	"fieldpro-backend/services"
	"fieldpro-backend/utils"
)

type MessageController struct {
	messages *services.MessageService
	waitlist *services.WaitlistService
}

func NewMessageController(messages *services.MessageService, waitlist *services.WaitlistService) *MessageController {
	return &MessageController{messages: messages, waitlist: waitlist}
}

type CustomMessageInput struct {
	CustomerID uuid.UUID  `json:"customerId" binding:"required"`
	TicketID   *uuid.UUID `json:"ticketId"`
	Body       string     `json:"body" binding:"required"`
	SendAt     time.Time  `json:"sendAt"`
}

func (mc *MessageController) ScheduleCustom(c *gin.Context) {
	var input CustomMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	msg, err := mc.messages.ScheduleCustom(c.Request.Context(), services.CustomMessageInput{
		CustomerID: input.CustomerID,
		TicketID:   input.TicketID,
		Body:       input.Body,
		SendAt:     input.SendAt,
	})
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (mc *MessageController) ListByCustomer(c *gin.Context) {
	customerID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	msgs, err := mc.messages.ListByCustomer(c.Request.Context(), customerID)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (mc *MessageController) Cancel(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	if err := mc.messages.Cancel(c.Request.Context(), id); err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message cancelled"})
}

type WaitlistInput struct {
	CustomerID  uuid.UUID  `json:"customerId" binding:"required"`
	ServiceID   *uuid.UUID `json:"serviceId"`
	DesiredFrom *time.Time `json:"desiredFrom"`
	DesiredTo   *time.Time `json:"desiredTo"`
	Notes       string     `json:"notes"`
}

func (mc *MessageController) AddWaitlistEntry(c *gin.Context) {
	var input WaitlistInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	entry, err := mc.waitlist.Add(c.Request.Context(), services.WaitlistInput{
		CustomerID:  input.CustomerID,
		ServiceID:   input.ServiceID,
		DesiredFrom: input.DesiredFrom,
		DesiredTo:   input.DesiredTo,
		Notes:       input.Notes,
	})
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (mc *MessageController) ListWaitlist(c *gin.Context) {
	entries, err := mc.waitlist.List(c.Request.Context(), models.WaitlistStatus(c.Query("status")))
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

type ScheduleWaitlistInput struct {
	TicketID uuid.UUID `json:"ticketId" binding:"required"`
}

func (mc *MessageController) ScheduleWaitlistEntry(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var input ScheduleWaitlistInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	entry, err := mc.waitlist.MarkScheduled(c.Request.Context(), id, input.TicketID)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (mc *MessageController) RemoveWaitlistEntry(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	entry, err := mc.waitlist.Remove(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

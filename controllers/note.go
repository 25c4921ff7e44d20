package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fieldpro-backend/services"
	"fieldpro-backend/utils"
)

type NoteController struct {
	notes      *services.NoteService
	attributes *services.AttributeService
	audit      *services.AuditService
}

func NewNoteController(notes *services.NoteService, attributes *services.AttributeService, audit *services.AuditService) *NoteController {
	return &NoteController{notes: notes, attributes: attributes, audit: audit}
}

type NoteInput struct {
	CustomerID uuid.UUID  `json:"customerId" binding:"required"`
	TicketID   *uuid.UUID `json:"ticketId"`
	Content    string     `json:"content" binding:"required"`
}

func (nc *NoteController) Create(c *gin.Context) {
	var input NoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	note, err := nc.notes.Create(c.Request.Context(), services.NoteInput{
		CustomerID: input.CustomerID,
		TicketID:   input.TicketID,
		Content:    input.Content,
	})
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

func (nc *NoteController) ListByCustomer(c *gin.Context) {
	customerID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	notes, err := nc.notes.ListByCustomer(c.Request.Context(), customerID)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

type UpdateNoteInput struct {
	Content string `json:"content" binding:"required"`
}

func (nc *NoteController) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var input UpdateNoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	note, err := nc.notes.Update(c.Request.Context(), id, input.Content)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (nc *NoteController) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	if err := nc.notes.Delete(c.Request.Context(), id); err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Note deleted"})
}

type AttributeInput struct {
	Key   string      `json:"key" binding:"required"`
	Value interface{} `json:"value" binding:"required"`
}

func (nc *NoteController) SetAttribute(c *gin.Context) {
	customerID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var input AttributeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	attr, err := nc.attributes.SetManual(c.Request.Context(), customerID, input.Key, input.Value)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, attr)
}

func (nc *NoteController) ListAttributes(c *gin.Context) {
	customerID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	attrs, err := nc.attributes.ListByCustomer(c.Request.Context(), customerID)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, attrs)
}

func (nc *NoteController) DeleteAttribute(c *gin.Context) {
	customerID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	key := c.Param("key")
	if err := nc.attributes.Delete(c.Request.Context(), customerID, key); err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Attribute deleted"})
}

// EntityHistory returns the audit trail for one entity.
func (nc *NoteController) EntityHistory(c *gin.Context) {
	entityID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	entityType := c.Param("type")
	history, err := nc.audit.History(c.Request.Context(), entityType, entityID)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

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

type TemplateController struct {
	recurrence *services.RecurrenceService
}

func NewTemplateController(recurrence *services.RecurrenceService) *TemplateController {
	return &TemplateController{recurrence: recurrence}
}

type TemplateItemInput struct {
	ServiceID           uuid.UUID `json:"serviceId" binding:"required"`
	Quantity            int64     `json:"quantity" binding:"min=1"`
	PriceOverrideCents  *int64    `json:"priceOverrideCents" binding:"omitempty,min=0"`
	DurationOverrideMin *int      `json:"durationOverrideMin"`
}

func toTemplateItems(inputs []TemplateItemInput) []models.TemplateItem {
	items := make([]models.TemplateItem, 0, len(inputs))
	for _, input := range inputs {
		items = append(items, models.TemplateItem{
			ServiceID:           input.ServiceID,
			Quantity:            input.Quantity,
			PriceOverrideCents:  input.PriceOverrideCents,
			DurationOverrideMin: input.DurationOverrideMin,
		})
	}
	return items
}

type CreateTemplateInput struct {
	CustomerID           uuid.UUID           `json:"customerId" binding:"required"`
	AddressID            *uuid.UUID          `json:"addressId"`
	Title                string              `json:"title" binding:"required"`
	Description          string              `json:"description"`
	IntervalType         models.IntervalType `json:"intervalType" binding:"required,oneof=days weeks months"`
	IntervalValue        int                 `json:"intervalValue" binding:"required,min=1"`
	PreferredWeekday     *int                `json:"preferredWeekday" binding:"omitempty,min=0,max=6"`
	PreferredDayOfMonth  *int                `json:"preferredDayOfMonth" binding:"omitempty,min=1,max=31"`
	PreferredTimeOfDay   string              `json:"preferredTimeOfDay"`
	EstimatedDurationMin *int                `json:"estimatedDurationMin"`
	Items                []TemplateItemInput `json:"items"`
	FirstOccurrenceAt    time.Time           `json:"firstOccurrenceAt" binding:"required"`
}

func (tc *TemplateController) Create(c *gin.Context) {
	var input CreateTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	template, err := tc.recurrence.CreateTemplate(c.Request.Context(), services.CreateTemplateInput{
		CustomerID:           input.CustomerID,
		AddressID:            input.AddressID,
		Title:                input.Title,
		Description:          input.Description,
		IntervalType:         input.IntervalType,
		IntervalValue:        input.IntervalValue,
		PreferredWeekday:     input.PreferredWeekday,
		PreferredDayOfMonth:  input.PreferredDayOfMonth,
		PreferredTimeOfDay:   input.PreferredTimeOfDay,
		EstimatedDurationMin: input.EstimatedDurationMin,
		Items:                toTemplateItems(input.Items),
		FirstOccurrenceAt:    input.FirstOccurrenceAt,
	})
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, template)
}

func (tc *TemplateController) List(c *gin.Context) {
	activeOnly := c.Query("activeOnly") == "true"
	templates, err := tc.recurrence.List(c.Request.Context(), activeOnly)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

func (tc *TemplateController) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	template, err := tc.recurrence.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

type UpdateTemplateInput struct {
	Title                *string              `json:"title"`
	Description          *string              `json:"description"`
	AddressID            *uuid.UUID           `json:"addressId"`
	IntervalType         *models.IntervalType `json:"intervalType" binding:"omitempty,oneof=days weeks months"`
	IntervalValue        *int                 `json:"intervalValue" binding:"omitempty,min=1"`
	PreferredWeekday     *int                 `json:"preferredWeekday" binding:"omitempty,min=0,max=6"`
	PreferredDayOfMonth  *int                 `json:"preferredDayOfMonth" binding:"omitempty,min=1,max=31"`
	PreferredTimeOfDay   *string              `json:"preferredTimeOfDay"`
	EstimatedDurationMin *int                 `json:"estimatedDurationMin"`
	Items                []TemplateItemInput  `json:"items"`
	NextOccurrenceAt     *time.Time           `json:"nextOccurrenceAt"`
	IsActive             *bool                `json:"isActive"`
}

func (tc *TemplateController) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var input UpdateTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	update := services.UpdateTemplateInput{
		Title:                input.Title,
		Description:          input.Description,
		AddressID:            input.AddressID,
		IntervalType:         input.IntervalType,
		IntervalValue:        input.IntervalValue,
		PreferredWeekday:     input.PreferredWeekday,
		PreferredDayOfMonth:  input.PreferredDayOfMonth,
		PreferredTimeOfDay:   input.PreferredTimeOfDay,
		EstimatedDurationMin: input.EstimatedDurationMin,
		NextOccurrenceAt:     input.NextOccurrenceAt,
		IsActive:             input.IsActive,
	}
	if input.Items != nil {
		update.Items = toTemplateItems(input.Items)
	}
	template, err := tc.recurrence.UpdateTemplate(c.Request.Context(), id, update)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

func (tc *TemplateController) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	if err := tc.recurrence.Delete(c.Request.Context(), id); err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Template deleted"})
}

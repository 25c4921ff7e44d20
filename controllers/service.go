package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldpro-backend/models"
	"fieldpro-backend/services"
	"fieldpro-backend/utils"
)

type ServiceController struct {
	catalog *services.CatalogService
}

func NewServiceController(catalog *services.CatalogService) *ServiceController {
	return &ServiceController{catalog: catalog}
}

type ServiceInput struct {
	Name              string             `json:"name" binding:"required"`
	Description       string             `json:"description"`
	PricingType       models.PricingType `json:"pricingType" binding:"required,oneof=fixed flexible per_unit"`
	DefaultPriceCents *int64             `json:"defaultPriceCents" binding:"omitempty,min=0"`
	UnitPriceCents    *int64             `json:"unitPriceCents" binding:"omitempty,min=0"`
	UnitLabel         string             `json:"unitLabel"`
	DurationMinutes   *int               `json:"durationMinutes" binding:"omitempty,min=1"`
	IsActive          *bool              `json:"isActive"`
	DisplayOrder      *int               `json:"displayOrder"`
}

func (input ServiceInput) toService() services.ServiceInput {
	return services.ServiceInput{
		Name:              input.Name,
		Description:       input.Description,
		PricingType:       input.PricingType,
		DefaultPriceCents: input.DefaultPriceCents,
		UnitPriceCents:    input.UnitPriceCents,
		UnitLabel:         input.UnitLabel,
		DurationMinutes:   input.DurationMinutes,
		IsActive:          input.IsActive,
		DisplayOrder:      input.DisplayOrder,
	}
}

func (sc *ServiceController) Create(c *gin.Context) {
	var input ServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	service, err := sc.catalog.Create(c.Request.Context(), input.toService())
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, service)
}

func (sc *ServiceController) List(c *gin.Context) {
	includeInactive := c.Query("includeInactive") == "true"
	list, err := sc.catalog.List(c.Request.Context(), includeInactive)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (sc *ServiceController) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	service, err := sc.catalog.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, service)
}

func (sc *ServiceController) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var input ServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	service, err := sc.catalog.Update(c.Request.Context(), id, input.toService())
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, service)
}

func (sc *ServiceController) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	if err := sc.catalog.Delete(c.Request.Context(), id); err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service deleted"})
}

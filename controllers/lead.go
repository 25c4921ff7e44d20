package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldpro-backend/models"
	"fieldpro-backend/services"
	"fieldpro-backend/utils"
)

type LeadController struct {
	leads *services.LeadService
}

func NewLeadController(leads *services.LeadService) *LeadController {
	return &LeadController{leads: leads}
}

type LeadInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Source  string `json:"source"`
	Urgency string `json:"urgency" binding:"omitempty,oneof=low medium high"`
	RawText string `json:"rawText"`
}

func (lc *LeadController) Create(c *gin.Context) {
	var input LeadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	lead, err := lc.leads.Create(c.Request.Context(), services.LeadInput{
		Name:    input.Name,
		Phone:   input.Phone,
		Email:   input.Email,
		Source:  input.Source,
		Urgency: input.Urgency,
		RawText: input.RawText,
	})
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lead)
}

func (lc *LeadController) List(c *gin.Context) {
	leads, err := lc.leads.List(c.Request.Context(),
		models.LeadStatus(c.Query("status")),
		parseIntQuery(c, "limit"),
		parseIntQuery(c, "offset"),
	)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, leads)
}

func (lc *LeadController) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	lead, err := lc.leads.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

func (lc *LeadController) MarkContacted(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	lead, err := lc.leads.MarkContacted(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

func (lc *LeadController) MarkQualified(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	lead, err := lc.leads.MarkQualified(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

func (lc *LeadController) Convert(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	lead, customer, err := lc.leads.Convert(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lead": lead, "customer": customer})
}

func (lc *LeadController) Archive(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	lead, err := lc.leads.Archive(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

func (lc *LeadController) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	if err := lc.leads.Delete(c.Request.Context(), id); err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lead deleted"})
}

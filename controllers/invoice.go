package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fieldpro-backend/models"
	"fieldpro-backend/repository"
	"fieldpro-backend/services"
	"fieldpro-backend/utils"
)

type InvoiceController struct {
	invoices *services.InvoiceService
}

func NewInvoiceController(invoices *services.InvoiceService) *InvoiceController {
	return &InvoiceController{invoices: invoices}
}

func (ic *InvoiceController) List(c *gin.Context) {
	filter := repository.InvoiceFilter{
		Status: models.InvoiceStatus(c.Query("status")),
		Limit:  parseIntQuery(c, "limit"),
		Offset: parseIntQuery(c, "offset"),
	}
	if customerID, err := uuid.Parse(c.Query("customerId")); err == nil {
		filter.CustomerID = customerID
	}

	invoices, err := ic.invoices.List(c.Request.Context(), filter)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

func (ic *InvoiceController) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	invoice, err := ic.invoices.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (ic *InvoiceController) Send(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	invoice, err := ic.invoices.Send(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

type RecordPaymentInput struct {
	AmountCents int64 `json:"amountCents" binding:"required,min=1"`
}

func (ic *InvoiceController) RecordPayment(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var input RecordPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	invoice, err := ic.invoices.RecordPayment(c.Request.Context(), id, input.AmountCents)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (ic *InvoiceController) Void(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	invoice, err := ic.invoices.Void(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fieldpro-backend/repository"
	"fieldpro-backend/services"
	"fieldpro-backend/utils"
)

type CustomerController struct {
	customers *services.CustomerService
	addresses *services.AddressService
}

func NewCustomerController(customers *services.CustomerService, addresses *services.AddressService) *CustomerController {
	return &CustomerController{customers: customers, addresses: addresses}
}

type CustomerInput struct {
	FirstName              string     `json:"firstName"`
	LastName               string     `json:"lastName"`
	BusinessName           string     `json:"businessName"`
	Email                  string     `json:"email"`
	Phone                  string     `json:"phone"`
	ReferredBy             *uuid.UUID `json:"referredBy"`
	ReferenceID            string     `json:"referenceId"`
	Notes                  string     `json:"notes"`
	PreferredContactMethod string     `json:"preferredContactMethod"`
	PreferredTimeOfDay     string     `json:"preferredTimeOfDay"`
}

func (input CustomerInput) toService() services.CustomerInput {
	return services.CustomerInput{
		FirstName:              input.FirstName,
		LastName:               input.LastName,
		BusinessName:           input.BusinessName,
		Email:                  input.Email,
		Phone:                  input.Phone,
		ReferredBy:             input.ReferredBy,
		ReferenceID:            input.ReferenceID,
		Notes:                  input.Notes,
		PreferredContactMethod: input.PreferredContactMethod,
		PreferredTimeOfDay:     input.PreferredTimeOfDay,
	}
}

func (cc *CustomerController) Create(c *gin.Context) {
	var input CustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	customer, err := cc.customers.Create(c.Request.Context(), input.toService())
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (cc *CustomerController) List(c *gin.Context) {
	customers, err := cc.customers.List(c.Request.Context(), repository.CustomerFilter{
		Search: c.Query("search"),
		Limit:  parseIntQuery(c, "limit"),
		Offset: parseIntQuery(c, "offset"),
	})
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (cc *CustomerController) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	customer, err := cc.customers.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (cc *CustomerController) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var input CustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	customer, err := cc.customers.Update(c.Request.Context(), id, input.toService())
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (cc *CustomerController) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	if err := cc.customers.Delete(c.Request.Context(), id); err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted"})
}

type AddressInput struct {
	Label     string `json:"label"`
	Street    string `json:"street" binding:"required"`
	Street2   string `json:"street2"`
	City      string `json:"city" binding:"required"`
	State     string `json:"state" binding:"required"`
	Zip       string `json:"zip" binding:"required"`
	Notes     string `json:"notes"`
	IsPrimary bool   `json:"isPrimary"`
}

func (input AddressInput) toService() services.AddressInput {
	return services.AddressInput{
		Label:     input.Label,
		Street:    input.Street,
		Street2:   input.Street2,
		City:      input.City,
		State:     input.State,
		Zip:       input.Zip,
		Notes:     input.Notes,
		IsPrimary: input.IsPrimary,
	}
}

func (cc *CustomerController) AddAddress(c *gin.Context) {
	customerID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var input AddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	address, err := cc.addresses.Add(c.Request.Context(), customerID, input.toService())
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, address)
}

func (cc *CustomerController) ListAddresses(c *gin.Context) {
	customerID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	addresses, err := cc.addresses.ListByCustomer(c.Request.Context(), customerID)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, addresses)
}

func (cc *CustomerController) UpdateAddress(c *gin.Context) {
	addressID, err := parseIDParam(c, "addressId")
	if err != nil {
		return
	}
	var input AddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	address, err := cc.addresses.Update(c.Request.Context(), addressID, input.toService())
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, address)
}

func (cc *CustomerController) SetPrimaryAddress(c *gin.Context) {
	addressID, err := parseIDParam(c, "addressId")
	if err != nil {
		return
	}
	address, err := cc.addresses.SetPrimary(c.Request.Context(), addressID)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, address)
}

func (cc *CustomerController) DeleteAddress(c *gin.Context) {
	addressID, err := parseIDParam(c, "addressId")
	if err != nil {
		return
	}
	if err := cc.addresses.Delete(c.Request.Context(), addressID); err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Address deleted"})
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldpro-backend/services"
	"fieldpro-backend/utils"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

type RegisterInput struct {
	Email             string `json:"email" binding:"required,email"`
	Password          string `json:"password" binding:"required,min=8"`
	Name              string `json:"name" binding:"required"`
	BusinessName      string `json:"businessName" binding:"required"`
	Phone             string `json:"phone"`
	Timezone          string `json:"timezone"`
	DefaultTaxRateBps int    `json:"defaultTaxRateBps" binding:"min=0,max=10000"`
}

func (ac *AuthController) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	user, token, err := ac.auth.Register(c.Request.Context(), services.RegisterInput{
		Email:             input.Email,
		Password:          input.Password,
		Name:              input.Name,
		BusinessName:      input.BusinessName,
		Phone:             input.Phone,
		Timezone:          input.Timezone,
		DefaultTaxRateBps: input.DefaultTaxRateBps,
	})
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (ac *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	user, token, err := ac.auth.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

type MagicLinkRequestInput struct {
	Email string `json:"email" binding:"required,email"`
}

func (ac *AuthController) RequestMagicLink(c *gin.Context) {
	var input MagicLinkRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if err := ac.auth.RequestMagicLink(c.Request.Context(), input.Email, c.ClientIP()); err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	// The response never reveals whether the address has an account.
	c.JSON(http.StatusOK, gin.H{"message": "If that address has an account, a login link is on its way"})
}

func (ac *AuthController) VerifyMagicLink(c *gin.Context) {
	token := c.Query("token")
	user, jwtToken, err := ac.auth.VerifyMagicLink(c.Request.Context(), token)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "token": jwtToken})
}

func (ac *AuthController) Me(c *gin.Context) {
	user, err := ac.auth.Me(c.Request.Context())
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type UpdateProfileInput struct {
	Name              *string `json:"name"`
	BusinessName      *string `json:"businessName"`
	Phone             *string `json:"phone"`
	Timezone          *string `json:"timezone"`
	DefaultTaxRateBps *int    `json:"defaultTaxRateBps" binding:"omitempty,min=0,max=10000"`
}

func (ac *AuthController) UpdateProfile(c *gin.Context) {
	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	user, err := ac.auth.UpdateProfile(c.Request.Context(), services.UpdateProfileInput{
		Name:              input.Name,
		BusinessName:      input.BusinessName,
		Phone:             input.Phone,
		Timezone:          input.Timezone,
		DefaultTaxRateBps: input.DefaultTaxRateBps,
	})
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

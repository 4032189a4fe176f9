package controllers

import (
	"net/http"
	"strings"

	"food-order/logger"
	"food-order/middleware"
	"food-order/models"
	"food-order/services"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	auth *services.AuthService
	log  *logger.Logger
}

func NewAuthController(auth *services.AuthService, log *logger.Logger) *AuthController {
	return &AuthController{auth: auth, log: log}
}

// Register godoc
// @Summary Register new user
// @Description Register a new customer account and sign in
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Register Request"
// @Success 201 {object} models.Response{data=models.LoginResponse}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/register [post]
func (ctrl *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := ctrl.auth.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	respondOK(c, http.StatusCreated, "Registration successful", resp)
}

// Login godoc
// @Summary User login
// @Description Login with email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login Request"
// @Success 200 {object} models.Response{data=models.LoginResponse}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := ctrl.auth.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	respondOK(c, http.StatusOK, "Login successful", resp)
}

// CheckEmail godoc
// @Summary Check email availability
// @Tags Authentication
// @Produce json
// @Param email query string true "Email"
// @Success 200 {object} models.Response
// @Router /auth/check-email [get]
func (ctrl *AuthController) CheckEmail(c *gin.Context) {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		respondError(c, ctrl.log, models.ValidationError("email is required"))
		return
	}

	exists, err := ctrl.auth.EmailExists(c.Request.Context(), email)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	respondOK(c, http.StatusOK, "Email checked", gin.H{"exists": exists})
}

// GetSession godoc
// @Summary Current device session
// @Description The signed-in user remembered on this device
// @Tags Authentication
// @Produce json
// @Success 200 {object} models.Response{data=models.Session}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/session [get]
func (ctrl *AuthController) GetSession(c *gin.Context) {
	session, err := ctrl.auth.CurrentSession(c.Request.Context())
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	respondOK(c, http.StatusOK, "Session retrieved", session)
}

// Logout godoc
// @Summary Logout
// @Description Clears the cart and the device session
// @Tags Authentication
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /auth/logout [post]
func (ctrl *AuthController) Logout(c *gin.Context) {
	if err := ctrl.auth.Logout(c.Request.Context()); err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	respondOK(c, http.StatusOK, "Logged out", nil)
}

// ForgotPassword godoc
// @Summary Request password reset
// @Description Emails a six digit code valid for five minutes
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.ForgotPasswordRequest true "Email"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /auth/forgot-password [post]
func (ctrl *AuthController) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := ctrl.auth.ForgotPassword(c.Request.Context(), req); err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	respondOK(c, http.StatusOK, "Reset code sent", nil)
}

// ResetPassword godoc
// @Summary Reset password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.ResetPasswordRequest true "Code and new password"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/reset-password [post]
func (ctrl *AuthController) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := ctrl.auth.ResetPassword(c.Request.Context(), req); err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	respondOK(c, http.StatusOK, "Password reset", nil)
}

// GetProfile godoc
// @Summary Get user profile
// @Description Get current user profile
// @Tags Authentication
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response{data=models.UserWithProfile}
// @Router /auth/profile [get]
func (ctrl *AuthController) GetProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	profile, err := ctrl.auth.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	respondOK(c, http.StatusOK, "Profile retrieved", profile)
}

// UpdateProfile godoc
// @Summary Update profile
// @Description Update user profile information. Blank fields are left unchanged.
// @Tags Authentication
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.UpdateProfileRequest true "Update Request"
// @Success 200 {object} models.Response{data=models.UserWithProfile}
// @Router /auth/profile [patch]
func (ctrl *AuthController) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	profile, err := ctrl.auth.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	respondOK(c, http.StatusOK, "Profile updated", profile)
}

// UpdateProfilePhoto godoc
// @Summary Update profile photo
// @Description Upload profile photo
// @Tags Authentication
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param photo formData file true "Photo file"
// @Success 200 {object} models.Response{data=models.UserWithProfile}
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/profile/photo [post]
func (ctrl *AuthController) UpdateProfilePhoto(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		respondError(c, ctrl.log, models.ValidationError("Photo required"))
		return
	}

	profile, err := ctrl.auth.UpdateProfilePhoto(c.Request.Context(), userID, file)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	respondOK(c, http.StatusOK, "Photo updated", profile)
}

// ChangePassword godoc
// @Summary Change password
// @Description Change user password
// @Tags Authentication
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.ChangePasswordRequest true "Password Request"
// @Success 200 {object} models.Response
// @Router /auth/change-password [post]
func (ctrl *AuthController) ChangePassword(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := ctrl.auth.ChangePassword(c.Request.Context(), userID, req); err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	respondOK(c, http.StatusOK, "Password changed", nil)
}

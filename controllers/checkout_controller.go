package controllers

import (
	"net/http"

	"food-order/logger"
	"food-order/middleware"
	"food-order/models"
	"food-order/services"

	"github.com/gin-gonic/gin"
)

type CheckoutController struct {
	checkout *services.CheckoutService
	log      *logger.Logger
}

func NewCheckoutController(checkout *services.CheckoutService, log *logger.Logger) *CheckoutController {
	return &CheckoutController{checkout: checkout, log: log}
}

// Checkout godoc
// @Summary Place order
// @Description Charges the current cart. The cart is cleared only when payment succeeds.
// @Tags Checkout
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.CheckoutRequest true "Payment details"
// @Success 201 {object} models.Response{data=models.CheckoutResponse}
// @Failure 400 {object} models.ErrorResponse
// @Failure 402 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /checkout [post]
func (ctrl *CheckoutController) Checkout(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	session := models.Session{
		UserID: userID,
		Email:  c.GetString(middleware.ContextUserEmail),
	}

	resp, err := ctrl.checkout.Checkout(c.Request.Context(), session, req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	respondOK(c, http.StatusCreated, "Order placed successfully", resp)
}

package controllers

import (
	"net/http"

	"food-order/logger"
	"food-order/middleware"
	"food-order/models"
	"food-order/services"

	"github.com/gin-gonic/gin"
)

type PaymentController struct {
	payments *services.PaymentService
	log      *logger.Logger
}

func NewPaymentController(payments *services.PaymentService, log *logger.Logger) *PaymentController {
	return &PaymentController{payments: payments, log: log}
}

// GetPayments godoc
// @Summary Payment history
// @Description Payment attempts of the signed-in user with their status (Pending, Success, Failed), newest first
// @Tags Payments
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} models.HATEOASResponse{data=[]models.Payment}
// @Router /payments [get]
func (ctrl *PaymentController) GetPayments(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	page, limit := getPaginationParams(c, 10)
	payments, meta, err := ctrl.payments.ListByUser(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	c.JSON(http.StatusOK, models.HATEOASResponse{
		Success: true,
		Message: "Payments retrieved",
		Data:    payments,
		Meta:    meta,
		Links:   generateLinks(c, meta.Page, meta.Limit, meta.TotalPages),
	})
}

package controllers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"food-order/logger"
	"food-order/middleware"
	"food-order/models"
	"food-order/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderController struct {
	orders *services.OrderService
	log    *logger.Logger
}

func NewOrderController(orders *services.OrderService, log *logger.Logger) *OrderController {
	return &OrderController{orders: orders, log: log}
}

func getPaginationParams(c *gin.Context, defaultLimit int) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}

func generateLinks(c *gin.Context, page, limit, totalPages int) models.PaginationLinks {
	scheme := "https"
	if c.Request.TLS == nil {
		scheme = "http"
	}

	host := c.Request.Host
	path := c.Request.URL.Path
	queryParams := c.Request.URL.Query()

	makeURL := func(pageNum int) string {
		newParams := url.Values{}
		for key, values := range queryParams {
			if key == "page" || key == "limit" {
				continue
			}
			for _, value := range values {
				newParams.Add(key, value)
			}
		}
		newParams.Set("page", strconv.Itoa(pageNum))
		newParams.Set("limit", strconv.Itoa(limit))
		return fmt.Sprintf("%s://%s%s?%s", scheme, host, path, newParams.Encode())
	}

	links := models.PaginationLinks{
		Self: makeURL(page),
	}
	if page > 1 {
		links.Prev = makeURL(page - 1)
	}
	if page < totalPages {
		links.Next = makeURL(page + 1)
	}
	return links
}

// GetOrders godoc
// @Summary Order history
// @Description Completed orders of the signed-in user, newest first
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} models.HATEOASResponse{data=[]models.Order}
// @Router /orders [get]
func (ctrl *OrderController) GetOrders(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	page, limit := getPaginationParams(c, 10)
	orders, meta, err := ctrl.orders.ListByUser(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	c.JSON(http.StatusOK, models.HATEOASResponse{
		Success: true,
		Message: "Orders retrieved",
		Data:    orders,
		Meta:    meta,
		Links:   generateLinks(c, meta.Page, meta.Limit, meta.TotalPages),
	})
}

// GetOrderByID godoc
// @Summary Order detail
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} models.Response{data=models.Order}
// @Failure 404 {object} models.ErrorResponse
// @Router /orders/{id} [get]
func (ctrl *OrderController) GetOrderByID(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, ctrl.log, models.ValidationError("invalid order id"))
		return
	}

	order, err := ctrl.orders.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	respondOK(c, http.StatusOK, "Order retrieved", order)
}

package controllers

import (
	"net/http"
	"strings"

	"food-order/logger"
	"food-order/models"
	"food-order/services"

	"github.com/gin-gonic/gin"
)

type CartController struct {
	ledger   *services.CartLedger
	stores   *services.StoreService
	checkout *services.CheckoutService
	log      *logger.Logger
}

func NewCartController(ledger *services.CartLedger, stores *services.StoreService, checkout *services.CheckoutService, log *logger.Logger) *CartController {
	return &CartController{ledger: ledger, stores: stores, checkout: checkout, log: log}
}

// GetCart godoc
// @Summary Get cart
// @Description Current cart items, item count and totals
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response{data=models.CartSnapshot}
// @Router /cart [get]
func (ctrl *CartController) GetCart(c *gin.Context) {
	respondOK(c, http.StatusOK, "Cart retrieved", ctrl.checkout.Snapshot())
}

// GetTotals godoc
// @Summary Get cart totals
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response{data=models.OrderTotals}
// @Router /cart/totals [get]
func (ctrl *CartController) GetTotals(c *gin.Context) {
	respondOK(c, http.StatusOK, "Totals calculated", ctrl.checkout.Totals())
}

// AddItem godoc
// @Summary Add item to cart
// @Description Adds one unit of a menu item. Adding an item already in the cart increments its quantity.
// @Tags Cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.AddCartItemRequest true "Item to add"
// @Success 201 {object} models.Response{data=models.CartMutationResponse}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /cart/items [post]
func (ctrl *CartController) AddItem(c *gin.Context) {
	var req models.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	store, item, err := ctrl.stores.GetMenuItem(ctx, strings.TrimSpace(req.StoreID), strings.TrimSpace(req.ItemID))
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	lineItem, err := ctrl.ledger.AddItem(ctx, *item, store.ID, store.Name)
	resp := models.CartMutationResponse{Item: &lineItem}
	if err != nil {
		if !models.HasCode(err, models.CodePersistence) {
			respondError(c, ctrl.log, err)
			return
		}
		ctrl.log.Warn(ctx, "item added but cart not saved", err)
		resp.Warning = "Item added but the cart could not be saved"
	}
	resp.Cart = ctrl.checkout.Snapshot()

	respondOK(c, http.StatusCreated, "Item added to cart", resp)
}

// UpdateQuantity godoc
// @Summary Update item quantity
// @Description Sets the quantity of a cart row. Zero or less removes the row.
// @Tags Cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param itemId path string true "Item ID"
// @Param request body models.UpdateQuantityRequest true "New quantity"
// @Success 200 {object} models.Response{data=models.CartMutationResponse}
// @Failure 400 {object} models.ErrorResponse
// @Router /cart/items/{itemId} [patch]
func (ctrl *CartController) UpdateQuantity(c *gin.Context) {
	var req models.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctrl.mutate(c, "Cart updated", func() error {
		return ctrl.ledger.UpdateQuantity(c.Request.Context(), c.Param("itemId"), *req.Quantity)
	})
}

// RemoveItem godoc
// @Summary Remove item from cart
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Param itemId path string true "Item ID"
// @Success 200 {object} models.Response{data=models.CartMutationResponse}
// @Router /cart/items/{itemId} [delete]
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	ctrl.mutate(c, "Item removed from cart", func() error {
		return ctrl.ledger.RemoveItem(c.Request.Context(), c.Param("itemId"))
	})
}

// ClearCart godoc
// @Summary Clear cart
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response{data=models.CartMutationResponse}
// @Router /cart [delete]
func (ctrl *CartController) ClearCart(c *gin.Context) {
	ctrl.mutate(c, "Cart cleared", func() error {
		return ctrl.ledger.Clear(c.Request.Context())
	})
}

func (ctrl *CartController) mutate(c *gin.Context, message string, fn func() error) {
	if err := fn(); err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	respondOK(c, http.StatusOK, message, models.CartMutationResponse{Cart: ctrl.checkout.Snapshot()})
}

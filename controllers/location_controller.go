package controllers

import (
	"net/http"

	"food-order/logger"
	"food-order/models"
	"food-order/services"

	"github.com/gin-gonic/gin"
)

type LocationController struct {
	locations *services.LocationService
	log       *logger.Logger
}

func NewLocationController(locations *services.LocationService, log *logger.Logger) *LocationController {
	return &LocationController{locations: locations, log: log}
}

// UpdateLocation godoc
// @Summary Report device location
// @Tags Location
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.LocationRequest true "Coordinates"
// @Success 200 {object} models.Response{data=models.UserLocation}
// @Failure 400 {object} models.ErrorResponse
// @Router /location [put]
func (ctrl *LocationController) UpdateLocation(c *gin.Context) {
	var req models.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	location, err := ctrl.locations.UpdateLocation(c.Request.Context(), models.Coordinate{
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
	})
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	respondOK(c, http.StatusOK, "Location updated", location)
}

// GetLocation godoc
// @Summary Last known location
// @Description Returns 404 when no location was reported in the last 15 minutes
// @Tags Location
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response{data=models.UserLocation}
// @Failure 404 {object} models.ErrorResponse
// @Router /location [get]
func (ctrl *LocationController) GetLocation(c *gin.Context) {
	location, err := ctrl.locations.LastKnownLocation(c.Request.Context())
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	respondOK(c, http.StatusOK, "Location retrieved", location)
}

// GetCurrentAddress godoc
// @Summary Address of current location
// @Tags Location
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /location/address [get]
func (ctrl *LocationController) GetCurrentAddress(c *gin.Context) {
	address, err := ctrl.locations.CurrentAddress(c.Request.Context())
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	respondOK(c, http.StatusOK, "Address retrieved", gin.H{"address": address})
}

// SaveDeliveryAddress godoc
// @Summary Set delivery address
// @Description Geocodes and stores the delivery address
// @Tags Location
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.DeliveryAddressRequest true "Address"
// @Success 200 {object} models.Response{data=models.DeliveryAddress}
// @Failure 404 {object} models.ErrorResponse
// @Router /location/delivery-address [put]
func (ctrl *LocationController) SaveDeliveryAddress(c *gin.Context) {
	var req models.DeliveryAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	address, err := ctrl.locations.SaveDeliveryAddress(c.Request.Context(), req.Address)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	respondOK(c, http.StatusOK, "Delivery address saved", address)
}

// GetDeliveryAddress godoc
// @Summary Get delivery address
// @Tags Location
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response{data=models.DeliveryAddress}
// @Failure 404 {object} models.ErrorResponse
// @Router /location/delivery-address [get]
func (ctrl *LocationController) GetDeliveryAddress(c *gin.Context) {
	address, err := ctrl.locations.DeliveryAddress(c.Request.Context())
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	respondOK(c, http.StatusOK, "Delivery address retrieved", address)
}

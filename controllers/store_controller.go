package controllers

import (
	"net/http"
	"strconv"

	"food-order/logger"
	"food-order/models"
	"food-order/services"

	"github.com/gin-gonic/gin"
)

type StoreController struct {
	stores    *services.StoreService
	locations *services.LocationService
	log       *logger.Logger
}

// NewStoreController builds the catalog endpoints. locations may be nil, in
// which case only an explicit lat/lng enables distance sorting.
func NewStoreController(stores *services.StoreService, locations *services.LocationService, log *logger.Logger) *StoreController {
	return &StoreController{stores: stores, locations: locations, log: log}
}

// origin reads lat/lng from the query string and falls back to the last
// known device location.
func (ctrl *StoreController) origin(c *gin.Context) (*models.Coordinate, error) {
	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr != "" || lngStr != "" {
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lng, errLng := strconv.ParseFloat(lngStr, 64)
		if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			return nil, models.ValidationError("lat and lng must be valid coordinates")
		}
		return &models.Coordinate{Latitude: lat, Longitude: lng}, nil
	}

	if ctrl.locations == nil {
		return nil, nil
	}
	location, err := ctrl.locations.LastKnownLocation(c.Request.Context())
	if err != nil {
		return nil, nil
	}
	coord := location.Coordinate()
	return &coord, nil
}

// GetCategories godoc
// @Summary List categories
// @Tags Stores
// @Produce json
// @Success 200 {object} models.Response{data=[]models.Category}
// @Router /categories [get]
func (ctrl *StoreController) GetCategories(c *gin.Context) {
	categories, err := ctrl.stores.Categories(c.Request.Context())
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	respondOK(c, http.StatusOK, "Categories retrieved", categories)
}

// GetStores godoc
// @Summary List stores
// @Description Filter by search text and category. With a location the results carry distances and sort nearest first.
// @Tags Stores
// @Produce json
// @Param search query string false "Search store name, description or menu"
// @Param category query string false "Category ID"
// @Param lat query number false "Latitude"
// @Param lng query number false "Longitude"
// @Param sort query string false "distance or rating"
// @Success 200 {object} models.Response{data=[]models.StoreListing}
// @Failure 400 {object} models.ErrorResponse
// @Router /stores [get]
func (ctrl *StoreController) GetStores(c *gin.Context) {
	origin, err := ctrl.origin(c)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	listings, err := ctrl.stores.ListStores(c.Request.Context(), models.StoreQuery{
		Search:     c.Query("search"),
		CategoryID: c.Query("category"),
		Origin:     origin,
		SortBy:     c.Query("sort"),
	})
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	respondOK(c, http.StatusOK, "Stores retrieved", listings)
}

// GetStoreByID godoc
// @Summary Get store
// @Description Store details and full menu
// @Tags Stores
// @Produce json
// @Param id path string true "Store ID"
// @Param lat query number false "Latitude"
// @Param lng query number false "Longitude"
// @Success 200 {object} models.Response{data=models.StoreListing}
// @Failure 404 {object} models.ErrorResponse
// @Router /stores/{id} [get]
func (ctrl *StoreController) GetStoreByID(c *gin.Context) {
	origin, err := ctrl.origin(c)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	store, err := ctrl.stores.GetStore(c.Request.Context(), c.Param("id"), origin)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	respondOK(c, http.StatusOK, "Store retrieved", store)
}

// GetRecentSearches godoc
// @Summary Recent searches
// @Tags Stores
// @Produce json
// @Success 200 {object} models.Response{data=[]string}
// @Router /search/recent [get]
func (ctrl *StoreController) GetRecentSearches(c *gin.Context) {
	searches, err := ctrl.stores.RecentSearches(c.Request.Context())
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	respondOK(c, http.StatusOK, "Recent searches retrieved", searches)
}

// ClearRecentSearches godoc
// @Summary Clear recent searches
// @Tags Stores
// @Produce json
// @Success 200 {object} models.Response
// @Router /search/recent [delete]
func (ctrl *StoreController) ClearRecentSearches(c *gin.Context) {
	if err := ctrl.stores.ClearRecentSearches(c.Request.Context()); err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	respondOK(c, http.StatusOK, "Recent searches cleared", nil)
}

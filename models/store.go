package models

import "time"

type Coordinate struct {
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type Store struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Address     string        `json:"address"`
	Image       string        `json:"image"`
	Rating      float64       `json:"rating"`
	Coordinate  Coordinate    `json:"coordinate"`
	Items       []CatalogItem `json:"items"`
}

// StoreListing is a store as shown in listings, optionally annotated with
// its distance from the caller.
type StoreListing struct {
	Store
	DistanceKm        *float64 `json:"distanceKm,omitempty"`
	FormattedDistance string   `json:"formattedDistance,omitempty"`
}

const (
	SortByDistance = "distance"
	SortByRating   = "rating"
)

type StoreQuery struct {
	Search     string
	CategoryID string
	Origin     *Coordinate
	SortBy     string
}

// UserLocation is the device position as last reported by the client.
type UserLocation struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

func (l UserLocation) Coordinate() Coordinate {
	return Coordinate{Latitude: l.Latitude, Longitude: l.Longitude}
}

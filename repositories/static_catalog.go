package repositories

import (
	"context"

	"food-order/models"

	"github.com/shopspring/decimal"
)

// StaticCatalog serves the built-in catalog when no database is configured.
// It holds the same rows as the seed migration.
type StaticCatalog struct {
	stores     []models.Store
	categories []models.Category
}

func NewStaticCatalog() *StaticCatalog {
	return &StaticCatalog{stores: seedStores(), categories: seedCategories()}
}

func (c *StaticCatalog) GetAllStores(_ context.Context) ([]models.Store, error) {
	out := make([]models.Store, len(c.stores))
	for i, s := range c.stores {
		s.Items = append([]models.CatalogItem(nil), s.Items...)
		out[i] = s
	}
	return out, nil
}

func (c *StaticCatalog) GetAllCategories(_ context.Context) ([]models.Category, error) {
	return append([]models.Category(nil), c.categories...), nil
}

func item(id, name, price, image string) models.CatalogItem {
	return models.CatalogItem{ID: id, Name: name, Price: decimal.RequireFromString(price), Image: image}
}

func seedStores() []models.Store {
	return []models.Store{
		{
			ID:          "1",
			Name:        "Taste of Italy",
			Description: "Authentic Italian cuisine with homemade pasta and wood-fired pizza",
			Address:     "123 Main St, Halifax, NS",
			Image:       "https://example.com/italian-restaurant.jpg",
			Rating:      4.7,
			Coordinate:  models.Coordinate{Latitude: 44.6488, Longitude: -63.5752},
			Items: []models.CatalogItem{
				item("101", "Margherita Pizza", "14.99", "https://example.com/pizza.jpg"),
				item("102", "Spaghetti Carbonara", "16.99", "https://example.com/pasta.jpg"),
				item("103", "Tiramisu", "7.99", "https://example.com/tiramisu.jpg"),
			},
		},
		{
			ID:          "2",
			Name:        "Spice Garden",
			Description: "Flavorful Indian cuisine with a wide range of vegetarian options",
			Address:     "456 Spring Garden Rd, Halifax, NS",
			Image:       "https://example.com/indian-restaurant.jpg",
			Rating:      4.5,
			Coordinate:  models.Coordinate{Latitude: 44.6427, Longitude: -63.5753},
			Items: []models.CatalogItem{
				item("201", "Butter Chicken", "17.99", "https://example.com/butter-chicken.jpg"),
				item("202", "Vegetable Biryani", "15.99", "https://example.com/biryani.jpg"),
				item("203", "Garlic Naan", "3.99", "https://example.com/naan.jpg"),
			},
		},
		{
			ID:          "3",
			Name:        "Sushi Wave",
			Description: "Fresh and creative Japanese sushi and sashimi",
			Address:     "789 Barrington St, Halifax, NS",
			Image:       "https://example.com/sushi-restaurant.jpg",
			Rating:      4.8,
			Coordinate:  models.Coordinate{Latitude: 44.6388, Longitude: -63.5717},
			Items: []models.CatalogItem{
				item("301", "Dragon Roll", "12.99", "https://example.com/dragon-roll.jpg"),
				item("302", "Salmon Sashimi", "15.99", "https://example.com/sashimi.jpg"),
				item("303", "Miso Soup", "4.99", "https://example.com/miso.jpg"),
			},
		},
		{
			ID:          "4",
			Name:        "Burger Joint",
			Description: "Gourmet burgers with fresh local ingredients",
			Address:     "101 Quinpool Rd, Halifax, NS",
			Image:       "https://example.com/burger-restaurant.jpg",
			Rating:      4.3,
			Coordinate:  models.Coordinate{Latitude: 44.6505, Longitude: -63.5908},
			Items: []models.CatalogItem{
				item("401", "Classic Cheeseburger", "13.99", "https://example.com/cheeseburger.jpg"),
				item("402", "Truffle Fries", "6.99", "https://example.com/fries.jpg"),
				item("403", "Chocolate Milkshake", "5.99", "https://example.com/milkshake.jpg"),
			},
		},
		{
			ID:          "5",
			Name:        "Taco Fiesta",
			Description: "Authentic Mexican tacos and burritos",
			Address:     "222 Robie St, Halifax, NS",
			Image:       "https://example.com/mexican-restaurant.jpg",
			Rating:      4.6,
			Coordinate:  models.Coordinate{Latitude: 44.6540, Longitude: -63.5830},
			Items: []models.CatalogItem{
				item("501", "Street Tacos (3)", "11.99", "https://example.com/tacos.jpg"),
				item("502", "Chicken Burrito", "12.99", "https://example.com/burrito.jpg"),
				item("503", "Guacamole & Chips", "7.99", "https://example.com/guacamole.jpg"),
			},
		},
	}
}

func seedCategories() []models.Category {
	return []models.Category{
		{ID: "1", Name: "Pizza", Icon: "pizza-outline"},
		{ID: "2", Name: "Burgers", Icon: "fast-food-outline"},
		{ID: "3", Name: "Sushi", Icon: "restaurant-outline"},
		{ID: "4", Name: "Drinks", Icon: "cafe-outline"},
		{ID: "5", Name: "Desserts", Icon: "ice-cream-outline"},
	}
}

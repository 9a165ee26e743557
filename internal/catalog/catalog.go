// Package catalog serves the salon's static service menu, locations and reviews.
package catalog

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Service is one menu entry. PriceINR is in whole rupees.
type Service struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceINR    int    `json:"price_inr"`
	Price       string `json:"price"`
}

// Review is a published customer quote.
type Review struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// Catalog is the public salon information.
type Catalog struct {
	Services  []Service `json:"services"`
	Locations []string  `json:"locations"`
	Reviews   []Review  `json:"reviews"`
}

// Default returns the salon's published catalog.
func Default() Catalog {
	return Catalog{
		Services: []Service{
			{Name: "Haircut", Description: "Precision cuts", PriceINR: 799, Price: "₹799"},
			{Name: "Hair Color", Description: "Balayage & full color", PriceINR: 2499, Price: "₹2499"},
			{Name: "Facial", Description: "Luxury facials", PriceINR: 1299, Price: "₹1299"},
			{Name: "Nails", Description: "Manicure & pedicure", PriceINR: 699, Price: "₹699"},
		},
		Locations: []string{"Mumbai", "Hyderabad", "Kolkata", "Pune", "Indore"},
		Reviews: []Review{
			{Name: "Ritu Mishra", Text: "Absolutely LOVE the services here."},
			{Name: "Aanchal Wadhwani", Text: "Fantastic experience, highly recommended!"},
		},
	}
}

// FindService looks a service up by case-insensitive name.
func (c Catalog) FindService(name string) (Service, bool) {
	for _, s := range c.Services {
		if strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return s, true
		}
	}
	return Service{}, false
}

// Handler serves GET /api/catalog.
type Handler struct {
	catalog Catalog
}

// NewHandler creates a handler for c.
func NewHandler(c Catalog) *Handler {
	return &Handler{catalog: c}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=300")
	json.NewEncoder(w).Encode(h.catalog)
}

package models

import "time"

// Availability is the rental state of a motorcycle. It is kept in sync with
// reservation status by the reservation workflow, not by the database.
type Availability string

// Motorcycle availability values, stored verbatim in the motorcycles collection
const (
	AvailabilityAvailable   Availability = "Available"
	AvailabilityReserved    Availability = "Reserved"
	AvailabilityMaintenance Availability = "In Maintenance"
)

// Valid reports whether a is one of the known availability values
func (a Availability) Valid() bool {
	switch a {
	case AvailabilityAvailable, AvailabilityReserved, AvailabilityMaintenance:
		return true
	}
	return false
}

// MotorcycleRow holds the structure for the motorcycles collection in mongo
type MotorcycleRow struct {
	ID            string    `bson:"_id"`
	Name          string    `bson:"name"`
	Brand         string    `bson:"brand"`
	Model         string    `bson:"model"`
	Year          int       `bson:"year"`
	EngineCC      int       `bson:"engine_cc"`
	Transmission  string    `bson:"transmission"`
	Color         string    `bson:"color"`
	Description   string    `bson:"description"`
	PricePerDay   float64   `bson:"price_per_day"`
	Availability  string    `bson:"availability"`
	ImageURL      string    `bson:"image_url"`
	ImagePublicID string    `bson:"image_public_id"`
	Features      []string  `bson:"features"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

// Motorcycle is the application shape of a fleet entry
type Motorcycle struct {
	ID            string       `json:"id"`
	Name          string       `json:"name" validate:"required,max=120"`
	Brand         string       `json:"brand" validate:"required,max=60"`
	Model         string       `json:"model" validate:"max=60"`
	Year          int          `json:"year" validate:"omitempty,gte=1950,lte=2100"`
	EngineCC      int          `json:"engineCc" validate:"omitempty,gt=0"`
	Transmission  string       `json:"transmission" validate:"omitempty,oneof=Manual Automatic Semi-Automatic"`
	Color         string       `json:"color"`
	Description   string       `json:"description" validate:"max=2000"`
	PricePerDay   float64      `json:"pricePerDay" validate:"gt=0"`
	Availability  Availability `json:"availability"`
	ImageURL      string       `json:"imageUrl"`
	ImagePublicID string       `json:"imagePublicId"`
	Features      []string     `json:"features"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// MotorcycleFilter narrows the fleet listing
type MotorcycleFilter struct {
	Availability Availability `json:"availability,omitempty"`
	Brand        string       `json:"brand,omitempty"`
	Search       string       `json:"search,omitempty"`
	MaxPrice     float64      `json:"maxPrice,omitempty"`
}

package location

import "time"

// House is the building managed by this deployment.
type House struct {
	ID        string    `json:"id"`
	Location  Location  `json:"location"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Location combines the postal address of a house with its coordinates.
type Location struct {
	Address Address `json:"address"`
	GPS     GPS     `json:"gps"`
}

// Address is a postal address.
type Address struct {
	Street  string `json:"street"`
	Door    string `json:"door"`
	ZipCode string `json:"zip_code"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// GPS is a WGS84 coordinate.
type GPS struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Room is a physical space inside the house. Its ID is the room name.
type Room struct {
	ID         string     `json:"id"`
	HouseID    string     `json:"house_id"`
	Floor      int        `json:"floor"`
	Dimensions Dimensions `json:"dimensions"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Dimensions are the room's interior measurements in metres.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns the floor area in square metres.
func (d Dimensions) Area() float64 {
	return d.Length * d.Width
}

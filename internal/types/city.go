package types

// City is a single row of the city directory.
type City struct {
	Name       string  `json:"name"`
	Country    string  `json:"country"`
	Population int64   `json:"population"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

// CityCard is a City prepared for the listing grid.
type CityCard struct {
	City
	ImageURL    string `json:"image_url"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
}

package domain

// FlightSummary is the display projection of a flight document.
type FlightSummary struct {
	ID           string `json:"id"`
	Airline      string `json:"airline"`
	FlightNumber string `json:"flight_number"`
	Route        string `json:"route"`
	Departure    string `json:"departure"`
	Arrival      string `json:"arrival"`
	Duration     string `json:"duration"`
	Price        string `json:"price"`
}

// IsEmpty reports whether no field besides the id was resolved.
func (f FlightSummary) IsEmpty() bool {
	return f == FlightSummary{ID: f.ID}
}

// HotelSummary is the display projection of a hotel offer document.
type HotelSummary struct {
	ID            string `json:"id"`
	HotelID       string `json:"hotelId"`
	Name          string `json:"name"`
	Location      string `json:"location"`
	CheckIn       string `json:"check_in"`
	CheckOut      string `json:"check_out"`
	Nights        string `json:"nights"`
	PricePerNight string `json:"price_per_night"`
	OverallPrice  string `json:"overall_price"`
}

// IsEmpty reports whether no field besides the id was resolved.
func (h HotelSummary) IsEmpty() bool {
	return h == HotelSummary{ID: h.ID}
}

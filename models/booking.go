package models

import "time"

// BookingDetails is the draft booking carried across conversation turns.
// Fields are pointers so an absent or null value in a model reply can be
// told apart from an empty string during the merge.
type BookingDetails struct {
	StartingPoint *string `json:"starting_point" bson:"starting_point"`
	Destination   *string `json:"destination" bson:"destination"`
	Date          *string `json:"date" bson:"date"`                       // "YYYY-MM-DD"
	DepartureTime *string `json:"departure_time" bson:"departure_time"`   // "HH:MM"
	SeatNumber    *string `json:"seat_number" bson:"seat_number"`         // e.g. "1A"
	CustomerName  *string `json:"customer_name" bson:"customer_name"`
	PhoneNumber   *string `json:"phone_number" bson:"phone_number"`
	Confirmed     bool    `json:"confirmed" bson:"confirmed"`
}

// Merge returns a copy of d enriched with the non-null, non-empty fields of
// update. A null or empty field in update never erases an existing value;
// Confirmed only ever flips to true here (a session reset clears it).
func (d BookingDetails) Merge(update BookingDetails) BookingDetails {
	merged := d
	if update.StartingPoint != nil && *update.StartingPoint != "" {
		merged.StartingPoint = update.StartingPoint
	}
	if update.Destination != nil && *update.Destination != "" {
		merged.Destination = update.Destination
	}
	if update.Date != nil && *update.Date != "" {
		merged.Date = update.Date
	}
	if update.DepartureTime != nil && *update.DepartureTime != "" {
		merged.DepartureTime = update.DepartureTime
	}
	if update.SeatNumber != nil && *update.SeatNumber != "" {
		merged.SeatNumber = update.SeatNumber
	}
	if update.CustomerName != nil && *update.CustomerName != "" {
		merged.CustomerName = update.CustomerName
	}
	if update.PhoneNumber != nil && *update.PhoneNumber != "" {
		merged.PhoneNumber = update.PhoneNumber
	}
	if update.Confirmed {
		merged.Confirmed = true
	}
	return merged
}

// Booking represents a committed booking record. It is never mutated after
// creation.
type Booking struct {
	ID               string    `bson:"id" json:"booking_id"`
	ConfirmationCode string    `bson:"confirmation_code" json:"confirmation_code"`
	StartingPoint    string    `bson:"starting_point" json:"starting_point"`
	Destination      string    `bson:"destination" json:"destination"`
	Date             string    `bson:"date" json:"date"`
	DepartureTime    string    `bson:"departure_time" json:"departure_time"`
	SeatNumber       string    `bson:"seat_number" json:"seat_number"`
	CustomerName     string    `bson:"customer_name" json:"customer_name"`
	PhoneNumber      string    `bson:"phone_number" json:"phone_number"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
}

// BusSchedule describes one departure on a route.
type BusSchedule struct {
	DepartureTime string  `bson:"departure_time" json:"departure_time"`
	BusType       string  `bson:"bus_type" json:"bus_type"`
	Duration      string  `bson:"duration" json:"duration"`
	Fare          float64 `bson:"fare" json:"fare"`
}

// RouteSlot is one bookable unit: a route, date and departure time, plus the
// schedule metadata and the count of seats still open.
type RouteSlot struct {
	Origin         string      `bson:"origin" json:"origin"`
	Destination    string      `bson:"destination" json:"destination"`
	Date           string      `bson:"date" json:"date"`
	Schedule       BusSchedule `bson:"schedule" json:"schedule"`
	AvailableSeats int         `bson:"available_seats" json:"available_seats"`
}

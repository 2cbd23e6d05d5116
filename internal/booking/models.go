package booking

import "time"

type CampgroundSummary struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	Telephone string `json:"telephone"`
	Zipcode   string `json:"zipcode"`
}

type Booking struct {
	ID             string             `json:"id"`
	UserID         string             `json:"user_id"`
	CampgroundID   string             `json:"campground_id"`
	StartDate      time.Time          `json:"start_date"`
	EndDate        time.Time          `json:"end_date"`
	NumberOfPeople int                `json:"number_of_people"`
	CreatedAt      time.Time          `json:"created_at"`
	Campground     *CampgroundSummary `json:"campground,omitempty"`
}

func (b Booking) Stay() Stay {
	return Stay{Start: b.StartDate, End: b.EndDate}
}

// CreateInput is the body of POST /bookings. UserID defaults to the caller.
type CreateInput struct {
	UserID         string `json:"user_id"`
	CampgroundID   string `json:"campground_id" validate:"required"`
	StartDate      string `json:"start_date" validate:"required"`
	EndDate        string `json:"end_date" validate:"required"`
	NumberOfPeople int    `json:"number_of_people" validate:"required,gte=1,lte=1000"`
}

// Patch holds the fields of PUT /bookings/:id; zero values are left unchanged.
type Patch struct {
	CampgroundID   string `json:"campground_id"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	NumberOfPeople int    `json:"number_of_people" validate:"omitempty,gte=1,lte=1000"`
}

// Upcoming is a booking starting on a given date, joined with what the
// notification job needs to reach its owner.
type Upcoming struct {
	Booking
	OwnerEmail     string `json:"owner_email"`
	OwnerName      string `json:"owner_name"`
	CampgroundName string `json:"campground_name"`
	Zipcode        string `json:"zipcode"`
}

// Event is published on the campground activity feed after a mutation.
type Event struct {
	Type    string  `json:"type"`
	Booking Booking `json:"booking"`
}

const (
	EventCreated = "booking.created"
	EventUpdated = "booking.updated"
	EventDeleted = "booking.deleted"
)

package campground

import "time"

type Campground struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Zipcode   string    `json:"zipcode"`
	Telephone string    `json:"telephone"`
	CreatedAt time.Time `json:"created_at"`
}

type Input struct {
	Name      string `json:"name" validate:"required,max=50"`
	Address   string `json:"address" validate:"required"`
	Zipcode   string `json:"zipcode" validate:"required"`
	Telephone string `json:"telephone"`
}

type Patch struct {
	Name      string `json:"name" validate:"omitempty,max=50"`
	Address   string `json:"address"`
	Zipcode   string `json:"zipcode"`
	Telephone string `json:"telephone"`
}

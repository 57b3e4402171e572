package model

import "time"

type Hostel struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Location  string    `json:"location" bson:"location" validate:"required,min=2,max=200"`
	Capacity  int       `json:"capacity" bson:"capacity" validate:"required,min=1,max=10000"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

package model

import "time"

const (
	RoomTypeSingle = "single"
	RoomTypeDouble = "double"
	RoomTypeShared = "shared"
	RoomTypeSuite  = "suite"
)

// Room is a bookable unit of a hostel. IsAvailable is the admin-controlled
// listing flag; IsOccupied is written only by the booking lifecycle.
type Room struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	HostelID    string    `json:"hostelId" bson:"hostel_id" validate:"required,mongodb"`
	RoomNumber  string    `json:"roomNumber" bson:"room_number" validate:"required,min=1,max=20"`
	RoomType    string    `json:"roomType" bson:"room_type" validate:"required,oneof=single double shared suite"`
	Capacity    int       `json:"capacity" bson:"capacity" validate:"required,min=1,max=20"`
	Price       float64   `json:"price" bson:"price" validate:"required,gt=0"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=1000"`
	Images      []string  `json:"images" bson:"images" validate:"omitempty,max=10,dive,url"`
	Amenities   []string  `json:"amenities" bson:"amenities" validate:"omitempty,max=30,dive,required,max=50"`
	IsAvailable bool      `json:"isAvailable" bson:"is_available"`
	IsOccupied  bool      `json:"isOccupied" bson:"is_occupied"`
	CreatedBy   string    `json:"createdBy,omitempty" bson:"created_by,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updated_at"`
}

// RoomCreate is the admin payload for a new room. The hostel comes from the
// admin's credential, never from the body.
type RoomCreate struct {
	RoomNumber  string   `json:"roomNumber" validate:"required,min=1,max=20"`
	RoomType    string   `json:"roomType" validate:"required,oneof=single double shared suite"`
	Capacity    int      `json:"capacity" validate:"required,min=1,max=20"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Description string   `json:"description,omitempty" validate:"omitempty,max=1000"`
	Images      []string `json:"images,omitempty" validate:"omitempty,max=10,dive,url"`
	Amenities   []string `json:"amenities,omitempty" validate:"omitempty,max=30,dive,required,max=50"`
	IsAvailable *bool    `json:"isAvailable,omitempty"`
}

// RoomUpdate has no occupancy field: occupancy changes only through bookings.
type RoomUpdate struct {
	RoomNumber  *string   `json:"roomNumber,omitempty" validate:"omitempty,min=1,max=20"`
	RoomType    *string   `json:"roomType,omitempty" validate:"omitempty,oneof=single double shared suite"`
	Capacity    *int      `json:"capacity,omitempty" validate:"omitempty,min=1,max=20"`
	Price       *float64  `json:"price,omitempty" validate:"omitempty,gt=0"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=1000"`
	Images      *[]string `json:"images,omitempty" validate:"omitempty,max=10,dive,url"`
	Amenities   *[]string `json:"amenities,omitempty" validate:"omitempty,max=30,dive,required,max=50"`
	IsAvailable *bool     `json:"isAvailable,omitempty"`
}

func (u *RoomUpdate) IsEmpty() bool {
	return u.RoomNumber == nil && u.RoomType == nil && u.Capacity == nil && u.Price == nil &&
		u.Description == nil && u.Images == nil && u.Amenities == nil && u.IsAvailable == nil
}

// RoomDetails is a room with its hostel resolved, as shown to students.
type RoomDetails struct {
	Room   `bson:",inline"`
	Hostel *Hostel `json:"hostel,omitempty" bson:"hostel,omitempty"`
}

package mongo

const (
	UsersCollection     = "Users"
	HostelsCollection   = "Hostels"
	RoomsCollection     = "Rooms"
	BookingsCollection  = "Bookings"
	RoomLocksCollection = "Room_locks"
)

// Index names referenced when translating duplicate-key errors.
const (
	IndexUniqueUserEmail           = "uniq_user_email"
	IndexUniqueHostelName          = "uniq_hostel_name"
	IndexUniqueRoomNumberPerHostel = "uniq_room_number_per_hostel"
	IndexActiveBookingPerStudent   = "uniq_active_booking_per_student"
	IndexActiveBookingPerRoom      = "uniq_active_booking_per_room"
)

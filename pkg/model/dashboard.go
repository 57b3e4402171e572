package model

type DashboardStats struct {
	TotalRooms       int64             `json:"totalRooms"`
	OccupiedRooms    int64             `json:"occupiedRooms"`
	AvailableRooms   int64             `json:"availableRooms"`
	PendingBookings  int64             `json:"pendingBookings"`
	ApprovedBookings int64             `json:"approvedBookings"`
	RejectedBookings int64             `json:"rejectedBookings"`
	TotalStudents    int               `json:"totalStudents"`
	RecentBookings   []*BookingDetails `json:"recentBookings"`
}

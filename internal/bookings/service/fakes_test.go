package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	bookingserrors "hostelbook/internal/bookings/errors"
	"hostelbook/internal/bookings/events"
	"hostelbook/internal/bookings/repository"
	roomserrors "hostelbook/internal/rooms/errors"
	mongodb "hostelbook/pkg/db/mongo"
	"hostelbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// memStore backs the fake repositories. It enforces the same uniqueness rules
// as the partial indexes on Bookings and rolls back on failed transactions.
type memStore struct {
	mu       sync.Mutex
	rooms    map[string]model.Room
	hostels  map[string]model.Hostel
	bookings map[string]model.Booking
	locks    map[string]string
	lockSeq  int
	clock    time.Time

	beforeCreate   func(s *memStore)
	setOccupiedErr error
	findDetailsErr error
	acquireErr     error
}

func newMemStore() *memStore {
	return &memStore{
		rooms:    map[string]model.Room{},
		hostels:  map[string]model.Hostel{},
		bookings: map[string]model.Booking{},
		locks:    map[string]string{},
		clock:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) addHostel(name string) string {
	id := primitive.NewObjectID().Hex()
	s.hostels[id] = model.Hostel{ID: id, Name: name}
	return id
}

func (s *memStore) addRoom(hostelID, number string) string {
	id := primitive.NewObjectID().Hex()
	s.rooms[id] = model.Room{ID: id, HostelID: hostelID, RoomNumber: number, IsAvailable: true}
	return id
}

func (s *memStore) room(id string) model.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms[id]
}

func (s *memStore) booking(id string) (model.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	return b, ok
}

// insertBooking stores a booking directly, enforcing both unique constraints.
func (s *memStore) insertBooking(b *model.Booking) error {
	if b.IsActive() {
		for _, other := range s.bookings {
			if !other.IsActive() {
				continue
			}
			if other.StudentID == b.StudentID {
				return bookingserrors.ErrDuplicateActiveStudent
			}
			if other.RoomID == b.RoomID {
				return bookingserrors.ErrDuplicateActiveRoom
			}
		}
	}
	if b.ID == "" {
		b.ID = primitive.NewObjectID().Hex()
	}
	now := s.tick()
	b.CreatedAt = now
	b.UpdatedAt = now
	s.bookings[b.ID] = *b
	return nil
}

type fakeBookingRepo struct{ *memStore }

func (r fakeBookingRepo) ExecuteTransaction(ctx context.Context, fn mongodb.TransactionFunc) error {
	r.mu.Lock()
	roomsSnapshot := cloneMap(r.rooms)
	bookingsSnapshot := cloneMap(r.bookings)
	r.mu.Unlock()

	if err := fn(mongo.NewSessionContext(ctx, nil)); err != nil {
		r.mu.Lock()
		r.rooms = roomsSnapshot
		r.bookings = bookingsSnapshot
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r fakeBookingRepo) Create(_ context.Context, booking *model.Booking) error {
	if r.beforeCreate != nil {
		r.beforeCreate(r.memStore)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertBooking(booking)
}

func (r fakeBookingRepo) FindByID(_ context.Context, id string) (*model.Booking, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	return &b, nil
}

func (r fakeBookingRepo) FindActiveByStudent(_ context.Context, studentID string) (*model.Booking, error) {
	return r.findActive(func(b model.Booking) bool { return b.StudentID == studentID })
}

func (r fakeBookingRepo) FindActiveByRoom(_ context.Context, roomID string) (*model.Booking, error) {
	return r.findActive(func(b model.Booking) bool { return b.RoomID == roomID })
}

func (r fakeBookingRepo) findActive(match func(model.Booking) bool) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.IsActive() && match(b) {
			return &b, nil
		}
	}
	return nil, bookingserrors.ErrNotFound
}

func (r fakeBookingRepo) UpdateStatusIfPending(_ context.Context, id string, status string) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status != model.BookingStatusPending {
		return nil, bookingserrors.ErrNotPending
	}
	b.Status = status
	b.UpdatedAt = r.tick()
	r.bookings[id] = b
	return &b, nil
}

func (r fakeBookingRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[id]; !ok {
		return bookingserrors.ErrNotFound
	}
	delete(r.bookings, id)
	return nil
}

func (r fakeBookingRepo) FindDetailsByID(ctx context.Context, id string) (*model.BookingDetails, error) {
	b, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.details(*b), nil
}

func (r fakeBookingRepo) FindDetails(_ context.Context, filter repository.BookingFilter, limit int64) ([]*model.BookingDetails, error) {
	if r.findDetailsErr != nil {
		return nil, r.findDetailsErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	result := []*model.BookingDetails{}
	for _, b := range r.bookings {
		if filter.StudentID != "" && b.StudentID != filter.StudentID {
			continue
		}
		if filter.HostelID != "" && b.HostelID != filter.HostelID {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, b.Status) {
			continue
		}
		result = append(result, r.details(b))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && int64(len(result)) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r fakeBookingRepo) details(b model.Booking) *model.BookingDetails {
	d := &model.BookingDetails{Booking: b, Student: &model.User{ID: b.StudentID}}
	if room, ok := r.rooms[b.RoomID]; ok {
		d.Room = &room
	}
	if hostel, ok := r.hostels[b.HostelID]; ok {
		d.Hostel = &hostel
	}
	return d
}

func (r fakeBookingRepo) CountByStatus(_ context.Context, hostelID string) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int64{}
	for _, b := range r.bookings {
		if b.HostelID == hostelID {
			counts[b.Status]++
		}
	}
	return counts, nil
}

func (r fakeBookingRepo) DistinctStudents(_ context.Context, hostelID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := []string{}
	for _, b := range r.bookings {
		if b.HostelID == hostelID && !slices.Contains(seen, b.StudentID) {
			seen = append(seen, b.StudentID)
		}
	}
	return seen, nil
}

type fakeRoomStore struct{ *memStore }

func (r fakeRoomStore) FindByID(_ context.Context, id string) (*model.Room, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("%w: %s", roomserrors.ErrInvalidID, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, roomserrors.ErrNotFound
	}
	return &room, nil
}

func (r fakeRoomStore) SetOccupied(_ context.Context, id string, occupied bool) error {
	if r.setOccupiedErr != nil {
		return r.setOccupiedErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return roomserrors.ErrNotFound
	}
	room.IsOccupied = occupied
	r.rooms[id] = room
	return nil
}

type fakeLocks struct{ *memStore }

func (l fakeLocks) Acquire(_ context.Context, roomID string, _ time.Duration) (string, error) {
	if l.acquireErr != nil {
		return "", l.acquireErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, held := l.locks[roomID]; held {
		return "", bookingserrors.ErrRoomLocked
	}
	l.lockSeq++
	owner := fmt.Sprintf("owner-%d", l.lockSeq)
	l.locks[roomID] = owner
	return owner, nil
}

func (l fakeLocks) Release(_ context.Context, roomID, owner string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locks[roomID] == owner {
		delete(l.locks, roomID)
	}
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

var errStorage = errors.New("storage unavailable")

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

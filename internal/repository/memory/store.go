// Package memory provides in-process repositories for local runs and tests.
//
// Every ride lives in its own cell guarded by its own mutex; reservations are
// owned by the cell of the ride they belong to and only change under that
// lock. Ratings are kept on the cell of the rated user. There is no lock
// spanning more than one ride or one user.
package memory

import (
	"sort"
	"sync"

	"carpool/internal/domain"
)

// Store holds all entities and hands out repository views over them.
type Store struct {
	rides        sync.Map // ride id -> *rideCell
	reservations sync.Map // reservation id -> *rideCell
	passengers   sync.Map // passenger id -> *idList
	users        sync.Map // user id -> *userCell
}

type rideCell struct {
	mu           sync.RWMutex
	ride         domain.Ride
	reservations []*domain.Reservation
}

type userCell struct {
	mu      sync.Mutex
	user    domain.User
	ratings []*domain.Rating
	keys    map[ratingKey]struct{}
}

type ratingKey struct {
	rideID  string
	raterID string
}

type idList struct {
	mu  sync.Mutex
	ids []string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Rides returns the ride repository view.
func (s *Store) Rides() *RideRepository { return &RideRepository{s: s} }

// Reservations returns the reservation repository view.
func (s *Store) Reservations() *ReservationRepository { return &ReservationRepository{s: s} }

// Ratings returns the rating repository view.
func (s *Store) Ratings() *RatingRepository { return &RatingRepository{s: s} }

// Users returns the user repository view.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// PutUser inserts or replaces a user. Existing ratings are kept.
func (s *Store) PutUser(user domain.User) {
	cell, loaded := s.users.LoadOrStore(user.ID, &userCell{user: user, keys: make(map[ratingKey]struct{})})
	if !loaded {
		return
	}
	uc := cell.(*userCell)
	uc.mu.Lock()
	user.RatingSum = uc.user.RatingSum
	user.RatingCount = uc.user.RatingCount
	uc.user = user
	uc.mu.Unlock()
}

func (s *Store) rideCell(id string) (*rideCell, bool) {
	v, ok := s.rides.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*rideCell), true
}

func (s *Store) userCell(id string) (*userCell, bool) {
	v, ok := s.users.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*userCell), true
}

func (s *Store) indexPassenger(passengerID, reservationID string) {
	v, _ := s.passengers.LoadOrStore(passengerID, &idList{})
	list := v.(*idList)
	list.mu.Lock()
	list.ids = append(list.ids, reservationID)
	list.mu.Unlock()
}

func copyRide(r *domain.Ride) *domain.Ride {
	c := *r
	if r.OriginCoord != nil {
		coord := *r.OriginCoord
		c.OriginCoord = &coord
	}
	if r.DestCoord != nil {
		coord := *r.DestCoord
		c.DestCoord = &coord
	}
	return &c
}

func copyReservation(r *domain.Reservation) *domain.Reservation {
	c := *r
	return &c
}

func sortReservations(list []*domain.Reservation) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}

package inventory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/models"

	"github.com/google/uuid"
)

// slotEntry guards one slot's seat set with its own mutex so reservations on
// different slots never block each other.
type slotEntry struct {
	mu       sync.Mutex
	origin   string
	dest     string
	date     string
	schedule models.BusSchedule
	seats    []string
}

// MemoryLedger is an injectable in-process Ledger. Each instance owns its
// inventory, so tests and multiple processes can coexist.
type MemoryLedger struct {
	mu       sync.RWMutex // guards the maps, not the per-slot seat sets
	slots    map[string]*slotEntry
	bookings map[string]*models.Booking
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		slots:    make(map[string]*slotEntry),
		bookings: make(map[string]*models.Booking),
	}
}

// AddSlot registers a bookable slot with its starting seat set. Later calls
// with the same key replace the seat set; used by seeding and tests.
func (l *MemoryLedger) AddSlot(key SlotKey, schedule models.BusSchedule, seats []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.slots[key.String()] = &slotEntry{
		origin:   key.Origin,
		dest:     key.Destination,
		date:     key.Date,
		schedule: schedule,
		seats:    append([]string(nil), seats...),
	}
}

func (l *MemoryLedger) ListSlots(ctx context.Context, filter SlotFilter) ([]models.RouteSlot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	results := []models.RouteSlot{}
	for _, entry := range l.slots {
		if filter.Origin != "" && entry.origin != filter.Origin {
			continue
		}
		if filter.Destination != "" && entry.dest != filter.Destination {
			continue
		}
		if filter.Date != "" && entry.date != filter.Date {
			continue
		}
		entry.mu.Lock()
		available := len(entry.seats)
		entry.mu.Unlock()
		results = append(results, models.RouteSlot{
			Origin:         entry.origin,
			Destination:    entry.dest,
			Date:           entry.date,
			Schedule:       entry.schedule,
			AvailableSeats: available,
		})
	}
	return results, nil
}

// AvailableSeats returns a copy of the slot's seat set; an unknown slot
// yields an empty list, not an error.
func (l *MemoryLedger) AvailableSeats(ctx context.Context, key SlotKey) ([]string, error) {
	l.mu.RLock()
	entry, ok := l.slots[key.String()]
	l.mu.RUnlock()
	if !ok {
		return []string{}, nil
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return append([]string(nil), entry.seats...), nil
}

func (l *MemoryLedger) IsSeatAvailable(ctx context.Context, key SlotKey, seat string) (bool, error) {
	seats, err := l.AvailableSeats(ctx, key)
	if err != nil {
		return false, err
	}
	for _, s := range seats {
		if s == seat {
			return true, nil
		}
	}
	return false, nil
}

// Reserve checks seat membership and removes the seat under the slot's
// mutex, so two concurrent attempts on the same seat cannot both succeed.
func (l *MemoryLedger) Reserve(ctx context.Context, req ReservationRequest) (*models.Booking, error) {
	if ferr := validateReservation(req); ferr != nil {
		return nil, ferr
	}

	l.mu.RLock()
	entry, ok := l.slots[req.Slot.String()]
	l.mu.RUnlock()
	if !ok {
		return nil, &ReservationError{
			Code:    FailureUnknownSlot,
			Message: "no buses available for selected route and date/time",
		}
	}

	entry.mu.Lock()
	seatIdx := -1
	for i, s := range entry.seats {
		if s == req.SeatNumber {
			seatIdx = i
			break
		}
	}
	if seatIdx == -1 {
		entry.mu.Unlock()
		return nil, &ReservationError{
			Code:    FailureSeatTaken,
			Message: "selected seat is not available",
		}
	}
	entry.seats = append(entry.seats[:seatIdx], entry.seats[seatIdx+1:]...)
	entry.mu.Unlock()

	booking := &models.Booking{
		ID:               uuid.NewString(),
		ConfirmationCode: newConfirmationCode(),
		StartingPoint:    req.Slot.Origin,
		Destination:      req.Slot.Destination,
		Date:             req.Slot.Date,
		DepartureTime:    req.Slot.DepartureTime,
		SeatNumber:       req.SeatNumber,
		CustomerName:     req.CustomerName,
		PhoneNumber:      req.PhoneNumber,
		CreatedAt:        time.Now().UTC(),
	}

	l.mu.Lock()
	l.bookings[booking.ID] = booking
	l.mu.Unlock()

	return booking, nil
}

func (l *MemoryLedger) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	booking, ok := l.bookings[bookingID]
	if !ok {
		return nil, ErrBookingNotFound
	}
	copied := *booking
	return &copied, nil
}

const confirmationAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newConfirmationCode mints a short human-readable code. Codes are not
// required to be unique; the booking id is the real identifier.
func newConfirmationCode() string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = confirmationAlphabet[rand.Intn(len(confirmationAlphabet))]
	}
	return string(b)
}

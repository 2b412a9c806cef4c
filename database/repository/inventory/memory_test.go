package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSlot = SlotKey{
	Origin:        "Karachi",
	Destination:   "Lahore",
	Date:          "2025-03-20",
	DepartureTime: "08:00",
}

func newTestLedger() *MemoryLedger {
	ledger := NewMemoryLedger()
	ledger.AddSlot(testSlot, models.BusSchedule{
		DepartureTime: "08:00", BusType: "Business", Duration: "14h 30m", Fare: 4500,
	}, []string{"1A", "1B", "1C", "2A"})
	return ledger
}

func reservation(seat string) ReservationRequest {
	return ReservationRequest{
		Slot:         testSlot,
		SeatNumber:   seat,
		CustomerName: "Ali",
		PhoneNumber:  "0300-1234567",
	}
}

func TestReserve_Success(t *testing.T) {
	ledger := newTestLedger()
	ctx := context.Background()

	booking, err := ledger.Reserve(ctx, reservation("1A"))
	require.NoError(t, err)
	assert.NotEmpty(t, booking.ID)
	assert.Len(t, booking.ConfirmationCode, 6)
	assert.Equal(t, "1A", booking.SeatNumber)
	assert.Equal(t, "Karachi", booking.StartingPoint)

	// Second attempt on the same seat fails.
	_, err = ledger.Reserve(ctx, reservation("1A"))
	var rerr *ReservationError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, FailureSeatTaken, rerr.Code)

	seats, err := ledger.AvailableSeats(ctx, testSlot)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1B", "1C", "2A"}, seats)
}

func TestReserve_FailurePriority(t *testing.T) {
	ledger := newTestLedger()
	ctx := context.Background()

	// Missing field outranks unknown slot.
	req := ReservationRequest{
		Slot:       SlotKey{Origin: "Nowhere", Destination: "Lahore", Date: "2025-03-20", DepartureTime: "08:00"},
		SeatNumber: "1A",
	}
	_, err := ledger.Reserve(ctx, req)
	var rerr *ReservationError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, FailureMissingField, rerr.Code)

	// Unknown slot outranks seat membership.
	req.CustomerName = "Ali"
	req.PhoneNumber = "0300-1234567"
	_, err = ledger.Reserve(ctx, req)
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, FailureUnknownSlot, rerr.Code)
}

func TestReserve_NoDoubleBooking(t *testing.T) {
	ledger := newTestLedger()
	ctx := context.Background()

	const attempts = 32
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Reserve(ctx, reservation("2A"))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		var rerr *ReservationError
		require.ErrorAs(t, err, &rerr)
		assert.Equal(t, FailureSeatTaken, rerr.Code)
	}
	assert.Equal(t, 1, successes)
}

func TestAvailableSeats_UnknownSlot(t *testing.T) {
	ledger := newTestLedger()

	seats, err := ledger.AvailableSeats(context.Background(), SlotKey{
		Origin: "Quetta", Destination: "Multan", Date: "2025-01-01", DepartureTime: "00:00",
	})
	require.NoError(t, err)
	assert.Empty(t, seats)
}

func TestAvailableSeats_ReturnsCopy(t *testing.T) {
	ledger := newTestLedger()
	ctx := context.Background()

	seats, err := ledger.AvailableSeats(ctx, testSlot)
	require.NoError(t, err)
	seats[0] = "tampered"

	again, err := ledger.AvailableSeats(ctx, testSlot)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1A", "1B", "1C", "2A"}, again)
}

func TestIsSeatAvailable(t *testing.T) {
	ledger := newTestLedger()
	ctx := context.Background()

	available, err := ledger.IsSeatAvailable(ctx, testSlot, "1B")
	require.NoError(t, err)
	assert.True(t, available)

	available, err = ledger.IsSeatAvailable(ctx, testSlot, "9Z")
	require.NoError(t, err)
	assert.False(t, available)
}

func TestGetBooking(t *testing.T) {
	ledger := newTestLedger()
	ctx := context.Background()

	booking, err := ledger.Reserve(ctx, reservation("1C"))
	require.NoError(t, err)

	found, err := ledger.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, found.ID)
	assert.Equal(t, "1C", found.SeatNumber)

	_, err = ledger.GetBooking(ctx, "missing")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestListSlots_Filters(t *testing.T) {
	ledger := NewSeededMemoryLedger()
	ctx := context.Background()

	all, err := ledger.ListSlots(ctx, SlotFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	karachi, err := ledger.ListSlots(ctx, SlotFilter{Origin: "Karachi"})
	require.NoError(t, err)
	assert.Len(t, karachi, 2)
	for _, slot := range karachi {
		assert.Equal(t, "Karachi", slot.Origin)
	}

	none, err := ledger.ListSlots(ctx, SlotFilter{Origin: "Karachi", Date: "2030-01-01"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

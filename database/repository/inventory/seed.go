package inventory

import "github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/models"

// seedSlot couples a slot key and schedule with its starting seat set.
type seedSlot struct {
	Key      SlotKey
	Schedule models.BusSchedule
	Seats    []string
}

// demoSlots is the development inventory used when no Mongo backend is
// configured.
var demoSlots = []seedSlot{
	{
		Key: SlotKey{Origin: "Karachi", Destination: "Lahore", Date: "2025-03-20", DepartureTime: "08:00"},
		Schedule: models.BusSchedule{
			DepartureTime: "08:00", BusType: "Business", Duration: "14h 30m", Fare: 4500,
		},
		Seats: []string{"1A", "1B", "1C", "2A"},
	},
	{
		Key: SlotKey{Origin: "Karachi", Destination: "Lahore", Date: "2025-03-20", DepartureTime: "22:30"},
		Schedule: models.BusSchedule{
			DepartureTime: "22:30", BusType: "VIP", Duration: "13h 45m", Fare: 6000,
		},
		Seats: []string{"1A", "2B", "3C"},
	},
	{
		Key: SlotKey{Origin: "Lahore", Destination: "Islamabad", Date: "2025-03-21", DepartureTime: "09:00"},
		Schedule: models.BusSchedule{
			DepartureTime: "09:00", BusType: "Economy", Duration: "5h 15m", Fare: 1500,
		},
		Seats: []string{"1A", "1B", "2A"},
	},
}

// NewSeededMemoryLedger returns a MemoryLedger loaded with the demo routes.
func NewSeededMemoryLedger() *MemoryLedger {
	ledger := NewMemoryLedger()
	for _, s := range demoSlots {
		ledger.AddSlot(s.Key, s.Schedule, s.Seats)
	}
	return ledger
}

package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/config"
	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/database"
	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// slotDocument is the persisted form of a RouteSlot plus its open seat set.
type slotDocument struct {
	Origin        string             `bson:"origin"`
	Destination   string             `bson:"destination"`
	Date          string             `bson:"date"`
	DepartureTime string             `bson:"departure_time"`
	Schedule      models.BusSchedule `bson:"schedule"`
	Seats         []string           `bson:"seats"`
}

// MongoLedger implements Ledger on MongoDB. Reserve composes the seat pull
// and the booking insert in one transaction so a seat can never end up both
// booked and still listed as open.
type MongoLedger struct {
	slotColl    *mongo.Collection
	bookingColl *mongo.Collection
}

// NewMongoLedger constructs a MongoLedger over the configured database.
func NewMongoLedger() *MongoLedger {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	repo := &MongoLedger{
		slotColl:    db.Collection("slots"),
		bookingColl: db.Collection("bookings"),
	}
	if err := repo.ensureIndexes(); err != nil {
		utilLogIndexError(err)
	}
	return repo
}

func slotKeyFilter(key SlotKey) bson.M {
	return bson.M{
		"origin":         key.Origin,
		"destination":    key.Destination,
		"date":           key.Date,
		"departure_time": key.DepartureTime,
	}
}

func (repo *MongoLedger) ListSlots(ctx context.Context, filter SlotFilter) ([]models.RouteSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := bson.M{}
	if filter.Origin != "" {
		query["origin"] = filter.Origin
	}
	if filter.Destination != "" {
		query["destination"] = filter.Destination
	}
	if filter.Date != "" {
		query["date"] = filter.Date
	}

	cursor, err := repo.slotColl.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error fetching slots: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []slotDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("error decoding slots: %w", err)
	}

	slots := make([]models.RouteSlot, 0, len(docs))
	for _, doc := range docs {
		slots = append(slots, models.RouteSlot{
			Origin:         doc.Origin,
			Destination:    doc.Destination,
			Date:           doc.Date,
			Schedule:       doc.Schedule,
			AvailableSeats: len(doc.Seats),
		})
	}
	return slots, nil
}

func (repo *MongoLedger) AvailableSeats(ctx context.Context, key SlotKey) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc slotDocument
	err := repo.slotColl.FindOne(ctx, slotKeyFilter(key)).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching slot %s: %w", key, err)
	}
	return append([]string{}, doc.Seats...), nil
}

func (repo *MongoLedger) IsSeatAvailable(ctx context.Context, key SlotKey, seat string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := slotKeyFilter(key)
	filter["seats"] = seat
	count, err := repo.slotColl.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("error checking seat %s on slot %s: %w", seat, key, err)
	}
	return count > 0, nil
}

// Reserve pulls the seat out of the slot document with a filter that
// requires the seat to still be present, then inserts the booking; both run
// inside one mongo transaction. MatchedCount zero means the seat (or the
// whole slot) was gone, which is resolved to the right failure afterwards.
func (repo *MongoLedger) Reserve(ctx context.Context, req ReservationRequest) (*models.Booking, error) {
	if ferr := validateReservation(req); ferr != nil {
		return nil, ferr
	}

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

	client := repo.slotColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	var seatGone bool
	txnFn := func(sc mongo.SessionContext) error {
		filter := slotKeyFilter(req.Slot)
		filter["seats"] = req.SeatNumber

		res, err := repo.slotColl.UpdateOne(sc, filter, bson.M{
			"$pull": bson.M{"seats": req.SeatNumber},
		})
		if err != nil {
			return fmt.Errorf("seat removal failed: %w", err)
		}
		if res.MatchedCount == 0 {
			seatGone = true
			return fmt.Errorf("seat %s no longer open on slot %s", req.SeatNumber, req.Slot)
		}

		if _, err := repo.bookingColl.InsertOne(sc, booking); err != nil {
			return fmt.Errorf("insert booking failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		if seatGone {
			return nil, repo.classifySeatFailure(ctx, req.Slot)
		}
		return nil, fmt.Errorf("reservation transaction failed: %w", err)
	}

	return booking, nil
}

// classifySeatFailure distinguishes an unknown slot from a taken seat after
// a failed reservation, to keep the failure priority order.
func (repo *MongoLedger) classifySeatFailure(ctx context.Context, key SlotKey) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := repo.slotColl.CountDocuments(ctx, slotKeyFilter(key))
	if err != nil {
		return fmt.Errorf("error classifying reservation failure for slot %s: %w", key, err)
	}
	if count == 0 {
		return &ReservationError{
			Code:    FailureUnknownSlot,
			Message: "no buses available for selected route and date/time",
		}
	}
	return &ReservationError{
		Code:    FailureSeatTaken,
		Message: "selected seat is not available",
	}
}

func (repo *MongoLedger) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := repo.bookingColl.FindOne(ctx, bson.M{"id": bookingID}).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching booking %s: %w", bookingID, err)
	}
	return &booking, nil
}

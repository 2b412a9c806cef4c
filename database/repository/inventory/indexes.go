package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ensureIndexes creates indexes for the slot key fields and booking lookups.
func (repo *MongoLedger) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slotKeyIdx := mongo.IndexModel{
		Keys: bson.D{
			{Key: "origin", Value: 1},
			{Key: "destination", Value: 1},
			{Key: "date", Value: 1},
			{Key: "departure_time", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	}
	bookingIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	if _, err := repo.slotColl.Indexes().CreateOne(ctx, slotKeyIdx); err != nil {
		return fmt.Errorf("failed to create slot index: %w", err)
	}
	if _, err := repo.bookingColl.Indexes().CreateOne(ctx, bookingIdx); err != nil {
		return fmt.Errorf("failed to create booking index: %w", err)
	}
	return nil
}

func utilLogIndexError(err error) {
	utils.GetLogger().Warn("inventory index creation failed", zap.Error(err))
}

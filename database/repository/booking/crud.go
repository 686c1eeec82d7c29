package bookingRepo

import (
	"context"
	"time"

	"genzhealth/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoBookingRepo) Create(ctx context.Context, booking models.BookingRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, booking)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateAppointment
	}
	return err
}

func (r *mongoBookingRepo) GetByID(ctx context.Context, id string) (*models.BookingRecord, error) {
	var booking models.BookingRecord
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *mongoBookingRepo) ListByUser(ctx context.Context, userID string) ([]models.BookingRecord, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *mongoBookingRepo) ListBetween(ctx context.Context, from, to time.Time) ([]models.BookingRecord, error) {
	return r.find(ctx, bson.M{"appointment_time": bson.M{"$gte": from, "$lt": to}})
}

func (r *mongoBookingRepo) All(ctx context.Context) ([]models.BookingRecord, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoBookingRepo) find(ctx context.Context, filter bson.M) ([]models.BookingRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "appointment_time", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	bookings := []models.BookingRecord{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

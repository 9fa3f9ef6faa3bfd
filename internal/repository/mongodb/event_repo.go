package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"eventsapi/internal/domain"
)

// eventDocument is the stored shape of an event. Reference fields decode from either
// ObjectIDs or hex strings.
type eventDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
	Date        time.Time          `bson:"date"`
	Location    string             `bson:"location"`
	Category    string             `bson:"category"`
	Tags        []string           `bson:"tags"`
	CreatedBy   string             `bson:"createdBy"`
	Attendees   []string           `bson:"attendees"`
}

func (d *eventDocument) toDomain() *domain.Event {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	attendees := d.Attendees
	if attendees == nil {
		attendees = []string{}
	}
	return &domain.Event{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Date:        d.Date.UTC(),
		Location:    d.Location,
		Category:    d.Category,
		Tags:        tags,
		CreatedBy:   domain.Creator{ID: d.CreatedBy},
		Attendees:   attendees,
	}
}

// refID stores identifiers in ObjectID form when they have that format.
func refID(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

func refIDs(ids []string) bson.A {
	out := make(bson.A, 0, len(ids))
	for _, id := range ids {
		out = append(out, refID(id))
	}
	return out
}

type eventRepository struct {
	DB  *mongo.Database
	now func() time.Time
}

func NewEventRepository(db *mongo.Database) domain.EventRepository {
	return &eventRepository{
		DB:  db,
		now: time.Now,
	}
}

func (r *eventRepository) events() *mongo.Collection {
	return r.DB.Collection(EventsCollection)
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	oid := primitive.NewObjectID()
	now := r.now().UTC()
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	doc := bson.D{
		{Key: "_id", Value: oid},
		{Key: "name", Value: e.Name},
		{Key: "description", Value: e.Description},
		{Key: "date", Value: e.Date},
		{Key: "location", Value: e.Location},
		{Key: "category", Value: e.Category},
		{Key: "tags", Value: tags},
		{Key: "createdBy", Value: refID(e.CreatedBy.ID)},
		{Key: "attendees", Value: refIDs(e.Attendees)},
		{Key: "createdAt", Value: now},
		{Key: "updatedAt", Value: now},
	}
	if _, err := r.events().InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	e.ID = oid.Hex()
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	var doc eventDocument
	if err := r.events().FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	return doc.toDomain(), nil
}

// List runs an aggregation so that the attendee ordering can sort on the array length.
func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	cursor, err := r.events().Aggregate(ctx, listPipeline(filter))
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	var docs []eventDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	out := make([]*domain.Event, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func listPipeline(filter domain.EventFilter) mongo.Pipeline {
	pipeline := mongo.Pipeline{}
	if filter.Search != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.D{
			{Key: "name", Value: primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}},
		}}})
	}
	switch filter.Sort {
	case domain.SortAttendees:
		pipeline = append(pipeline,
			bson.D{{Key: "$addFields", Value: bson.D{{Key: "attendeeCount", Value: bson.D{
				{Key: "$size", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$attendees", bson.A{}}}}},
			}}}}},
			bson.D{{Key: "$sort", Value: bson.D{{Key: "attendeeCount", Value: -1}, {Key: "_id", Value: 1}}}},
			bson.D{{Key: "$project", Value: bson.D{{Key: "attendeeCount", Value: 0}}}},
		)
	case domain.SortOldest:
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}}}})
	default:
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: 1}}}})
	}
	return pipeline
}

func (r *eventRepository) Update(ctx context.Context, id string, update domain.EventUpdate) (*domain.Event, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	set := bson.D{
		{Key: "name", Value: update.Name},
		{Key: "updatedAt", Value: r.now().UTC()},
	}
	if update.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *update.Description})
	}
	if update.Date != nil {
		set = append(set, bson.E{Key: "date", Value: *update.Date})
	}
	if update.Category != nil {
		set = append(set, bson.E{Key: "category", Value: *update.Category})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc eventDocument
	err = r.events().FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) (*domain.Event, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	var doc eventDocument
	if err := r.events().FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("delete event: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *eventRepository) Ping(ctx context.Context) error {
	return r.DB.Client().Ping(ctx, readpref.Primary())
}

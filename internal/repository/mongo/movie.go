package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/movie-catalog/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type movieDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Year      *int               `bson:"year,omitempty"`
	Genre     []string           `bson:"genre"`
	Synopsis  string             `bson:"synopsis,omitempty"`
	Rating    *float64           `bson:"rating,omitempty"`
	CreatedBy primitive.ObjectID `bson:"createdBy"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *movieDocument) toDomain() domain.Movie {
	genre := d.Genre
	if genre == nil {
		genre = []string{}
	}
	return domain.Movie{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Year:      d.Year,
		Genre:     genre,
		Synopsis:  d.Synopsis,
		Rating:    d.Rating,
		CreatedBy: d.CreatedBy.Hex(),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// MovieRepository handles movie data access
type MovieRepository struct {
	coll *mongo.Collection
}

var _ domain.MovieRepository = (*MovieRepository)(nil)

// NewMovieRepository creates a new movie repository
func NewMovieRepository(db *DB) *MovieRepository {
	return &MovieRepository{coll: db.Database.Collection(moviesCollection)}
}

// Create inserts a new movie and assigns its ID
func (r *MovieRepository) Create(ctx context.Context, movie *domain.Movie) error {
	owner, err := primitive.ObjectIDFromHex(movie.CreatedBy)
	if err != nil {
		return fmt.Errorf("invalid owner id %q: %w", movie.CreatedBy, err)
	}

	doc := movieDocument{
		ID:        primitive.NewObjectID(),
		Title:     movie.Title,
		Year:      movie.Year,
		Genre:     movie.Genre,
		Synopsis:  movie.Synopsis,
		Rating:    movie.Rating,
		CreatedBy: owner,
		CreatedAt: movie.CreatedAt,
		UpdatedAt: movie.UpdatedAt,
	}
	if doc.Genre == nil {
		doc.Genre = []string{}
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create movie: %w", err)
	}

	movie.ID = doc.ID.Hex()
	return nil
}

// GetByID retrieves a movie by ID
func (r *MovieRepository) GetByID(ctx context.Context, id string) (*domain.Movie, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc movieDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}

	movie := doc.toDomain()
	return &movie, nil
}

// List retrieves one page of movies matching the filter
func (r *MovieRepository) List(ctx context.Context, filter domain.MovieFilter) ([]domain.Movie, error) {
	cursor, err := r.coll.Find(ctx, listFilter(filter), listOptions(filter))
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	defer cursor.Close(ctx)

	movies := make([]domain.Movie, 0, filter.PageSize)
	for cursor.Next(ctx) {
		var doc movieDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode movie: %w", err)
		}
		movies = append(movies, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate movies: %w", err)
	}

	return movies, nil
}

// Count returns the number of movies matching the filter
func (r *MovieRepository) Count(ctx context.Context, filter domain.MovieFilter) (int64, error) {
	total, err := r.coll.CountDocuments(ctx, listFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	return total, nil
}

// UpdateOwned updates a movie owned by ownerID in a single conditional write
func (r *MovieRepository) UpdateOwned(ctx context.Context, id, ownerID string, update domain.MovieUpdate, updatedAt time.Time) (*domain.Movie, error) {
	filter, ok := ownedFilter(id, ownerID)
	if !ok {
		return nil, nil
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc movieDocument
	err := r.coll.FindOneAndUpdate(ctx, filter, updateDocument(update, updatedAt), opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update movie: %w", err)
	}

	movie := doc.toDomain()
	return &movie, nil
}

// DeleteOwned deletes a movie owned by ownerID in a single conditional write
func (r *MovieRepository) DeleteOwned(ctx context.Context, id, ownerID string) (bool, error) {
	filter, ok := ownedFilter(id, ownerID)
	if !ok {
		return false, nil
	}

	result, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to delete movie: %w", err)
	}

	return result.DeletedCount > 0, nil
}

// listFilter builds the match document shared by List and Count
func listFilter(f domain.MovieFilter) bson.M {
	filter := bson.M{}
	if f.Query != "" {
		filter["$text"] = bson.M{"$search": f.Query}
	}
	if len(f.Genres) > 0 {
		filter["genre"] = bson.M{"$in": f.Genres}
	}
	return filter
}

func listOptions(f domain.MovieFilter) *options.FindOptions {
	opts := options.Find().
		SetSkip(int64(f.Skip())).
		SetLimit(int64(f.PageSize))

	if f.Query != "" {
		score := bson.M{"$meta": "textScore"}
		opts.SetProjection(bson.M{"score": score})
		opts.SetSort(bson.D{{Key: "score", Value: score}, {Key: "createdAt", Value: -1}})
	} else {
		opts.SetSort(bson.D{{Key: "createdAt", Value: -1}})
	}

	return opts
}

func ownedFilter(id, ownerID string) (bson.M, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, false
	}
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, false
	}
	return bson.M{"_id": oid, "createdBy": owner}, true
}

func updateDocument(u domain.MovieUpdate, updatedAt time.Time) bson.M {
	set := bson.M{"updatedAt": updatedAt}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Year != nil {
		set["year"] = *u.Year
	}
	if u.Genre != nil {
		set["genre"] = *u.Genre
	}
	if u.Synopsis != nil {
		set["synopsis"] = *u.Synopsis
	}
	if u.Rating != nil {
		set["rating"] = *u.Rating
	}
	return bson.M{"$set": set}
}

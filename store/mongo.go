package store

import (
	"blogposts/domain"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.mongodb.org/mongo-driver/v2/x/mongo/driver/connstring"
)

const (
	defaultMongoDatabase = "blog"
	postsCollection      = "posts"
)

type authorDocument struct {
	FirstName string `bson:"firstName,omitempty"`
	LastName  string `bson:"lastName,omitempty"`
}

type postDocument struct {
	ID      bson.ObjectID  `bson:"_id,omitempty"`
	Author  authorDocument `bson:"author"`
	Title   string         `bson:"title"`
	Content string         `bson:"content"`
	Created time.Time      `bson:"created"`
}

func (d postDocument) toPost() domain.Post {
	return domain.Post{
		ID:      d.ID.Hex(),
		Author:  domain.Author{FirstName: d.Author.FirstName, LastName: d.Author.LastName},
		Title:   d.Title,
		Content: d.Content,
		Created: d.Created.UTC(),
	}
}

type MongoStore struct {
	client *mongo.Client
	posts  *mongo.Collection
}

func OpenMongo(ctx context.Context, uri string) (*MongoStore, error) {
	dbName, err := mongoDatabaseName(uri)
	if err != nil {
		return nil, err
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("unable to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("unable to ping mongo: %w", err)
	}
	return newMongoStore(client, dbName), nil
}

func newMongoStore(client *mongo.Client, dbName string) *MongoStore {
	return &MongoStore{
		client: client,
		posts:  client.Database(dbName).Collection(postsCollection),
	}
}

// mongoDatabaseName returns the database named in the url path, or "blog".
func mongoDatabaseName(uri string) (string, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return "", fmt.Errorf("invalid mongo url: %w", err)
	}
	if cs.Database == "" {
		return defaultMongoDatabase, nil
	}
	return cs.Database, nil
}

func (s *MongoStore) ListPosts(ctx context.Context) ([]domain.Post, error) {
	cursor, err := s.posts.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("error finding posts: %w", err)
	}
	var docs []postDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("error decoding posts: %w", err)
	}

	posts := make([]domain.Post, 0, len(docs))
	for _, d := range docs {
		posts = append(posts, d.toPost())
	}
	return posts, nil
}

func (s *MongoStore) GetPost(ctx context.Context, id string) (domain.Post, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.Post{}, ErrPostNotFound
	}

	var d postDocument
	err = s.posts.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Post{}, ErrPostNotFound
	}
	if err != nil {
		return domain.Post{}, fmt.Errorf("error finding post %s: %w", id, err)
	}
	return d.toPost(), nil
}

func (s *MongoStore) CreatePost(ctx context.Context, p domain.Post) (domain.Post, error) {
	d := postDocument{
		ID:      bson.NewObjectID(),
		Author:  authorDocument{FirstName: p.Author.FirstName, LastName: p.Author.LastName},
		Title:   p.Title,
		Content: p.Content,
		Created: p.Created,
	}
	if _, err := s.posts.InsertOne(ctx, d); err != nil {
		return domain.Post{}, fmt.Errorf("error inserting post: %w", err)
	}
	return d.toPost(), nil
}

func (s *MongoStore) UpdatePost(ctx context.Context, id string, u domain.PostUpdate) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrPostNotFound
	}
	filter := bson.D{{Key: "_id", Value: oid}}

	// $set with no fields is rejected by the server
	if u.Empty() {
		n, err := s.posts.CountDocuments(ctx, filter)
		if err != nil {
			return fmt.Errorf("error counting post %s: %w", id, err)
		}
		if n == 0 {
			return ErrPostNotFound
		}
		return nil
	}

	res, err := s.posts.UpdateOne(ctx, filter, updateDocument(u))
	if err != nil {
		return fmt.Errorf("error updating post %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// updateDocument builds the $set update for the whitelisted fields present in u.
func updateDocument(u domain.PostUpdate) bson.D {
	set := bson.D{}
	if u.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *u.Title})
	}
	if u.Content != nil {
		set = append(set, bson.E{Key: "content", Value: *u.Content})
	}
	if u.Author != nil {
		set = append(set, bson.E{Key: "author", Value: authorDocument{FirstName: u.Author.FirstName, LastName: u.Author.LastName}})
	}
	return bson.D{{Key: "$set", Value: set}}
}

func (s *MongoStore) DeletePost(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	if _, err := s.posts.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}}); err != nil {
		return fmt.Errorf("error deleting post %s: %w", id, err)
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

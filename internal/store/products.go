package store

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/powervate/admin-api/internal/models"
	"github.com/powervate/admin-api/internal/paging"
)

const fieldNameLower = "name_lower"

type ProductStore struct {
	coll *mongo.Collection
}

func NewProductStore(db *mongo.Database) *ProductStore {
	return &ProductStore{coll: db.Collection(ProductsCollection)}
}

// Page returns up to limit products ordered by lower-cased name, starting after the cursor.
func (s *ProductStore) Page(ctx context.Context, after *paging.Cursor, limit int64) (paging.Batch[models.Product], error) {
	filter := paging.AfterFilter(fieldNameLower, paging.Ascending, after)
	opts := options.Find().SetSort(paging.Sort(fieldNameLower, paging.Ascending)).SetLimit(limit)

	items, err := findAll[models.Product](ctx, s.coll, filter, opts)
	if err != nil {
		return paging.Batch[models.Product]{}, fmt.Errorf("listing products: %w", err)
	}
	batch := paging.Batch[models.Product]{Items: items, Scanned: len(items)}
	if n := len(items); n > 0 {
		batch.Last = &paging.Cursor{Value: items[n-1].NameLower, ID: items[n-1].ID}
	}
	return batch, nil
}

func (s *ProductStore) All(ctx context.Context) ([]models.Product, error) {
	return findAll[models.Product](ctx, s.coll, bson.M{})
}

// SearchByName matches the lower-cased prefix against name_lower.
func (s *ProductStore) SearchByName(ctx context.Context, prefix string) ([]models.Product, error) {
	p := strings.ToLower(prefix)
	filter := bson.M{fieldNameLower: bson.M{"$gte": p, "$lte": p + prefixEnd}}
	opts := options.Find().SetSort(bson.D{{Key: fieldNameLower, Value: 1}})
	return findAll[models.Product](ctx, s.coll, filter, opts)
}

func (s *ProductStore) Create(ctx context.Context, p *models.Product) error {
	p.ID = primitive.NewObjectID()
	p.NameLower = strings.ToLower(p.Name)
	p.CreatedAt = nowUTC()
	p.UpdatedAt = nil
	_, err := s.coll.InsertOne(ctx, p)
	return err
}

// Update sets the given fields and stamps updatedAt. name_lower follows name.
func (s *ProductStore) Update(ctx context.Context, id string, set bson.M) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	if name, ok := set["name"].(string); ok && name != "" {
		set[fieldNameLower] = strings.ToLower(name)
	}
	set["updatedAt"] = nowUTC()
	return updateByID(ctx, s.coll, oid, bson.M{"$set": set})
}

func (s *ProductStore) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	return deleteByID(ctx, s.coll, oid)
}

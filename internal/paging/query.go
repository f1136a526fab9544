package paging

import (
	"go.mongodb.org/mongo-driver/bson"
)

// SortDirection is the order of the listing's sort key.
type SortDirection int

const (
	Ascending  SortDirection = 1
	Descending SortDirection = -1
)

// Sort orders by field, then by _id in the same direction.
func Sort(field string, dir SortDirection) bson.D {
	return bson.D{{Key: field, Value: int(dir)}, {Key: "_id", Value: int(dir)}}
}

// AfterFilter matches the documents that come strictly after c in the order
// given by Sort(field, dir). A nil cursor matches everything.
func AfterFilter(field string, dir SortDirection, c *Cursor) bson.M {
	if c == nil {
		return bson.M{}
	}
	op := "$gt"
	if dir == Descending {
		op = "$lt"
	}
	return bson.M{"$or": bson.A{
		bson.M{field: bson.M{op: c.Value}},
		bson.M{field: c.Value, "_id": bson.M{op: c.ID}},
	}}
}

package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/noah-isme/school-portal-api/internal/listquery"
)

// MongoSource evaluates list predicates against one MongoDB collection whose
// documents store every list field under its own name and the id as _id.
type MongoSource[T any] struct {
	coll     *mongo.Collection
	observer QueryObserver
}

// NewMongoSource constructs a MongoDB backed list source. observer may be nil.
func NewMongoSource[T any](coll *mongo.Collection, observer QueryObserver) *MongoSource[T] {
	return &MongoSource[T]{coll: coll, observer: observer}
}

func (s *MongoSource[T]) observe(op string, start time.Time) {
	if s.observer != nil {
		s.observer.ObserveDBQuery(s.coll.Name()+"."+op, time.Since(start))
	}
}

func documentKey(field listquery.Field) string {
	if field == listquery.FieldID {
		return "_id"
	}
	return string(field)
}

var mongoOperators = map[listquery.Op]string{
	listquery.OpEq:  "$eq",
	listquery.OpIn:  "$in",
	listquery.OpGte: "$gte",
	listquery.OpLte: "$lte",
	listquery.OpLt:  "$lt",
}

// mongoFilter renders a predicate as an $and of single-field clauses so the
// same field may appear more than once.
func mongoFilter(pred listquery.Predicate) (bson.D, error) {
	conds := pred.Conditions()
	if len(conds) == 0 {
		return bson.D{}, nil
	}
	clauses := make(bson.A, 0, len(conds))
	for _, cond := range conds {
		op, ok := mongoOperators[cond.Op]
		if !ok {
			return nil, fmt.Errorf("unsupported operator %s", cond.Op)
		}
		clauses = append(clauses, bson.D{{Key: documentKey(cond.Field), Value: bson.D{{Key: op, Value: cond.Value}}}})
	}
	return bson.D{{Key: "$and", Value: clauses}}, nil
}

func bucketExpr(field listquery.Field) bson.D {
	ref := "$" + documentKey(field)
	return bson.D{{Key: "$cond", Value: bson.A{
		bson.D{{Key: "$eq", Value: bson.A{bson.D{{Key: "$ifNull", Value: bson.A{ref, ""}}}, ""}}},
		listquery.UnknownBucket,
		ref,
	}}}
}

// Count returns the number of matching documents.
func (s *MongoSource[T]) Count(ctx context.Context, pred listquery.Predicate) (int, error) {
	defer s.observe("count", time.Now())
	filter, err := mongoFilter(pred)
	if err != nil {
		return 0, err
	}
	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", s.coll.Name(), err)
	}
	return int(total), nil
}

// Find returns one window of matching documents ordered by sort, then _id.
func (s *MongoSource[T]) Find(ctx context.Context, pred listquery.Predicate, sort listquery.Sort, offset, limit int) ([]T, error) {
	defer s.observe("find", time.Now())
	filter, err := mongoFilter(pred)
	if err != nil {
		return nil, err
	}
	direction := 1
	if sort.Desc {
		direction = -1
	}
	order := bson.D{{Key: documentKey(sort.Field), Value: direction}}
	if sort.Field != listquery.FieldID {
		order = append(order, bson.E{Key: "_id", Value: 1})
	}
	opts := options.Find().
		SetSort(order).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.coll.Name(), err)
	}
	defer cursor.Close(ctx)

	var rows []T
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.coll.Name(), err)
	}
	return rows, nil
}

// CountBy counts matching documents per value of field. Missing, null and
// empty values are reported under the unknown bucket.
func (s *MongoSource[T]) CountBy(ctx context.Context, pred listquery.Predicate, field listquery.Field) (map[string]int, error) {
	defer s.observe("count_by_"+string(field), time.Now())
	filter, err := mongoFilter(pred)
	if err != nil {
		return nil, err
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bucketExpr(field)},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("group %s by %s: %w", s.coll.Name(), field, err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Bucket string `bson:"_id"`
		Total  int    `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode %s groups: %w", s.coll.Name(), err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Bucket] += row.Total
	}
	return counts, nil
}

// SumBy sums each of fields per value of group.
func (s *MongoSource[T]) SumBy(ctx context.Context, pred listquery.Predicate, group listquery.Field, fields ...listquery.Field) (map[string][]float64, error) {
	defer s.observe("sum_by_"+string(group), time.Now())
	filter, err := mongoFilter(pred)
	if err != nil {
		return nil, err
	}
	stage := bson.D{{Key: "_id", Value: bucketExpr(group)}}
	for i, field := range fields {
		stage = append(stage, bson.E{Key: fmt.Sprintf("s%d", i), Value: bson.D{{Key: "$sum", Value: "$" + documentKey(field)}}})
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: stage}},
	}
	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("sum %s by %s: %w", s.coll.Name(), group, err)
	}
	defer cursor.Close(ctx)

	out := make(map[string][]float64)
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode %s sums: %w", s.coll.Name(), err)
		}
		key, _ := doc["_id"].(string)
		values := make([]float64, len(fields))
		for i := range fields {
			values[i] = toFloat(doc[fmt.Sprintf("s%d", i)])
		}
		out[key] = values
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s sums: %w", s.coll.Name(), err)
	}
	return out, nil
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

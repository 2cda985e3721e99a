package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

// MongoAttendanceRepository persists attendance marks as denormalised
// documents.
type MongoAttendanceRepository struct {
	coll *mongo.Collection
}

// NewMongoAttendanceRepository constructs a MongoAttendanceRepository.
func NewMongoAttendanceRepository(db *mongo.Database) *MongoAttendanceRepository {
	return &MongoAttendanceRepository{coll: db.Collection(CollectionAttendance)}
}

// Upsert records a mark, replacing an earlier one for the same student,
// subject and day.
func (r *MongoAttendanceRepository) Upsert(ctx context.Context, record *models.AttendanceRecord) error {
	now := time.Now().UTC()
	filter := bson.D{
		{Key: "student_id", Value: record.StudentID},
		{Key: "subject", Value: record.Subject},
		{Key: "date", Value: record.Date},
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "student_name", Value: record.StudentName},
			{Key: "teacher_id", Value: record.TeacherID},
			{Key: "class_grade", Value: record.ClassGrade},
			{Key: "class_section", Value: record.ClassSection},
			{Key: "status", Value: record.Status},
			{Key: "notes", Value: record.Notes},
			{Key: "updated_at", Value: now},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "_id", Value: uuid.NewString()},
			{Key: "created_at", Value: now},
		}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var stored models.AttendanceRecord
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	*record = stored
	return nil
}

// MongoContentRepository persists class content documents.
type MongoContentRepository struct {
	coll *mongo.Collection
}

// NewMongoContentRepository constructs a MongoContentRepository.
func NewMongoContentRepository(db *mongo.Database) *MongoContentRepository {
	return &MongoContentRepository{coll: db.Collection(CollectionContents)}
}

// Create inserts a content document.
func (r *MongoContentRepository) Create(ctx context.Context, content *models.ContentRecord) error {
	now := time.Now().UTC()
	if content.ID == "" {
		content.ID = uuid.NewString()
	}
	content.CreatedAt = now
	content.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, content); err != nil {
		return fmt.Errorf("insert content: %w", err)
	}
	return nil
}

// FindByID returns one content document.
func (r *MongoContentRepository) FindByID(ctx context.Context, id string) (*models.ContentRecord, error) {
	var content models.ContentRecord
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&content); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "content not found")
		}
		return nil, fmt.Errorf("get content: %w", err)
	}
	return &content, nil
}

// MongoSubmissionRepository persists submissions with the content fields
// they are listed by.
type MongoSubmissionRepository struct {
	coll *mongo.Collection
}

// NewMongoSubmissionRepository constructs a MongoSubmissionRepository.
func NewMongoSubmissionRepository(db *mongo.Database) *MongoSubmissionRepository {
	return &MongoSubmissionRepository{coll: db.Collection(CollectionSubmissions)}
}

// Create inserts a submission document. The collection carries a unique index
// on (content_id, student_id).
func (r *MongoSubmissionRepository) Create(ctx context.Context, submission *models.SubmissionRecord) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	if _, err := r.coll.InsertOne(ctx, submission); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return appErrors.Clone(appErrors.ErrConflict, "content already submitted")
		}
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// FindByID returns one submission document.
func (r *MongoSubmissionRepository) FindByID(ctx context.Context, id string) (*models.SubmissionRecord, error) {
	var submission models.SubmissionRecord
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&submission); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return &submission, nil
}

// Grade stores the grade and marks the submission graded.
func (r *MongoSubmissionRepository) Grade(ctx context.Context, submission *models.SubmissionRecord) error {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: submission.Status},
		{Key: "earned_points", Value: submission.EarnedPoints},
		{Key: "feedback", Value: submission.Feedback},
		{Key: "graded_at", Value: submission.GradedAt},
	}}}
	res, err := r.coll.UpdateByID(ctx, submission.ID, update)
	if err != nil {
		return fmt.Errorf("grade submission: %w", err)
	}
	if res.MatchedCount == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "submission not found")
	}
	return nil
}

// MongoStudentRepository reads student documents carrying their class and
// guardian ids.
type MongoStudentRepository struct {
	coll *mongo.Collection
}

// NewMongoStudentRepository constructs a MongoStudentRepository.
func NewMongoStudentRepository(db *mongo.Database) *MongoStudentRepository {
	return &MongoStudentRepository{coll: db.Collection(CollectionStudents)}
}

// ClassOf returns the student's current class.
func (r *MongoStudentRepository) ClassOf(ctx context.Context, studentID string) (*models.StudentClass, error) {
	var class models.StudentClass
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: studentID}}).Decode(&class); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, fmt.Errorf("get student class: %w", err)
	}
	return &class, nil
}

// ChildrenOf lists the students a parent is guardian of.
func (r *MongoStudentRepository) ChildrenOf(ctx context.Context, parentID string) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.D{{Key: "_id", Value: 1}}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.D{{Key: "guardian_ids", Value: parentID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode children: %w", err)
	}
	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
	}
	return ids, nil
}

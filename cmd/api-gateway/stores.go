package main

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/handler"
	"github.com/noah-isme/school-portal-api/internal/listquery"
	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/repository"
	"github.com/noah-isme/school-portal-api/pkg/config"
	"github.com/noah-isme/school-portal-api/pkg/database"
)

type attendanceStore interface {
	Upsert(ctx context.Context, record *models.AttendanceRecord) error
}

type contentStore interface {
	Create(ctx context.Context, content *models.ContentRecord) error
	FindByID(ctx context.Context, id string) (*models.ContentRecord, error)
}

type submissionStore interface {
	Create(ctx context.Context, submission *models.SubmissionRecord) error
	FindByID(ctx context.Context, id string) (*models.SubmissionRecord, error)
	Grade(ctx context.Context, submission *models.SubmissionRecord) error
}

type studentStore interface {
	ClassOf(ctx context.Context, studentID string) (*models.StudentClass, error)
	ChildrenOf(ctx context.Context, parentID string) ([]string, error)
}

// recordStore bundles the list sources and writers of one backend.
type recordStore struct {
	attendanceList  listquery.Source[models.AttendanceRecord]
	contentList     listquery.Source[models.ContentRecord]
	submissionList  listquery.Source[models.SubmissionRecord]
	scheduleList    listquery.Source[models.ScheduleRecord]
	attendance      attendanceStore
	contents        contentStore
	submissions     submissionStore
	students        studentStore
	ping            handler.Pinger
	close           func(ctx context.Context) error
}

func openStore(ctx context.Context, cfg *config.Config, observer repository.QueryObserver, logr *zap.Logger) (*recordStore, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMongo:
		client, db, err := database.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		logr.Info("record store connected", zap.String("driver", cfg.Store.Driver), zap.String("database", cfg.Mongo.Database))
		return &recordStore{
			attendanceList: repository.NewMongoSource[models.AttendanceRecord](db.Collection(repository.CollectionAttendance), observer),
			contentList:    repository.NewMongoSource[models.ContentRecord](db.Collection(repository.CollectionContents), observer),
			submissionList: repository.NewMongoSource[models.SubmissionRecord](db.Collection(repository.CollectionSubmissions), observer),
			scheduleList:   repository.NewMongoSource[models.ScheduleRecord](db.Collection(repository.CollectionSchedules), observer),
			attendance:     repository.NewMongoAttendanceRepository(db),
			contents:       repository.NewMongoContentRepository(db),
			submissions:    repository.NewMongoSubmissionRepository(db),
			students:       repository.NewMongoStudentRepository(db),
			ping: func(ctx context.Context) error {
				return client.Ping(ctx, readpref.Primary())
			},
			close: client.Disconnect,
		}, nil
	default:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		logr.Info("record store connected", zap.String("driver", config.StoreDriverPostgres), zap.String("database", cfg.Database.Name))
		return &recordStore{
			attendanceList: repository.NewSQLSource[models.AttendanceRecord](db, repository.AttendanceTable, observer),
			contentList:    repository.NewSQLSource[models.ContentRecord](db, repository.ContentTable, observer),
			submissionList: repository.NewSQLSource[models.SubmissionRecord](db, repository.SubmissionTable, observer),
			scheduleList:   repository.NewSQLSource[models.ScheduleRecord](db, repository.ScheduleTable, observer),
			attendance:     repository.NewAttendanceRepository(db),
			contents:       repository.NewContentRepository(db),
			submissions:    repository.NewSubmissionRepository(db),
			students:       repository.NewStudentRepository(db),
			ping:           db.PingContext,
			close: func(context.Context) error {
				return db.Close()
			},
		}, nil
	}
}

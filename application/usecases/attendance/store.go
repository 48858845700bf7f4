package attendance

import (
	"context"
	"time"

	"presenza.io/application/repository"
	"presenza.io/entities"
	"presenza.io/infrastructure/database/repository/mongo"
)

// MongoRecordStore backs the workflow with the live collections.
type MongoRecordStore struct{}

func (store MongoRecordStore) FindStudent(identityKey string) (*entities.Student, error) {
	return repository.StudentRepo().FindOneByFilter(map[string]interface{}{
		"identityKey": identityKey,
		"deletedAt":   nil,
	})
}

func (store MongoRecordStore) LatestRecord(identityKey string) (*entities.AttendanceRecord, error) {
	var sort interface{} = map[string]interface{}{"timestamp": -1}
	return repository.AttendanceRecordRepo().FindOneByFilter(map[string]interface{}{
		"identityKey": identityKey,
	}, mongo.FindOptions{Sort: &sort})
}

func (store MongoRecordStore) CountRecordsSince(identityKey string, since time.Time) (int64, error) {
	return repository.AttendanceRecordRepo().CountDocs(map[string]interface{}{
		"identityKey": identityKey,
		"timestamp":   map[string]interface{}{"$gte": since},
	})
}

func (store MongoRecordStore) SaveRecord(record entities.AttendanceRecord) (*entities.AttendanceRecord, error) {
	return repository.AttendanceRecordRepo().CreateOne(context.Background(), record)
}

package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestPublish_StorageFailureRollsBackWithoutNotify(t *testing.T) {
	db, mock, sqldb := newMockDB(t)
	defer sqldb.Close()

	pushed := 0
	base := &Service{DB: db}
	base.Notify = NewNotifyService(nil, "", func([]byte) { pushed++ }, nil)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `dash_status` WHERE marked_for_deletion = ?")).
		WithArgs(true).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := NewPublishService(base).Publish(context.Background())
	require.ErrorIs(t, err, ErrStorage)
	require.ErrorContains(t, err, "disk full")
	require.Zero(t, pushed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLive_ClassifiesErrors(t *testing.T) {
	db, mock, sqldb := newMockDB(t)
	defer sqldb.Close()
	svc := NewSnapshotService(&Service{DB: db})

	mock.ExpectQuery("SELECT \\* FROM `dash_snapshot`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "version", "state", "published_at"}))
	_, err := svc.GetLive(context.Background())
	require.ErrorIs(t, err, ErrNotFound)

	mock.ExpectQuery("SELECT \\* FROM `dash_snapshot`").
		WillReturnError(errors.New("connection reset"))
	_, err = svc.GetLive(context.Background())
	require.ErrorIs(t, err, ErrStorage)
	require.False(t, errors.Is(err, ErrNotFound))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteVersion_NotFoundBeforeValidation(t *testing.T) {
	db, mock, sqldb := newMockDB(t)
	defer sqldb.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `dash_snapshot` WHERE version = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "version"}))
	mock.ExpectRollback()

	err := NewPublishService(&Service{DB: db}).DeleteVersion(context.Background(), 9)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

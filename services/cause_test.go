package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/socialcause/cause-api/apperror"
	"github.com/socialcause/cause-api/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Cause{}, &models.Contribution{}))
	return db
}

func testCauseRequest() models.CauseRequest {
	return models.CauseRequest{
		Title:       "Clean Water",
		Description: "Fund wells",
		ImageURL:    "http://x/1.png",
	}
}

func TestCreateCause(t *testing.T) {
	svc := NewCauseService(newTestDB(t))

	cause, err := svc.Create(context.Background(), testCauseRequest())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, cause.ID)
	assert.Equal(t, "Clean Water", cause.Title)
	assert.Equal(t, "Fund wells", cause.Description)
	assert.Equal(t, "http://x/1.png", cause.ImageURL)
}

func TestCreateCauseDuplicate(t *testing.T) {
	svc := NewCauseService(newTestDB(t))

	_, err := svc.Create(context.Background(), testCauseRequest())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), testCauseRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.EqualError(t, err, "Cause 'Clean Water' already exists")
}

func TestCreateCauseDifferentTriple(t *testing.T) {
	svc := NewCauseService(newTestDB(t))

	_, err := svc.Create(context.Background(), testCauseRequest())
	require.NoError(t, err)

	// Changing any one field of the triple makes it a new cause.
	req := testCauseRequest()
	req.ImageURL = "http://x/2.png"
	cause, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "http://x/2.png", cause.ImageURL)
}

func TestListAllEmpty(t *testing.T) {
	svc := NewCauseService(newTestDB(t))

	_, err := svc.ListAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.EqualError(t, err, "No causes found")
}

func TestListAll(t *testing.T) {
	svc := NewCauseService(newTestDB(t))

	first, err := svc.Create(context.Background(), testCauseRequest())
	require.NoError(t, err)

	req := testCauseRequest()
	req.Title = "Plant Trees"
	second, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	causes, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, causes, 2)

	ids := []uuid.UUID{causes[0].ID, causes[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)
}

func TestGetCause(t *testing.T) {
	svc := NewCauseService(newTestDB(t))

	created, err := svc.Create(context.Background(), testCauseRequest())
	require.NoError(t, err)

	cause, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, cause.ID)
	assert.Equal(t, created.Title, cause.Title)
	assert.Equal(t, created.Description, cause.Description)
	assert.Equal(t, created.ImageURL, cause.ImageURL)
}

func TestGetCauseMissing(t *testing.T) {
	svc := NewCauseService(newTestDB(t))

	id := uuid.MustParse("00000000-0000-0000-0000-000000000000")
	_, err := svc.Get(context.Background(), id)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.EqualError(t, err, fmt.Sprintf("No cause found with ID: %s", id))
}

func TestUpdateCause(t *testing.T) {
	svc := NewCauseService(newTestDB(t))

	created, err := svc.Create(context.Background(), testCauseRequest())
	require.NoError(t, err)

	update := models.CauseRequest{
		Title:       "Clean Water II",
		Description: "Fund more wells",
		ImageURL:    "http://x/2.png",
	}
	updated, err := svc.Update(context.Background(), created.ID, update)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Clean Water II", updated.Title)

	// Applying the same payload again yields the same final state.
	again, err := svc.Update(context.Background(), created.ID, update)
	require.NoError(t, err)
	assert.Equal(t, updated.Title, again.Title)
	assert.Equal(t, updated.Description, again.Description)
	assert.Equal(t, updated.ImageURL, again.ImageURL)
}

func TestUpdateCauseMissing(t *testing.T) {
	svc := NewCauseService(newTestDB(t))

	_, err := svc.Update(context.Background(), uuid.New(), testCauseRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteCause(t *testing.T) {
	svc := NewCauseService(newTestDB(t))

	created, err := svc.Create(context.Background(), testCauseRequest())
	require.NoError(t, err)

	message, err := svc.Delete(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("Deleted cause with ID: %s", created.ID), message)

	_, err = svc.Get(context.Background(), created.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteCauseMissing(t *testing.T) {
	svc := NewCauseService(newTestDB(t))

	_, err := svc.Delete(context.Background(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteCauseRemovesContributions(t *testing.T) {
	db := newTestDB(t)
	causes := NewCauseService(db)
	contributions := NewContributionService(db)

	created, err := causes.Create(context.Background(), testCauseRequest())
	require.NoError(t, err)

	_, err = contributions.Contribute(context.Background(), created.ID, testContributionRequest(50))
	require.NoError(t, err)

	_, err = causes.Delete(context.Background(), created.ID)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Contribution{}).Where("cause_id = ?", created.ID).Count(&count).Error)
	assert.Zero(t, count)
}

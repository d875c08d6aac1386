package engagement

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yonasbekele/serenity-backend/internal/users"
	"github.com/yonasbekele/serenity-backend/pkg/db/models"
	"github.com/yonasbekele/serenity-backend/pkg/enums"
)

func setupEngagementTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Booking{}, &models.EngagementLog{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := &models.User{
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
		FirstName:    "Makeda",
		LastName:     "Haile",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(NewRepository(db), users.NewRepository(db))
	require.NoError(t, err)
	return svc
}

func TestRecordActionCreditsPoints(t *testing.T) {
	db := setupEngagementTestDB(t)
	svc := newTestService(t, db)
	user := seedUser(t, db)
	bookingID := uuid.New()

	recorded, err := svc.RecordAction(context.Background(), RecordActionInput{
		UserID:    user.ID,
		Action:    enums.EngagementActionCompletedBooking,
		BookingID: bookingID,
		Metadata:  json.RawMessage(`{"source":"webhook"}`),
	})
	require.NoError(t, err)
	assert.True(t, recorded)

	var entries []models.EngagementLog
	require.NoError(t, db.Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, enums.EngagementActionCompletedBooking, entries[0].Action)
	assert.Equal(t, bookingID, entries[0].BookingID)

	var refreshed models.User
	require.NoError(t, db.First(&refreshed, "id = ?", user.ID).Error)
	assert.Equal(t, enums.EngagementActionCompletedBooking.Points(), refreshed.Points)
}

func TestRecordActionDeduplicatesPerBooking(t *testing.T) {
	db := setupEngagementTestDB(t)
	svc := newTestService(t, db)
	user := seedUser(t, db)
	bookingID := uuid.New()

	input := RecordActionInput{
		UserID:    user.ID,
		Action:    enums.EngagementActionCompletedBooking,
		BookingID: bookingID,
	}

	recorded, err := svc.RecordAction(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, recorded)

	recorded, err = svc.RecordAction(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, recorded, "second delivery for the same booking must be a no-op")

	var count int64
	require.NoError(t, db.Model(&models.EngagementLog{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var refreshed models.User
	require.NoError(t, db.First(&refreshed, "id = ?", user.ID).Error)
	assert.Equal(t, enums.EngagementActionCompletedBooking.Points(), refreshed.Points,
		"points must be credited exactly once")
}

func TestRecordActionAllowsDistinctBookings(t *testing.T) {
	db := setupEngagementTestDB(t)
	svc := newTestService(t, db)
	user := seedUser(t, db)

	for i := 0; i < 2; i++ {
		recorded, err := svc.RecordAction(context.Background(), RecordActionInput{
			UserID:    user.ID,
			Action:    enums.EngagementActionCompletedBooking,
			BookingID: uuid.New(),
		})
		require.NoError(t, err)
		assert.True(t, recorded)
	}

	var refreshed models.User
	require.NoError(t, db.First(&refreshed, "id = ?", user.ID).Error)
	assert.Equal(t, 2*enums.EngagementActionCompletedBooking.Points(), refreshed.Points)
}

func TestRecordActionValidation(t *testing.T) {
	db := setupEngagementTestDB(t)
	svc := newTestService(t, db)

	tests := []struct {
		name  string
		input RecordActionInput
	}{
		{
			name:  "missing user",
			input: RecordActionInput{Action: enums.EngagementActionCompletedBooking, BookingID: uuid.New()},
		},
		{
			name:  "missing booking",
			input: RecordActionInput{UserID: uuid.New(), Action: enums.EngagementActionCompletedBooking},
		},
		{
			name:  "unknown action",
			input: RecordActionInput{UserID: uuid.New(), Action: enums.EngagementAction("mystery"), BookingID: uuid.New()},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RecordAction(context.Background(), tc.input)
			assert.Error(t, err)
		})
	}
}

func TestListForUser(t *testing.T) {
	db := setupEngagementTestDB(t)
	svc := newTestService(t, db)
	user := seedUser(t, db)
	other := seedUser(t, db)

	_, err := svc.RecordAction(context.Background(), RecordActionInput{
		UserID:    user.ID,
		Action:    enums.EngagementActionCompletedBooking,
		BookingID: uuid.New(),
	})
	require.NoError(t, err)

	entries, err := svc.ListForUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	entries, err = svc.ListForUser(context.Background(), other.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

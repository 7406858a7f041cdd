package database

import (
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentworks/equipment-rental-backend/internal/models"
)

func TestInsertNotification(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository(db)

	t.Run("Success", func(t *testing.T) {
		recipientID := uuid.New()

		mock.ExpectExec(`INSERT INTO notifications`).
			WithArgs(recipientID, "booking", "medium", "Booking confirmed",
				"Your booking BK-1001 is confirmed.", nil, nil, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.Insert(models.Notification{
			RecipientID: recipientID,
			Category:    models.NotificationCategoryBooking,
			Priority:    models.NotificationPriorityMedium,
			Title:       "Booking confirmed",
			Message:     "Your booking BK-1001 is confirmed.",
		})
		require.NoError(t, err)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})

	t.Run("Database Error", func(t *testing.T) {
		recipientID := uuid.New()

		mock.ExpectExec(`INSERT INTO notifications`).
			WithArgs(recipientID, "payment", "high", "Hold failed", "The hold failed.", nil, nil, sqlmock.AnyArg()).
			WillReturnError(fmt.Errorf("database error"))

		err := repo.Insert(models.Notification{
			RecipientID: recipientID,
			Category:    models.NotificationCategoryPayment,
			Priority:    models.NotificationPriorityHigh,
			Title:       "Hold failed",
			Message:     "The hold failed.",
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to insert notification")

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})
}

func TestBroadcastToRoles(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository(db)

	t.Run("Fans Out To Role Holders", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO notifications`).
			WithArgs(sqlmock.AnyArg(), "dispute", "critical", "Dispute received",
				"A dispute was opened.", nil, nil, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 3))

		count, err := repo.BroadcastToRoles([]string{"admin", "owner"}, models.Notification{
			Category: models.NotificationCategoryDispute,
			Priority: models.NotificationPriorityCritical,
			Title:    "Dispute received",
			Message:  "A dispute was opened.",
		})
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO notifications`).
			WithArgs(sqlmock.AnyArg(), "payout", "high", "Payout failed", "A payout failed.", nil, nil, sqlmock.AnyArg()).
			WillReturnError(fmt.Errorf("database error"))

		count, err := repo.BroadcastToRoles([]string{"admin"}, models.Notification{
			Category: models.NotificationCategoryPayout,
			Priority: models.NotificationPriorityHigh,
			Title:    "Payout failed",
			Message:  "A payout failed.",
		})
		assert.Error(t, err)
		assert.Equal(t, 0, count)
		assert.Contains(t, err.Error(), "failed to broadcast notification")

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})
}

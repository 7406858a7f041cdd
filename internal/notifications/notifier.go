// Package notifications is the boundary to the notification emitter.
// Delivery is an external collaborator; this package only records what
// should be delivered and guarantees that no failure here ever aborts a
// webhook transaction.
package notifications

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rentworks/equipment-rental-backend/internal/database"
	"github.com/rentworks/equipment-rental-backend/internal/models"
)

// Notifier emits structured notifications. Implementations must never
// return an error or panic past this boundary; failures are logged and
// swallowed.
type Notifier interface {
	// NotifyCustomer emits a notification to one customer
	NotifyCustomer(recipientID uuid.UUID, n models.Notification)

	// BroadcastAdmins emits a notification to every admin operator
	BroadcastAdmins(n models.Notification)
}

// StoreNotifier persists notifications for the delivery pipeline to pick up
type StoreNotifier struct {
	repo       *database.NotificationRepository
	adminRoles []string
	logger     *logrus.Logger
}

// NewStoreNotifier creates a StoreNotifier. adminRoles lists the user roles
// that receive admin broadcasts.
func NewStoreNotifier(repo *database.NotificationRepository, adminRoles []string, logger *logrus.Logger) *StoreNotifier {
	return &StoreNotifier{
		repo:       repo,
		adminRoles: adminRoles,
		logger:     logger,
	}
}

// NotifyCustomer stores a notification for one customer. Failures are
// logged, never propagated.
func (n *StoreNotifier) NotifyCustomer(recipientID uuid.UUID, notification models.Notification) {
	notification.RecipientID = recipientID

	if err := n.repo.Insert(notification); err != nil {
		n.logger.WithError(err).WithFields(logrus.Fields{
			"recipient_id": recipientID,
			"category":     notification.Category,
			"title":        notification.Title,
		}).Error("Failed to store customer notification")
		return
	}

	n.logger.WithFields(logrus.Fields{
		"recipient_id": recipientID,
		"category":     notification.Category,
		"priority":     notification.Priority,
	}).Debug("Customer notification stored")
}

// BroadcastAdmins stores a notification for every admin operator. Failures
// are logged, never propagated.
func (n *StoreNotifier) BroadcastAdmins(notification models.Notification) {
	count, err := n.repo.BroadcastToRoles(n.adminRoles, notification)
	if err != nil {
		n.logger.WithError(err).WithFields(logrus.Fields{
			"category": notification.Category,
			"title":    notification.Title,
		}).Error("Failed to broadcast admin notification")
		return
	}

	n.logger.WithFields(logrus.Fields{
		"recipients": count,
		"category":   notification.Category,
		"priority":   notification.Priority,
	}).Info("Admin notification broadcast")
}

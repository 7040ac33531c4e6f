// Package notify keeps the per-user notification ledger and fans new entries
// out to live websocket connections and email.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/linesmerrill/fir-api/databases"
	"github.com/linesmerrill/fir-api/models"
	templates "github.com/linesmerrill/fir-api/templates/html"
)

const (
	emailSubject = "Update on your FIR"
	deliveryWait = 30 * time.Second
)

// Publisher pushes a stored notification to the recipient's live connections
type Publisher interface {
	Publish(userID string, notification models.Notification)
}

// Mailer delivers a plain text and html email
type Mailer interface {
	Send(ctx context.Context, toEmail, toName, subject, plainText, htmlContent string) error
}

// Ledger is the append-only notification log. Only is_read ever changes, and
// only through MarkRead by the recipient.
type Ledger struct {
	DB     databases.NotificationDatabase
	Hub    Publisher
	Mailer Mailer

	now        func() time.Time
	newID      func() string
	deliveries sync.WaitGroup
}

// NewLedger creates a ledger. hub and mailer are optional.
func NewLedger(db databases.NotificationDatabase, hub Publisher, mailer Mailer) *Ledger {
	return &Ledger{
		DB:     db,
		Hub:    hub,
		Mailer: mailer,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return uuid.New().String() },
	}
}

// Append stores a notification, then pushes and emails it on a best-effort basis.
// Delivery runs in the background and does not hold up the caller.
func (l *Ledger) Append(ctx context.Context, notice models.Notice) (*models.Notification, error) {
	if notice.RecipientID == "" {
		return nil, errors.New("notification has no recipient")
	}
	n := models.Notification{
		ID:        l.newID(),
		UserID:    notice.RecipientID,
		Message:   notice.Message,
		IsRead:    false,
		CreatedAt: l.now(),
	}
	if err := l.DB.InsertOne(ctx, n); err != nil {
		return nil, err
	}

	if l.Hub == nil && (l.Mailer == nil || notice.Email == "") {
		return &n, nil
	}
	l.deliveries.Add(1)
	go func() {
		defer l.deliveries.Done()
		deliverCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryWait)
		defer cancel()
		l.deliver(deliverCtx, notice, n)
	}()
	return &n, nil
}

func (l *Ledger) deliver(ctx context.Context, notice models.Notice, n models.Notification) {
	if l.Hub != nil {
		l.Hub.Publish(n.UserID, n)
	}
	if l.Mailer != nil && notice.Email != "" {
		if err := l.Mailer.Send(ctx, notice.Email, notice.Name, emailSubject, n.Message, templates.RenderNotificationEmail(emailSubject, notice.Name, n.Message)); err != nil {
			zap.S().Warnw("failed to email notification", "notificationId", n.ID, "error", err)
		}
	}
}

// Wait blocks until every background delivery started by Append has finished
func (l *Ledger) Wait() {
	l.deliveries.Wait()
}

// List returns every notification of the caller, newest first
func (l *Ledger) List(ctx context.Context, id models.Identity) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	notifications, err := l.DB.Find(ctx, bson.M{"user_id": id.UserID}, opts)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return notifications, nil
}

// MarkRead flags a notification read. The update is scoped to the caller, so a
// notification owned by someone else is silently left unchanged.
func (l *Ledger) MarkRead(ctx context.Context, id models.Identity, notificationID string) error {
	res, err := l.DB.UpdateOne(ctx,
		bson.M{"_id": notificationID, "user_id": id.UserID},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		zap.S().Debugw("mark read matched nothing", "notificationId", notificationID, "userId", id.UserID)
	}
	return nil
}

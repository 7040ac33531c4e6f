package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/fir-api/databases"
	"github.com/linesmerrill/fir-api/databases/mocks"
	"github.com/linesmerrill/fir-api/models"
)

type recordingPublisher struct {
	published []models.Notification
}

func (p *recordingPublisher) Publish(userID string, n models.Notification) {
	p.published = append(p.published, n)
}

type recordingMailer struct {
	to   []string
	html string
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, toEmail, toName, subject, plainText, htmlContent string) error {
	m.to = append(m.to, toEmail)
	m.html = htmlContent
	return m.err
}

var fixedTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestLedger(conn *mocks.CollectionHelper, hub Publisher, mailer Mailer) *Ledger {
	db := &mocks.DatabaseHelper{}
	db.On("Collection", "notifications").Return(conn)
	l := NewLedger(databases.NewNotificationDatabase(db), hub, mailer)
	l.now = func() time.Time { return fixedTime }
	l.newID = func() string { return "notif-1" }
	return l
}

func TestLedger_AppendStoresThenFansOut(t *testing.T) {
	conn := &mocks.CollectionHelper{}
	expected := models.Notification{ID: "notif-1", UserID: "u1", Message: "hello", IsRead: false, CreatedAt: fixedTime}
	conn.On("InsertOne", mock.Anything, expected).Return(&mocks.InsertOneResultHelper{}, nil)
	hub := &recordingPublisher{}
	mailer := &recordingMailer{}

	l := newTestLedger(conn, hub, mailer)
	n, err := l.Append(context.Background(), models.Notice{RecipientID: "u1", Email: "u1@example.com", Message: "hello"})
	l.Wait()

	require.NoError(t, err)
	assert.Equal(t, expected, *n)
	assert.Equal(t, []models.Notification{expected}, hub.published)
	assert.Equal(t, []string{"u1@example.com"}, mailer.to)
	assert.Contains(t, mailer.html, "<p>hello</p>")
}

func TestLedger_AppendSkipsEmailWithoutAddress(t *testing.T) {
	conn := &mocks.CollectionHelper{}
	conn.On("InsertOne", mock.Anything, mock.Anything).Return(&mocks.InsertOneResultHelper{}, nil)
	mailer := &recordingMailer{}

	l := newTestLedger(conn, nil, mailer)
	_, err := l.Append(context.Background(), models.Notice{RecipientID: "u1", Message: "hello"})
	l.Wait()

	assert.NoError(t, err)
	assert.Empty(t, mailer.to)
}

func TestLedger_AppendStoreFailureDeliversNothing(t *testing.T) {
	conn := &mocks.CollectionHelper{}
	conn.On("InsertOne", mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))
	hub := &recordingPublisher{}
	mailer := &recordingMailer{}

	l := newTestLedger(conn, hub, mailer)
	n, err := l.Append(context.Background(), models.Notice{RecipientID: "u1", Email: "u1@example.com", Message: "hello"})
	l.Wait()

	assert.Nil(t, n)
	assert.EqualError(t, err, "mocked-error")
	assert.Empty(t, hub.published)
	assert.Empty(t, mailer.to)
}

func TestLedger_AppendMailerFailureIsNotFatal(t *testing.T) {
	conn := &mocks.CollectionHelper{}
	conn.On("InsertOne", mock.Anything, mock.Anything).Return(&mocks.InsertOneResultHelper{}, nil)
	mailer := &recordingMailer{err: errors.New("sendgrid down")}

	l := newTestLedger(conn, nil, mailer)
	n, err := l.Append(context.Background(), models.Notice{RecipientID: "u1", Email: "u1@example.com", Message: "hello"})
	l.Wait()

	assert.NoError(t, err)
	assert.NotNil(t, n)
	assert.Equal(t, []string{"u1@example.com"}, mailer.to)
}

type blockingMailer struct {
	release chan struct{}
	sent    bool
	ctxErr  error
}

func (m *blockingMailer) Send(ctx context.Context, toEmail, toName, subject, plainText, htmlContent string) error {
	<-m.release
	m.sent = true
	m.ctxErr = ctx.Err()
	return nil
}

func TestLedger_AppendDoesNotWaitForSlowDelivery(t *testing.T) {
	conn := &mocks.CollectionHelper{}
	conn.On("InsertOne", mock.Anything, mock.Anything).Return(&mocks.InsertOneResultHelper{}, nil)
	mailer := &blockingMailer{release: make(chan struct{})}

	l := newTestLedger(conn, nil, mailer)
	ctx, cancel := context.WithCancel(context.Background())
	n, err := l.Append(ctx, models.Notice{RecipientID: "u1", Email: "u1@example.com", Message: "hello"})
	cancel()

	require.NoError(t, err)
	assert.NotNil(t, n)

	close(mailer.release)
	l.Wait()
	assert.True(t, mailer.sent)
	assert.NoError(t, mailer.ctxErr)
}

func TestLedger_AppendRequiresRecipient(t *testing.T) {
	conn := &mocks.CollectionHelper{}
	l := newTestLedger(conn, nil, nil)

	_, err := l.Append(context.Background(), models.Notice{Message: "hello"})

	assert.Error(t, err)
	conn.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestLedger_ListScopesToCaller(t *testing.T) {
	conn := &mocks.CollectionHelper{}
	cursor := &mocks.CursorHelper{}
	cursor.On("All", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(1).(*[]models.Notification)
		*arg = []models.Notification{{ID: "b"}, {ID: "a"}}
	})
	conn.On("Find", mock.Anything, bson.M{"user_id": "u1"}, mock.Anything).Return(cursor, nil)

	l := newTestLedger(conn, nil, nil)
	notifications, err := l.List(context.Background(), models.Identity{UserID: "u1"})

	assert.NoError(t, err)
	assert.Len(t, notifications, 2)
	conn.AssertExpectations(t)
}

func TestLedger_ListEmptyIsNotNil(t *testing.T) {
	conn := &mocks.CollectionHelper{}
	cursor := &mocks.CursorHelper{}
	cursor.On("All", mock.Anything, mock.Anything).Return(nil)
	conn.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursor, nil)

	l := newTestLedger(conn, nil, nil)
	notifications, err := l.List(context.Background(), models.Identity{UserID: "u1"})

	assert.NoError(t, err)
	assert.NotNil(t, notifications)
	assert.Empty(t, notifications)
}

func TestLedger_MarkReadByStrangerIsSilentNoOp(t *testing.T) {
	conn := &mocks.CollectionHelper{}
	conn.On("UpdateOne", mock.Anything,
		bson.M{"_id": "notif-1", "user_id": "stranger"},
		bson.M{"$set": bson.M{"is_read": true}},
	).Return(&mongo.UpdateResult{MatchedCount: 0}, nil)

	l := newTestLedger(conn, nil, nil)
	err := l.MarkRead(context.Background(), models.Identity{UserID: "stranger"}, "notif-1")

	assert.NoError(t, err)
	conn.AssertExpectations(t)
}

func TestLedger_MarkReadStoreError(t *testing.T) {
	conn := &mocks.CollectionHelper{}
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))

	l := newTestLedger(conn, nil, nil)
	err := l.MarkRead(context.Background(), models.Identity{UserID: "u1"}, "notif-1")

	assert.EqualError(t, err, "mocked-error")
}

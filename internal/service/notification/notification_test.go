package notification

import (
	"context"
	"testing"
	"time"

	"toolhub-service/internal/domain/notification"
	"toolhub-service/internal/domain/user"
	wstypes "toolhub-service/internal/domain/websocket"
	xerrors "toolhub-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ---------- fakes ----------

type fakeNotificationRepo struct {
	notifications map[int64]*notification.Notification
	recipients    []notification.Recipient
	unread        map[int64]int
	nextID        int64

	expiredDeleted int64
	seenDeleted    int64
	seenCutoff     time.Time
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{
		notifications: make(map[int64]*notification.Notification),
		unread:        make(map[int64]int),
		nextID:        1,
	}
}

func (f *fakeNotificationRepo) CreateWithRecipients(ctx context.Context, n *notification.Notification, recipients []notification.Recipient) error {
	n.ID = f.nextID
	f.nextID++
	n.CreatedAt = time.Now()
	f.notifications[n.ID] = n
	for _, r := range recipients {
		r.NotificationID = n.ID
		f.recipients = append(f.recipients, r)
		f.unread[r.UserID]++
	}
	return nil
}

func (f *fakeNotificationRepo) FindByID(ctx context.Context, id int64) (*notification.Notification, error) {
	n, ok := f.notifications[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return n, nil
}

func (f *fakeNotificationRepo) ListForUser(ctx context.Context, userID int64, filters *notification.NotificationListFilters) ([]notification.UserNotification, int64, error) {
	var out []notification.UserNotification
	for _, r := range f.recipients {
		if r.UserID != userID {
			continue
		}
		out = append(out, notification.UserNotification{
			Notification: *f.notifications[r.NotificationID],
			Seen:         r.Seen,
			SeenAt:       r.SeenAt,
		})
	}
	return out, int64(len(out)), nil
}

func (f *fakeNotificationRepo) MarkSeen(ctx context.Context, notificationID, userID int64, userEmail string) error {
	for i, r := range f.recipients {
		if r.NotificationID == notificationID && r.UserID == userID {
			if !r.Seen {
				f.recipients[i].Seen = true
				f.unread[userID]--
			}
			return nil
		}
	}
	// Upsert: a seen row may predate the recipient row
	f.recipients = append(f.recipients, notification.Recipient{
		NotificationID: notificationID,
		UserID:         userID,
		UserEmail:      userEmail,
		Seen:           true,
	})
	return nil
}

func (f *fakeNotificationRepo) MarkAllSeen(ctx context.Context, userID int64) error {
	for i, r := range f.recipients {
		if r.UserID == userID && !r.Seen {
			f.recipients[i].Seen = true
		}
	}
	f.unread[userID] = 0
	return nil
}

func (f *fakeNotificationRepo) GetUnreadCount(ctx context.Context, userID int64) (int, error) {
	return f.unread[userID], nil
}

func (f *fakeNotificationRepo) DeleteExpired(ctx context.Context) (int64, error) {
	return f.expiredDeleted, nil
}

func (f *fakeNotificationRepo) DeleteSeenBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.seenCutoff = cutoff
	return f.seenDeleted, nil
}

type fakeUserLister struct {
	users []user.User
}

func (f *fakeUserLister) ListIDs(ctx context.Context) ([]user.User, error) {
	return f.users, nil
}

type fakeNotifier struct {
	broadcasts []struct {
		identityIDs []int64
		data        wstypes.NotificationData
	}
	counts map[int64]int
	alerts []wstypes.SystemAlertData
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{counts: make(map[int64]int)}
}

func (f *fakeNotifier) BroadcastNotification(identityIDs []int64, data *wstypes.NotificationData) {
	f.broadcasts = append(f.broadcasts, struct {
		identityIDs []int64
		data        wstypes.NotificationData
	}{identityIDs, *data})
}

func (f *fakeNotifier) BroadcastNotificationCount(identityID int64, count int) {
	f.counts[identityID] = count
}

func (f *fakeNotifier) BroadcastSystemAlert(alert *wstypes.SystemAlertData) {
	f.alerts = append(f.alerts, *alert)
}

func newTestService(repo *fakeNotificationRepo, users []user.User, notifier *fakeNotifier) *NotificationService {
	return NewNotificationService(repo, &fakeUserLister{users: users}, notifier, zap.NewNop())
}

func threeUsers() []user.User {
	return []user.User{
		{ID: 1, Email: "a@example.com"},
		{ID: 2, Email: "b@example.com"},
		{ID: 3, Email: "c@example.com"},
	}
}

// ---------- tests ----------

func TestSend(t *testing.T) {
	ctx := context.Background()

	t.Run("fans out one recipient per user and broadcasts", func(t *testing.T) {
		repo := newFakeNotificationRepo()
		notifier := newFakeNotifier()
		svc := newTestService(repo, threeUsers(), notifier)

		n, err := svc.Send(ctx, 10, &notification.SendNotificationRequest{
			Title:   "Maintenance window",
			Content: "Back in an hour",
			Type:    notification.TypeAnnouncement,
		})
		require.NoError(t, err)

		assert.Equal(t, notification.TypeAnnouncement, n.Type)
		assert.Equal(t, int64(10), n.SenderID)
		assert.True(t, n.IsActive)

		require.Len(t, repo.recipients, 3)
		emails := []string{repo.recipients[0].UserEmail, repo.recipients[1].UserEmail, repo.recipients[2].UserEmail}
		assert.ElementsMatch(t, []string{"a@example.com", "b@example.com", "c@example.com"}, emails)

		require.Len(t, notifier.broadcasts, 1)
		assert.ElementsMatch(t, []int64{1, 2, 3}, notifier.broadcasts[0].identityIDs)
		assert.Equal(t, "Maintenance window", notifier.broadcasts[0].data.Title)
	})

	t.Run("defaults to the general type", func(t *testing.T) {
		repo := newFakeNotificationRepo()
		svc := newTestService(repo, threeUsers(), newFakeNotifier())

		n, err := svc.Send(ctx, 10, &notification.SendNotificationRequest{
			Title:   "Hello",
			Content: "World",
		})
		require.NoError(t, err)
		assert.Equal(t, notification.TypeGeneral, n.Type)
	})

	t.Run("expiry is one lifetime out", func(t *testing.T) {
		repo := newFakeNotificationRepo()
		svc := newTestService(repo, threeUsers(), newFakeNotifier())

		n, err := svc.Send(ctx, 10, &notification.SendNotificationRequest{
			Title:   "Hello",
			Content: "World",
		})
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(notification.Lifetime), n.ExpiresAt, time.Second)
	})
}

func TestMarkSeen(t *testing.T) {
	ctx := context.Background()

	t.Run("pushes the fresh unread count", func(t *testing.T) {
		repo := newFakeNotificationRepo()
		notifier := newFakeNotifier()
		svc := newTestService(repo, threeUsers(), notifier)

		first, err := svc.Send(ctx, 10, &notification.SendNotificationRequest{Title: "a", Content: "a"})
		require.NoError(t, err)
		_, err = svc.Send(ctx, 10, &notification.SendNotificationRequest{Title: "b", Content: "b"})
		require.NoError(t, err)

		require.NoError(t, svc.MarkSeen(ctx, first.ID, 2, "b@example.com"))

		count, err := svc.GetUnreadCount(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		assert.Equal(t, 1, notifier.counts[2])
	})

	t.Run("repeat marking is harmless", func(t *testing.T) {
		repo := newFakeNotificationRepo()
		notifier := newFakeNotifier()
		svc := newTestService(repo, threeUsers(), notifier)

		n, err := svc.Send(ctx, 10, &notification.SendNotificationRequest{Title: "a", Content: "a"})
		require.NoError(t, err)

		require.NoError(t, svc.MarkSeen(ctx, n.ID, 1, "a@example.com"))
		require.NoError(t, svc.MarkSeen(ctx, n.ID, 1, "a@example.com"))

		count, err := svc.GetUnreadCount(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("unknown notification", func(t *testing.T) {
		svc := newTestService(newFakeNotificationRepo(), threeUsers(), newFakeNotifier())
		err := svc.MarkSeen(ctx, 404, 1, "a@example.com")
		assert.ErrorIs(t, err, xerrors.ErrNotFound)
	})
}

func TestMarkAllSeen(t *testing.T) {
	ctx := context.Background()
	repo := newFakeNotificationRepo()
	notifier := newFakeNotifier()
	svc := newTestService(repo, threeUsers(), notifier)

	for i := 0; i < 3; i++ {
		_, err := svc.Send(ctx, 10, &notification.SendNotificationRequest{Title: "t", Content: "c"})
		require.NoError(t, err)
	}

	require.NoError(t, svc.MarkAllSeen(ctx, 1))

	count, err := svc.GetUnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, 0, notifier.counts[1])

	// Other users are untouched
	count, err = svc.GetUnreadCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	repo := newFakeNotificationRepo()
	svc := newTestService(repo, threeUsers(), newFakeNotifier())

	n, err := svc.Send(ctx, 10, &notification.SendNotificationRequest{Title: "only", Content: "one"})
	require.NoError(t, err)
	require.NoError(t, svc.MarkSeen(ctx, n.ID, 1, "a@example.com"))

	resp, err := svc.List(ctx, 1, &notification.NotificationListFilters{})
	require.NoError(t, err)

	require.Len(t, resp.Notifications, 1)
	assert.True(t, resp.Notifications[0].Seen)
	assert.Equal(t, 0, resp.UnreadCount)
	assert.Equal(t, int64(1), resp.Total)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.PageSize)
}

func TestCleanupExpired(t *testing.T) {
	ctx := context.Background()

	t.Run("reports both deletions and raises a system alert", func(t *testing.T) {
		repo := newFakeNotificationRepo()
		repo.expiredDeleted = 4
		repo.seenDeleted = 7
		notifier := newFakeNotifier()
		svc := newTestService(repo, nil, notifier)

		result, err := svc.CleanupExpired(ctx)
		require.NoError(t, err)

		assert.Equal(t, int64(4), result.DeletedNotifications)
		assert.Equal(t, int64(7), result.DeletedRecipients)

		// Seen rows older than one lifetime are the ones pruned
		assert.WithinDuration(t, time.Now().Add(-notification.Lifetime), repo.seenCutoff, time.Second)

		require.Len(t, notifier.alerts, 1)
		assert.Equal(t, "info", notifier.alerts[0].Severity)
		assert.Contains(t, notifier.alerts[0].Message, "4 expired notifications")
	})

	t.Run("stays quiet when nothing was pruned", func(t *testing.T) {
		notifier := newFakeNotifier()
		svc := newTestService(newFakeNotificationRepo(), nil, notifier)

		result, err := svc.CleanupExpired(ctx)
		require.NoError(t, err)

		assert.Zero(t, result.DeletedNotifications)
		assert.Zero(t, result.DeletedRecipients)
		assert.Empty(t, notifier.alerts)
	})
}

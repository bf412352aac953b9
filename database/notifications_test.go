package database

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"socialhub/models"
)

func TestSelfNotificationSuppressed(t *testing.T) {
	setupDB(t)
	alice := seedUser(t, "alice")

	n, err := CreateNotification(alice, alice, models.KindReaction, "reacted to your post", nil)
	require.NoError(t, err)
	require.Nil(t, n)

	count, err := UnreadNotificationCount(alice)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestCreateAndListNotifications(t *testing.T) {
	setupDB(t)
	alice := seedUser(t, "alice")
	bob := seedUser(t, "bob")

	postID := int64(7)
	n, err := CreateNotification(alice, bob, models.KindReaction, "reacted ❤️ to your post", &postID)
	require.NoError(t, err)
	require.NotNil(t, n)
	require.False(t, n.Read)
	require.NotNil(t, n.RelatedPostID)
	require.Equal(t, postID, *n.RelatedPostID)

	_, err = CreateNotification(alice, bob, models.KindFollow, "started following you", nil)
	require.NoError(t, err)

	notifications, err := NotificationsFor(alice, 0)
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	// Descending by createdAt
	require.Equal(t, models.KindFollow, notifications[0].Kind)
	require.Equal(t, models.KindReaction, notifications[1].Kind)
	require.Equal(t, "bob", notifications[0].Sender.Name)
}

func TestNotificationListLimit(t *testing.T) {
	setupDB(t)
	alice := seedUser(t, "alice")
	bob := seedUser(t, "bob")

	for i := 0; i < 60; i++ {
		_, err := CreateNotification(alice, bob, models.KindFollow, fmt.Sprintf("n%d", i), nil)
		require.NoError(t, err)
	}

	notifications, err := NotificationsFor(alice, 0)
	require.NoError(t, err)
	require.Len(t, notifications, 50)

	notifications, err = NotificationsFor(alice, 10)
	require.NoError(t, err)
	require.Len(t, notifications, 10)
}

func TestMarkNotificationReadScopedToOwner(t *testing.T) {
	setupDB(t)
	alice := seedUser(t, "alice")
	bob := seedUser(t, "bob")
	carol := seedUser(t, "carol")

	n, err := CreateNotification(alice, bob, models.KindFollow, "started following you", nil)
	require.NoError(t, err)

	// Carol does not own it: silent no-op, no error
	require.NoError(t, MarkNotificationRead(n.ID, carol))
	got, err := GetNotificationByID(n.ID)
	require.NoError(t, err)
	require.False(t, got.Read)

	// Missing id is also a silent no-op
	require.NoError(t, MarkNotificationRead(99999, alice))

	require.NoError(t, MarkNotificationRead(n.ID, alice))
	got, err = GetNotificationByID(n.ID)
	require.NoError(t, err)
	require.True(t, got.Read)
}

func TestMarkAllNotificationsRead(t *testing.T) {
	setupDB(t)
	alice := seedUser(t, "alice")
	bob := seedUser(t, "bob")

	for i := 0; i < 3; i++ {
		_, err := CreateNotification(alice, bob, models.KindFollow, "started following you", nil)
		require.NoError(t, err)
	}

	count, err := UnreadNotificationCount(alice)
	require.NoError(t, err)
	require.Equal(t, 3, count)

	require.NoError(t, MarkAllNotificationsRead(alice))

	count, err = UnreadNotificationCount(alice)
	require.NoError(t, err)
	require.Zero(t, count)
}

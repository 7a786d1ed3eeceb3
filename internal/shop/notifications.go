package shop

import (
	"context"

	"github.com/angelmondragon/obohub-backend/pkg/enums"
)

// notify prepends an unread notification to the staged feed.
func (c *Container) notify(next *snapshot, title, message string, kind enums.NotificationType) {
	n := Notification{
		ID:      c.ids.token(),
		Title:   title,
		Message: message,
		Date:    c.clock(),
		Type:    kind,
	}
	next.notifications = append([]Notification{n}, next.notifications...)
}

// MarkNotificationRead flags one notification as read. Unknown ids and
// already-read notifications leave the feed unchanged.
func (c *Container) MarkNotificationRead(ctx context.Context, id string) error {
	return c.mutate(ctx, func(next *snapshot) ([]Kind, error) {
		for i, n := range next.notifications {
			if n.ID != id {
				continue
			}
			if n.Read {
				return nil, nil
			}
			next.notifications[i].Read = true
			return []Kind{KindNotifications}, nil
		}
		return nil, nil
	})
}

// MarkAllNotificationsRead flags the whole feed as read.
func (c *Container) MarkAllNotificationsRead(ctx context.Context) error {
	return c.mutate(ctx, func(next *snapshot) ([]Kind, error) {
		changed := false
		for i := range next.notifications {
			if !next.notifications[i].Read {
				next.notifications[i].Read = true
				changed = true
			}
		}
		if !changed {
			return nil, nil
		}
		return []Kind{KindNotifications}, nil
	})
}

// UnreadCount counts notifications not yet read.
func (c *Container) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, n := range c.st.notifications {
		if !n.Read {
			count++
		}
	}
	return count
}

package notify

import (
	"context"
	"sync"
	"time"
)

type NoticeKind string

const (
	NoticeMessage NoticeKind = "notice"
	NoticeOpenURL NoticeKind = "open_url"
)

// Notice is one user-facing message or link waiting to be picked up by the
// front end.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message,omitempty"`
	URL     string     `json:"url,omitempty"`
	At      time.Time  `json:"at"`
}

const defaultInboxCapacity = 100

// Inbox buffers notices and links in memory until drained. When full, the
// oldest entry is dropped.
type Inbox struct {
	mu       sync.Mutex
	capacity int
	items    []Notice
	now      func() time.Time
}

func NewInbox(capacity int) *Inbox {
	if capacity <= 0 {
		capacity = defaultInboxCapacity
	}
	return &Inbox{capacity: capacity, now: time.Now}
}

func (i *Inbox) Notify(_ context.Context, message string) {
	i.push(Notice{Kind: NoticeMessage, Message: message})
}

func (i *Inbox) Open(_ context.Context, url string) error {
	i.push(Notice{Kind: NoticeOpenURL, URL: url})
	return nil
}

// Drain returns every pending notice in arrival order and empties the inbox.
func (i *Inbox) Drain() []Notice {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := i.items
	i.items = nil
	if out == nil {
		return []Notice{}
	}
	return out
}

func (i *Inbox) push(n Notice) {
	i.mu.Lock()
	defer i.mu.Unlock()
	n.At = i.now().UTC()
	if len(i.items) >= i.capacity {
		i.items = append(i.items[:0], i.items[1:]...)
	}
	i.items = append(i.items, n)
}

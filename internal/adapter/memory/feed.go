package memory

import (
	"context"
	"sync"

	"viral-reward/internal/core/port"
)

// Feed is an in-process port.ChangeFeed. It only reaches subscribers of the
// same process, which is enough for a single instance or for tests.
type Feed struct {
	mu   sync.Mutex
	subs map[string]map[*subscription]struct{}
}

var _ port.ChangeFeed = (*Feed)(nil)

// NewFeed returns a feed with no subscribers.
func NewFeed() *Feed {
	return &Feed{subs: map[string]map[*subscription]struct{}{}}
}

// Publish implements port.ChangeFeed. It never blocks: a subscriber that
// already has a notice pending does not need a second one.
func (f *Feed) Publish(_ context.Context, topics ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, topic := range topics {
		for sub := range f.subs[topic] {
			select {
			case sub.ch <- port.Change{Topic: topic}:
			default:
			}
		}
	}
	return nil
}

// Subscribe implements port.ChangeFeed.
func (f *Feed) Subscribe(ctx context.Context, topics ...string) (port.Subscription, error) {
	sub := &subscription{
		feed:   f,
		topics: topics,
		ch:     make(chan port.Change, 1),
		done:   make(chan struct{}),
	}
	f.mu.Lock()
	for _, topic := range topics {
		if f.subs[topic] == nil {
			f.subs[topic] = map[*subscription]struct{}{}
		}
		f.subs[topic][sub] = struct{}{}
	}
	f.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			_ = sub.Close()
		case <-sub.done:
		}
	}()
	return sub, nil
}

func (f *Feed) remove(sub *subscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, topic := range sub.topics {
		delete(f.subs[topic], sub)
		if len(f.subs[topic]) == 0 {
			delete(f.subs, topic)
		}
	}
}

type subscription struct {
	feed   *Feed
	topics []string
	ch     chan port.Change
	done   chan struct{}
	once   sync.Once
}

func (s *subscription) Changes() <-chan port.Change { return s.ch }

// Close unregisters the subscription and closes its channel.
func (s *subscription) Close() error {
	s.once.Do(func() {
		s.feed.remove(s)
		close(s.done)
		close(s.ch)
	})
	return nil
}

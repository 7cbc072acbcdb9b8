package redis

import (
	"context"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	"viral-reward/internal/core/port"
)

// Feed is a port.ChangeFeed over Redis Pub/Sub, so notices published by one
// instance reach live queries served by every other instance.
type Feed struct {
	client *redis.Client
	prefix string
}

var _ port.ChangeFeed = (*Feed)(nil)

// NewFeed returns a feed that namespaces its channels with prefix.
func NewFeed(client *redis.Client, prefix string) *Feed {
	return &Feed{client: client, prefix: prefix}
}

func (f *Feed) channel(topic string) string {
	if f.prefix == "" {
		return topic
	}
	return f.prefix + ":" + topic
}

func (f *Feed) topic(channel string) string {
	if f.prefix == "" {
		return channel
	}
	return strings.TrimPrefix(channel, f.prefix+":")
}

// Publish implements port.ChangeFeed. All topics go out in one round trip.
func (f *Feed) Publish(ctx context.Context, topics ...string) error {
	if len(topics) == 0 {
		return nil
	}
	_, err := f.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, topic := range topics {
			p.Publish(ctx, f.channel(topic), "")
		}
		return nil
	})
	return err
}

// Subscribe implements port.ChangeFeed. It returns once Redis has
// acknowledged the subscription, so no notice published afterwards is lost.
func (f *Feed) Subscribe(ctx context.Context, topics ...string) (port.Subscription, error) {
	channels := make([]string, len(topics))
	for i, topic := range topics {
		channels[i] = f.channel(topic)
	}
	ps := f.client.Subscribe(ctx, channels...)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	sub := &subscription{
		ps:   ps,
		ch:   make(chan port.Change, 1),
		done: make(chan struct{}),
	}
	sub.wg.Add(1)
	go sub.forward(ctx, f)
	return sub, nil
}

type subscription struct {
	ps   *redis.PubSub
	ch   chan port.Change
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
	err  error
}

// forward coalesces Redis messages into the one-slot change channel.
func (s *subscription) forward(ctx context.Context, f *Feed) {
	defer s.wg.Done()
	msgs := s.ps.Channel()
	for {
		select {
		case <-ctx.Done():
			go s.Close()
			return
		case <-s.done:
			return
		case msg, ok := <-msgs:
			if !ok {
				go s.Close()
				return
			}
			select {
			case s.ch <- port.Change{Topic: f.topic(msg.Channel)}:
			default:
			}
		}
	}
}

func (s *subscription) Changes() <-chan port.Change { return s.ch }

// Close unsubscribes, waits for the forwarder and closes the channel.
func (s *subscription) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.err = s.ps.Close()
		s.wg.Wait()
		close(s.ch)
	})
	return s.err
}

package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gm2211/hudson-dashboard/cons"
	"github.com/gm2211/hudson-dashboard/message"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu   sync.Mutex
	msgs [][]byte
}

func (r *recorder) push(b []byte) {
	r.mu.Lock()
	r.msgs = append(r.msgs, b)
	r.mu.Unlock()
}

func (r *recorder) events(t *testing.T) []message.Event {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]message.Event, 0, len(r.msgs))
	for _, b := range r.msgs {
		var evt message.Event
		require.NoError(t, json.Unmarshal(b, &evt))
		out = append(out, evt)
	}
	return out
}

func TestNotifyService_LocalOnly(t *testing.T) {
	rec := &recorder{}
	n := NewNotifyService(nil, "", rec.push, nil)
	require.Equal(t, cons.DefaultNotifyChannel, n.Channel())

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	n.Published(context.Background(), 7, at)

	evts := rec.events(t)
	require.Len(t, evts, 1)
	require.Equal(t, cons.EventPublished, evts[0].Type)
	require.Equal(t, 7, evts[0].Version)
	require.True(t, evts[0].PublishedAt.Equal(at))
}

func TestNotifyService_RedisFanOut(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	// 两个实例订阅同一频道，任一实例发布，两边的观看端都收到
	recA, recB := &recorder{}, &recorder{}
	a := NewNotifyService(rdb, "test:published", recA.push, nil)
	b := NewNotifyService(rdb, "test:published", recB.push, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 2)
	go func() { done <- a.Subscribe(ctx) }()
	go func() { done <- b.Subscribe(ctx) }()

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub("test:published")["test:published"] == 2
	}, 2*time.Second, 10*time.Millisecond)

	a.Published(ctx, 3, time.Now().UTC())

	require.Eventually(t, func() bool {
		return len(recA.events(t)) == 1 && len(recB.events(t)) == 1
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, recA.events(t)[0].EventID, recB.events(t)[0].EventID)

	cancel()
	for i := 0; i < 2; i++ {
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("subscriber did not stop")
		}
	}
}

func TestNotifyService_RedisDownFallsBackToLocal(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()

	rec := &recorder{}
	n := NewNotifyService(rdb, "", rec.push, nil)
	n.Published(context.Background(), 1, time.Now().UTC())

	require.Len(t, rec.events(t), 1)
}

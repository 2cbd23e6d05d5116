package stream

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func receive(t *testing.T, c *Client) string {
	t.Helper()
	select {
	case msg := <-c.Send:
		return string(msg)
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for message")
	}
	return ""
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil, nil)
	client := hub.Register("camp-1")
	defer hub.Unregister(client)
	other := hub.Register("camp-2")
	defer hub.Unregister(other)

	hub.Broadcast("camp-1", []byte("hello"))
	if got := receive(t, client); got != "hello" {
		t.Fatalf("unexpected message %q", got)
	}
	select {
	case <-other.Send:
		t.Fatalf("other campground should not receive")
	default:
	}
}

func TestHubHelpers(t *testing.T) {
	ch := redisChannel("abc")
	if ch != "campground:abc:bookings" {
		t.Fatalf("unexpected channel %s", ch)
	}
	if campgroundIDFromChannel(ch) != "abc" {
		t.Fatalf("unexpected campground id")
	}
	if campgroundIDFromChannel("bad") != "" || campgroundIDFromChannel("campground:x:other") != "" {
		t.Fatalf("expected empty campground id")
	}
}

func TestUnregisterCloses(t *testing.T) {
	hub := NewHub(nil, nil)
	client := hub.Register("camp-2")
	if hub.Subscribers("camp-2") != 1 {
		t.Fatalf("expected one subscriber")
	}
	hub.Unregister(client)
	hub.Unregister(client)
	if _, ok := <-client.Send; ok {
		t.Fatalf("expected channel closed")
	}
	if hub.Subscribers("camp-2") != 0 {
		t.Fatalf("expected no subscribers")
	}
}

func TestHubRedisDeliversOnce(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdb.Close()

	hub := NewHub(rdb, nil)
	defer hub.Close()
	ws := hub.Register("camp-redis")
	defer hub.Unregister(ws)

	hub.Broadcast("camp-redis", []byte("ping"))
	if got := receive(t, ws); got != "ping" {
		t.Fatalf("unexpected message %q", got)
	}
	select {
	case msg := <-ws.Send:
		t.Fatalf("duplicate delivery %q", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubRedisAcrossInstances(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdb.Close()

	a := NewHub(rdb, nil)
	defer a.Close()
	b := NewHub(rdb, nil)
	defer b.Close()

	ws := b.Register("camp-9")
	defer b.Unregister(ws)

	a.Broadcast("camp-9", []byte("from a"))
	if got := receive(t, ws); got != "from a" {
		t.Fatalf("unexpected message %q", got)
	}

	if err := rdb.Publish(context.Background(), "campground:camp-9:bookings", "external").Err(); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got := receive(t, ws); got != "external" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestHubRedisUnavailableFallsBackToLocal(t *testing.T) {
	server := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: server.Addr(), MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	server.Close()
	defer rdb.Close()

	hub := NewHub(rdb, nil)
	defer hub.Close()
	client := hub.Register("camp-bad")
	defer hub.Unregister(client)

	hub.Broadcast("camp-bad", []byte("ping"))
	if got := receive(t, client); got != "ping" {
		t.Fatalf("unexpected message %q", got)
	}
}

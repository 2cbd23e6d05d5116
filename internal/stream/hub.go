package stream

import (
	"context"
	"strings"
	"sync"
	"time"

	"backend-campbook/internal/logging"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	channelPrefix  = "campground:"
	channelSuffix  = ":bookings"
	channelPattern = channelPrefix + "*" + channelSuffix
)

// Hub fans booking events out to websocket clients grouped by campground.
// With Redis configured every instance publishes to Redis and delivers what
// it receives back from the pattern subscription; without Redis delivery is
// local only.
type Hub struct {
	redis   *redis.Client
	log     logrus.FieldLogger
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex

	pubsub *redis.PubSub
	done   chan struct{}
}

type Client struct {
	CampgroundID string
	Send         chan []byte
}

func NewHub(redisClient *redis.Client, log logrus.FieldLogger) *Hub {
	if log == nil {
		log = logging.Discard()
	}
	h := &Hub{
		log:     log,
		clients: map[string]map[*Client]struct{}{},
		done:    make(chan struct{}),
	}

	if redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		pubsub := redisClient.PSubscribe(context.Background(), channelPattern)
		if _, err := pubsub.Receive(ctx); err != nil {
			h.log.WithError(err).Warn("redis subscribe failed, delivering locally")
			_ = pubsub.Close()
		} else {
			h.redis = redisClient
			h.pubsub = pubsub
			go h.forward()
		}
	}
	if h.pubsub == nil {
		close(h.done)
	}
	return h
}

func (h *Hub) Register(campgroundID string) *Client {
	client := &Client{
		CampgroundID: campgroundID,
		Send:         make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[campgroundID] == nil {
		h.clients[campgroundID] = map[*Client]struct{}{}
	}
	h.clients[campgroundID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if group, ok := h.clients[client.CampgroundID]; ok {
		if _, ok := group[client]; !ok {
			return
		}
		delete(group, client)
		if len(group) == 0 {
			delete(h.clients, client.CampgroundID)
		}
		close(client.Send)
	}
}

// Subscribers reports how many clients follow campgroundID.
func (h *Hub) Subscribers(campgroundID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[campgroundID])
}

func (h *Hub) Broadcast(campgroundID string, payload []byte) {
	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(campgroundID), payload).Err()
		if err == nil {
			return
		}
		h.log.WithError(err).WithField("campground_id", campgroundID).Warn("redis publish failed, delivering locally")
	}
	h.deliver(campgroundID, payload)
}

// Close stops the Redis subscription.
func (h *Hub) Close() error {
	if h.pubsub == nil {
		return nil
	}
	err := h.pubsub.Close()
	<-h.done
	return err
}

func (h *Hub) deliver(campgroundID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[campgroundID] {
		select {
		case client.Send <- payload:
		default:
			// slow consumer, drop
		}
	}
}

func (h *Hub) forward() {
	defer close(h.done)
	for msg := range h.pubsub.Channel() {
		id := campgroundIDFromChannel(msg.Channel)
		if id == "" {
			continue
		}
		h.deliver(id, []byte(msg.Payload))
	}
}

func redisChannel(campgroundID string) string {
	return channelPrefix + campgroundID + channelSuffix
}

func campgroundIDFromChannel(ch string) string {
	if !strings.HasPrefix(ch, channelPrefix) || !strings.HasSuffix(ch, channelSuffix) {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(ch, channelPrefix), channelSuffix)
}

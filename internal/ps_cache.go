package internal

import (
	"context"
	"encoding/json"
	"time"

	"agrimarket-api-io/api/pkg/util"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	CHANNEL_GLOBAL_CACHE  = "GLOBAL_CACHE"
	CHANNEL_NOTIFICATIONS = "NOTIFICATIONS"
)

type CacheMessageType string

const (
	CacheInvalidateApplication       CacheMessageType = "application.invalidate"
	CacheInvalidateApplicationStats  CacheMessageType = "application.stats.invalidate"
	CacheInvalidateVendor            CacheMessageType = "vendor.invalidate"
	CacheInvalidateOrder             CacheMessageType = "order.invalidate"
	CacheInvalidateUserOrders        CacheMessageType = "user.orders.invalidate"
	CacheInvalidateUserNotifications CacheMessageType = "user.notifications.invalidate"
)

type CacheMessage struct {
	Type      CacheMessageType `json:"type"`
	Payload   string           `json:"payload"`
	Timestamp int64            `json:"timestamp"`
}

// Publisher fans cache invalidations and notification events out over Redis
// pub/sub. A nil Publisher or one without a client drops messages, which keeps
// services usable in tests and tools that run without Redis. Failures are
// returned, not logged; callers decide how loud to be.
type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

// PublishCacheMessage publishes a cache invalidation message to Redis pub/sub as JSON
func (p *Publisher) PublishCacheMessage(ctx context.Context, messageType CacheMessageType, payload string) error {
	return p.publish(ctx, CHANNEL_GLOBAL_CACHE, CacheMessage{
		Type:      messageType,
		Payload:   payload,
		Timestamp: time.Now().Unix(),
	})
}

// PublishEvent publishes a domain event for out-of-process delivery.
func (p *Publisher) PublishEvent(ctx context.Context, event any) error {
	return p.publish(ctx, CHANNEL_NOTIFICATIONS, event)
}

func (p *Publisher) publish(ctx context.Context, channel string, message any) error {
	if p == nil || p.rdb == nil {
		return nil
	}

	messageJSON, err := json.Marshal(message)
	if err != nil {
		return errors.Wrap(err, "marshal pub/sub message")
	}

	if err := p.rdb.Publish(ctx, channel, messageJSON).Err(); err != nil {
		return errors.Wrapf(err, "publish to %s", channel)
	}

	util.WithFields(logrus.Fields{"channel": channel}).Debug("published message")
	return nil
}

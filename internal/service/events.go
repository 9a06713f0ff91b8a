package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Skotchmaster/charity/pkg/logging"
)

const (
	TopicUsers     = "user_events"
	TopicAuth      = "auth_events"
	TopicCatalog   = "catalog_events"
	TopicDonations = "donation_events"
)

var Topics = []string{TopicUsers, TopicAuth, TopicCatalog, TopicDonations}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
}

const publishTimeout = 5 * time.Second

func publish(ctx context.Context, p Publisher, topic string, key any, event map[string]any) {
	if p == nil {
		return
	}
	pctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := p.Publish(pctx, topic, fmt.Sprint(key), event); err != nil {
		logging.FromContext(ctx).Warn("publish_failed", "topic", topic, "type", event["type"], "error", err)
	}
}

// revokeSessions is a no-op without a revoker.
func revokeSessions(ctx context.Context, r SessionRevoker, userID uint) error {
	if r == nil {
		return nil
	}
	if err := r.RevokeUserTokens(ctx, userID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"fmt"

	"github.com/cyverse-de/messaging/v9"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/cyverse-de/identitystore-admin/config"
)

// Notifier announces that a group's record or membership changed.
type Notifier interface {
	GroupChanged(ctx context.Context, groupID string) error
	Close()
}

type nopNotifier struct{}

func (nopNotifier) GroupChanged(context.Context, string) error { return nil }
func (nopNotifier) Close()                                     {}

type publisher interface {
	PublishContext(ctx context.Context, key string, body []byte) error
}

// AMQPNotifier publishes an empty message keyed <prefix>.<groupID> for each
// change, the same shape the group propagator consumes.
type AMQPNotifier struct {
	publisher publisher
	prefix    string
	closer    func()
}

func routingKey(prefix, groupID string) string {
	return fmt.Sprintf("%s.%s", prefix, groupID)
}

func NewAMQPNotifier(cfg *config.Config) (*AMQPNotifier, error) {
	publishClient, err := messaging.NewClient(cfg.AMQPURI, false)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to create the messaging publish client")
	}

	err = publishClient.SetupPublishing(cfg.AMQPExchangeName)
	if err != nil {
		publishClient.Close()
		return nil, errors.Wrap(err, "Unable to set up message publishing")
	}

	return &AMQPNotifier{
		publisher: publishClient,
		prefix:    cfg.AMQPRoutingPrefix,
		closer:    func() { publishClient.Close() },
	}, nil
}

func (n *AMQPNotifier) GroupChanged(ctx context.Context, groupID string) error {
	ctx, span := otel.Tracer(otelName).Start(ctx, "GroupChanged")
	defer span.End()

	key := routingKey(n.prefix, groupID)
	log.Debugf("publishing %s", key)

	return n.publisher.PublishContext(ctx, key, []byte{})
}

func (n *AMQPNotifier) Close() {
	if n.closer != nil {
		n.closer()
	}
}

// newNotifier returns a no-op notifier unless AMQP is configured.
func newNotifier(cfg *config.Config) (Notifier, error) {
	if !cfg.AMQPEnabled() {
		return nopNotifier{}, nil
	}
	n, err := NewAMQPNotifier(cfg)
	if err != nil {
		return nil, err
	}
	return n, nil
}

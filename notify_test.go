package main

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyverse-de/identitystore-admin/config"
)

type published struct {
	key  string
	body []byte
}

type fakePublisher struct {
	messages []published
	err      error
}

func (p *fakePublisher) PublishContext(ctx context.Context, key string, body []byte) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, published{key: key, body: body})
	return nil
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "index.group.g-1", routingKey("index.group", "g-1"))
	assert.Equal(t, "sso.changed.abc", routingKey("sso.changed", "abc"))
}

func TestAMQPNotifierPublishesEmptyBody(t *testing.T) {
	p := &fakePublisher{}
	closed := false
	n := &AMQPNotifier{publisher: p, prefix: config.DefaultRoutingPrefix, closer: func() { closed = true }}

	require.NoError(t, n.GroupChanged(context.Background(), "g-editors"))
	require.Len(t, p.messages, 1)
	assert.Equal(t, "index.group.g-editors", p.messages[0].key)
	assert.Empty(t, p.messages[0].body)

	n.Close()
	assert.True(t, closed)
}

func TestAMQPNotifierReturnsPublishError(t *testing.T) {
	n := &AMQPNotifier{publisher: &fakePublisher{err: errors.New("connection reset")}, prefix: "index.group"}

	err := n.GroupChanged(context.Background(), "g-1")
	assert.EqualError(t, err, "connection reset")
	n.Close()
}

func TestNewNotifierWithoutAMQP(t *testing.T) {
	n, err := newNotifier(&config.Config{})
	require.NoError(t, err)
	assert.IsType(t, nopNotifier{}, n)
	assert.NoError(t, n.GroupChanged(context.Background(), "g-1"))
	n.Close()
}

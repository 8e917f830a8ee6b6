package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pocket/internal/ledger"
)

type recordingChannel struct {
	exchange string
	key      string
	msg      amqp091.Publishing
	err      error
}

func (c *recordingChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	c.exchange, c.key, c.msg = exchange, key, msg
	return c.err
}

func (c *recordingChannel) Close() error { return nil }

func TestPublisher_Notify(t *testing.T) {
	ch := &recordingChannel{}
	p := &Publisher{channel: ch, exchange: "pocket.events"}

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	err := p.Notify(context.Background(), ledger.Event{
		Kind: ledger.EventTransferRecorded,
		IDs:  []string{"leg-1", "leg-2"},
		At:   at,
	})
	require.NoError(t, err)

	assert.Equal(t, "pocket.events", ch.exchange)
	assert.Equal(t, "transfer.recorded", ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp091.Persistent, ch.msg.DeliveryMode)

	msg, err := MessageFromJSON(ch.msg.Body)
	require.NoError(t, err)
	assert.Equal(t, Message{Kind: "transfer.recorded", IDs: []string{"leg-1", "leg-2"}, Timestamp: at}, msg)
}

func TestPublisher_NotifyError(t *testing.T) {
	p := &Publisher{channel: &recordingChannel{err: amqp091.ErrClosed}, exchange: "x"}

	err := p.Notify(context.Background(), ledger.Event{Kind: ledger.EventAccountChanged})
	assert.ErrorIs(t, err, amqp091.ErrClosed)
}

func TestNewMessage_EmptyIDs(t *testing.T) {
	body, err := NewMessage(ledger.Event{Kind: ledger.EventCategoryChanged}).ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(body), `"ids":[]`)
}

func TestMulti(t *testing.T) {
	var got []ledger.EventKind

	record := Func(func(_ context.Context, e ledger.Event) error {
		got = append(got, e.Kind)
		return nil
	})

	failing := Func(func(context.Context, ledger.Event) error {
		return errors.New("broker down")
	})

	m := Multi{failing, nil, record}

	err := m.Notify(context.Background(), ledger.Event{Kind: ledger.EventTransactionCreated})
	assert.EqualError(t, err, "broker down")
	assert.Equal(t, []ledger.EventKind{ledger.EventTransactionCreated}, got)

	assert.NoError(t, Multi{}.Notify(context.Background(), ledger.Event{}))
}

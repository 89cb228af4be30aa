package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sociogram/backend/internal/models"
	"github.com/sociogram/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	topic   string
	payload string
}

// recordingPublisher collects publishes; when failing is set every call errors
type recordingPublisher struct {
	failing bool
	calls   []published
	notify  chan published
}

func (p *recordingPublisher) Publish(topic string, payload []byte) error {
	msg := published{topic: topic, payload: string(payload)}
	p.calls = append(p.calls, msg)
	if p.notify != nil {
		p.notify <- msg
	}
	if p.failing {
		return errors.New("publish failed")
	}
	return nil
}

func enqueue(t *testing.T, store repositories.Store, topic, payload string) *models.OutboxEvent {
	t.Helper()
	evt := &models.OutboxEvent{Topic: topic, Payload: payload}
	require.NoError(t, store.Outbox().Enqueue(context.Background(), evt))
	return evt
}

func TestDrainPublishesAndMarks(t *testing.T) {
	store := repositories.NewMemoryStore()
	pub := &recordingPublisher{}
	d := NewDispatcher(store, pub)

	enqueue(t, store, "post/1/likes", `{"a":1}`)
	enqueue(t, store, "post/1/comments", `{"b":2}`)

	d.drain(context.Background())

	require.Len(t, pub.calls, 2)
	assert.Equal(t, published{topic: "post/1/likes", payload: `{"a":1}`}, pub.calls[0])
	assert.Equal(t, published{topic: "post/1/comments", payload: `{"b":2}`}, pub.calls[1])

	pending, err := store.Outbox().FetchPending(context.Background(), 10, d.maxAttempts)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// Nothing left, a second drain publishes nothing.
	d.drain(context.Background())
	assert.Len(t, pub.calls, 2)
}

func TestDrainRetriesUntilAttemptCap(t *testing.T) {
	store := repositories.NewMemoryStore()
	pub := &recordingPublisher{failing: true}
	d := NewDispatcher(store, pub)

	enqueue(t, store, "post/1/likes", `{}`)

	for i := 0; i < d.maxAttempts+2; i++ {
		d.drain(context.Background())
	}

	// One attempt per drain until the cap, then the event is left behind.
	assert.Len(t, pub.calls, d.maxAttempts)
}

func TestWakeTriggersImmediateDrain(t *testing.T) {
	store := repositories.NewMemoryStore()
	pub := &recordingPublisher{notify: make(chan published, 1)}
	d := NewDispatcher(store, pub)
	d.interval = time.Hour // only Wake can trigger the drain

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	enqueue(t, store, "post/1/likes", `{"x":1}`)
	d.Wake()

	select {
	case msg := <-pub.notify:
		assert.Equal(t, "post/1/likes", msg.topic)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not published after Wake")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not stop on context cancel")
	}
}

package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishToTopic(t *testing.T) {
	hub := NewHub()
	a, cleanupA := hub.Subscribe("poll-1")
	defer cleanupA()
	b, cleanupB := hub.Subscribe("poll-2")
	defer cleanupB()

	hub.Publish("poll-1", Event{Event: "results", Data: 42})

	select {
	case ev := <-a:
		assert.Equal(t, "poll-1", ev.Topic)
		assert.Equal(t, "results", ev.Event)
		assert.Equal(t, 42, ev.Data)
	default:
		t.Fatal("expected an event on poll-1")
	}

	select {
	case ev := <-b:
		t.Fatalf("unexpected event on poll-2: %+v", ev)
	default:
	}
}

func TestHub_FullBufferDoesNotBlock(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe("poll-1")
	defer cleanup()

	for i := 0; i < hub.bufferSize*3; i++ {
		hub.Publish("poll-1", Event{Event: "results", Data: i})
	}
	assert.Len(t, ch, hub.bufferSize)
}

func TestHub_CleanupRemovesSubscriber(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe("poll-1")
	_, cleanup2 := hub.Subscribe("poll-1")
	assert.Equal(t, 2, hub.SubscriberCount("poll-1"))
	assert.Equal(t, 2, hub.TotalSubscribers())

	cleanup()
	cleanup() // idempotent
	assert.Equal(t, 1, hub.SubscriberCount("poll-1"))

	_, open := <-ch
	require.False(t, open, "channel should be closed after cleanup")

	cleanup2()
	assert.Equal(t, 0, hub.TotalSubscribers())
	hub.Publish("poll-1", Event{Event: "results"})
}

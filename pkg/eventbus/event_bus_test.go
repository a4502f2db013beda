package eventbus

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	Name string
}

func TestPublish_DeliversToMatchingSubscriber(t *testing.T) {
	bus := NewEventPublisher(logrus.New())

	var received []testEvent
	bus.Subscribe(func(e testEvent) {
		received = append(received, e)
	})

	bus.Publish(testEvent{Name: "first"})
	bus.Publish(testEvent{Name: "second"})

	require.Len(t, received, 2)
	require.Equal(t, "first", received[0].Name)
}

func TestPublish_SkipsMismatchedSignatures(t *testing.T) {
	bus := NewEventPublisher(logrus.New())

	called := false
	bus.Subscribe(func(s string) {
		called = true
	})

	bus.Publish(testEvent{Name: "ignored"})
	require.False(t, called)
}

func TestPublish_PanickingSubscriberDoesNotStopOthers(t *testing.T) {
	bus := NewEventPublisher(logrus.New())

	bus.Subscribe(func(e testEvent) {
		panic("boom")
	})
	var received int
	bus.Subscribe(func(e testEvent) {
		received++
	})

	require.NotPanics(t, func() {
		bus.Publish(testEvent{Name: "x"})
	})
	require.Equal(t, 1, received)
}

func TestUnsubscribeAndClear(t *testing.T) {
	bus := NewEventPublisher(logrus.New())

	handler := func(e testEvent) {}
	bus.Subscribe(handler)
	require.Equal(t, 1, bus.SubscribersCount())

	bus.Unsubscribe(handler)
	require.Equal(t, 0, bus.SubscribersCount())

	bus.Subscribe(handler)
	bus.Subscribe(func(s string) {})
	bus.Clear()
	require.Equal(t, 0, bus.SubscribersCount())
}

func TestMatchSignature(t *testing.T) {
	require.True(t, MatchSignature(func(e testEvent) {}, []interface{}{testEvent{}}))
	require.False(t, MatchSignature(func(e testEvent) {}, []interface{}{"nope"}))
	require.False(t, MatchSignature(func(a, b testEvent) {}, []interface{}{testEvent{}}))
	require.False(t, MatchSignature("not a func", []interface{}{testEvent{}}))
}

package eventbus

import (
	"context"
	"testing"
)

type testEvent struct {
	n int
}

type otherEvent struct{}

func TestPublishDispatchesByType(t *testing.T) {
	Use(New())
	defer Use(nil)

	var got []int
	unsub := Subscribe(func(ctx context.Context, e testEvent) {
		got = append(got, e.n)
	})
	defer unsub()

	other := 0
	defer Subscribe(func(ctx context.Context, e otherEvent) { other++ })()

	Publish(context.Background(), testEvent{n: 1})
	Publish(context.Background(), testEvent{n: 2})

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("unexpected deliveries: %v", got)
	}
	if other != 0 {
		t.Fatalf("handler for other type was invoked")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	Use(New())
	defer Use(nil)

	count := 0
	unsub := Subscribe(func(ctx context.Context, e testEvent) { count++ })

	Publish(context.Background(), testEvent{})
	unsub()
	Publish(context.Background(), testEvent{})

	if count != 1 {
		t.Fatalf("expected 1 delivery, got %d", count)
	}
}

func TestUnsubscribeRemovesOnlyItsHandler(t *testing.T) {
	Use(New())
	defer Use(nil)

	first, second := 0, 0
	unsubFirst := Subscribe(func(ctx context.Context, e testEvent) { first++ })
	defer Subscribe(func(ctx context.Context, e testEvent) { second++ })()

	unsubFirst()
	Publish(context.Background(), testEvent{})

	if first != 0 || second != 1 {
		t.Fatalf("expected only second handler to run, got first=%d second=%d", first, second)
	}
}

func TestPublishWithoutBusIsNoop(t *testing.T) {
	Use(nil)
	Publish(context.Background(), testEvent{})

	if unsub := Subscribe(func(ctx context.Context, e testEvent) {}); unsub == nil {
		t.Fatalf("expected non-nil unsubscribe")
	}
}

// internal/handler/event_bus_test.go
package handler

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"print-service/internal/model"
)

func TestEventBusDeliversJobUpdates(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	sub := bus.Subscribe(EventJobUpdate)

	// The websocket handler owns the consuming goroutine; constructing it
	// is all the startup wiring the bus needs.
	NewWebSocketHandler(bus, zap.NewNop())

	job := model.NewPrintJob("ORD-0042", model.RoleReceipt, "RPP02N-58", 1)
	bus.PublishJobUpdate(job)

	select {
	case event := <-sub:
		if event.Type != EventJobUpdate {
			t.Fatalf("event type = %q, want %q", event.Type, EventJobUpdate)
		}
		got, ok := event.Data.(*model.PrintJob)
		if !ok {
			t.Fatalf("event data is %T, want *model.PrintJob", event.Data)
		}
		if got.OrderNumber != "ORD-0042" {
			t.Fatalf("order number = %q, want ORD-0042", got.OrderNumber)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("job update never reached the subscriber")
	}
}

func TestEventBusPublishNeverBlocks(t *testing.T) {
	// No consumer: the buffered channel fills up and further publishes
	// must drop instead of stalling the print pipeline.
	bus := NewEventBus(zap.NewNop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1100; i++ {
			bus.PublishJobUpdate(model.NewPrintJob("ORD-1", model.RoleReceipt, "p", 1))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full bus")
	}
}

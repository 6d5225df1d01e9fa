package service

import (
	"strings"
	"testing"
	"time"
)

func TestEvent_Format(t *testing.T) {
	t.Parallel()

	e := &Event{Type: EventTaskOverdue, Data: map[string]string{"task_id": "task:1"}}
	got := e.Format()
	want := "event: timeline.task_overdue\ndata: {\"task_id\":\"task:1\"}\n\n"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestEventHub_PublishRoutesByUser(t *testing.T) {
	t.Parallel()
	hub := NewEventHubWithHeartbeat(time.Hour)
	defer hub.Close()

	a1 := hub.Subscribe("user:a", "s1")
	a2 := hub.Subscribe("user:a", "s2")
	b := hub.Subscribe("user:b", "s3")

	if n := hub.SubscriberCount("user:a"); n != 2 {
		t.Fatalf("expected 2 subscribers, got %d", n)
	}

	hub.SendToUser("user:a", EventSignedIn, nil)

	for _, sub := range []*Subscriber{a1, a2} {
		select {
		case ev := <-sub.Events:
			if ev.Type != EventSignedIn {
				t.Errorf("unexpected event %s", ev.Type)
			}
		default:
			t.Errorf("subscriber %s missed the event", sub.ID)
		}
	}
	select {
	case ev := <-b.Events:
		t.Errorf("user:b should not receive %s", ev.Type)
	default:
	}
}

func TestEventHub_Unsubscribe(t *testing.T) {
	t.Parallel()
	hub := NewEventHubWithHeartbeat(time.Hour)
	defer hub.Close()

	sub := hub.Subscribe("user:a", "s1")
	hub.Unsubscribe("user:a", "s1")

	if _, open := <-sub.Done; open {
		t.Error("expected Done closed")
	}
	if hub.SubscriberCount("user:a") != 0 {
		t.Error("expected no subscribers")
	}

	// Unknown ids are ignored
	hub.Unsubscribe("user:a", "s1")
	hub.SendToUser("user:a", EventSignedOut, nil)
}

func TestEventHub_FullBufferDropsEvents(t *testing.T) {
	t.Parallel()
	hub := NewEventHubWithHeartbeat(time.Hour)
	defer hub.Close()

	sub := hub.Subscribe("user:a", "s1")
	for i := 0; i < cap(sub.Events)+10; i++ {
		hub.SendToUser("user:a", EventRefreshed, i)
	}
	if len(sub.Events) != cap(sub.Events) {
		t.Errorf("expected a full buffer, got %d", len(sub.Events))
	}
}

func TestEventHub_Heartbeat(t *testing.T) {
	t.Parallel()
	hub := NewEventHubWithHeartbeat(10 * time.Millisecond)
	defer hub.Close()

	sub := hub.Subscribe("user:a", "s1")

	select {
	case ev := <-sub.Events:
		if ev.Type != EventHeartbeat {
			t.Errorf("expected heartbeat, got %s", ev.Type)
		}
		if !strings.Contains(ev.Format(), "timestamp") {
			t.Error("heartbeat should carry a timestamp")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no heartbeat received")
	}
}

func TestEventHub_CloseIsIdempotent(t *testing.T) {
	t.Parallel()
	hub := NewEventHubWithHeartbeat(time.Hour)

	sub := hub.Subscribe("user:a", "s1")
	hub.Close()
	hub.Close()

	if _, open := <-sub.Events; open {
		t.Error("expected Events closed")
	}
}

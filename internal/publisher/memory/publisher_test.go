package memory

import (
	"context"
	"testing"

	"github.com/stordev/sitescout/internal/etl"
)

func TestPublisherStoresMessages(t *testing.T) {
	t.Parallel()

	pub := New()
	id1, err := pub.Publish(context.Background(), "site-scout-runs", etl.RunEvent{Source: "qcew"})
	if err != nil || id1 != "memory-1" {
		t.Fatalf("unexpected publish result id=%s err=%v", id1, err)
	}
	id2, err := pub.Publish(context.Background(), "site-scout-runs", etl.RunEvent{Source: "acs"})
	if err != nil || id2 != "memory-2" {
		t.Fatalf("unexpected publish result id=%s err=%v", id2, err)
	}

	msgs := pub.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if ev, ok := msgs[0].Payload.(etl.RunEvent); !ok || ev.Source != "qcew" {
		t.Fatalf("payload not recorded correctly: %+v", msgs[0])
	}

	msgs[0].Topic = "modified"
	if pub.Messages()[0].Topic == "modified" {
		t.Fatal("expected Messages() to return a copy")
	}
}

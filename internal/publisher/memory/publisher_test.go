package memory

import (
	"context"
	"testing"

	"github.com/JakeFAU/newspulse/internal/news"
)

func TestPublisherStoresMessages(t *testing.T) {
	t.Parallel()

	pub := New()
	id1, err := pub.Publish(context.Background(), news.TopicCollectionCompleted, map[string]int{"saved": 3})
	if err != nil || id1 != "memory-1" {
		t.Fatalf("unexpected publish result id=%s err=%v", id1, err)
	}
	id2, err := pub.Publish(context.Background(), news.TopicArticleEnriched, "payload")
	if err != nil || id2 != "memory-2" {
		t.Fatalf("unexpected publish result id=%s err=%v", id2, err)
	}

	msgs := pub.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Topic != news.TopicCollectionCompleted || msgs[1].Topic != news.TopicArticleEnriched {
		t.Fatalf("topics not recorded correctly: %+v", msgs)
	}

	msgs[0].Topic = "modified"
	if pub.Messages()[0].Topic == "modified" {
		t.Fatal("expected Messages() to return a copy")
	}

	enriched := pub.Topic(news.TopicArticleEnriched)
	if len(enriched) != 1 || enriched[0] != "payload" {
		t.Fatalf("unexpected topic filter result: %+v", enriched)
	}
}

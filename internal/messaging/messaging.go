package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"auction-storefront/utils"
)

// Topics published by the storefront
const (
	TopicBidPlaced     = "auction.bid_placed"
	TopicAuctionClosed = "auction.closed"
	TopicOrderPlaced   = "order.placed"
)

// Publisher defines an interface for publishing events to a message broker.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event any) error
	Close() error
}

// BidPlaced is published for every accepted bid
type BidPlaced struct {
	ProductID  string    `json:"product_id"`
	BidID      string    `json:"bid_id"`
	BidderID   string    `json:"bidder_id"`
	BidderName string    `json:"bidder_name,omitempty"`
	Amount     float64   `json:"amount"`
	PlacedAt   time.Time `json:"placed_at"`
}

// AuctionClosed is published once per auction when its deadline passes
type AuctionClosed struct {
	ProductID   string    `json:"product_id"`
	WinnerID    string    `json:"winner_id,omitempty"`
	FinalAmount float64   `json:"final_amount"`
	BidCount    int       `json:"bid_count"`
	ClosedAt    time.Time `json:"closed_at"`
}

// OrderPlaced is published for every order created at checkout or on an auction win
type OrderPlaced struct {
	OrderID     string    `json:"order_id"`
	UserID      string    `json:"user_id"`
	ProductID   string    `json:"product_id"`
	Status      string    `json:"status"`
	TotalAmount float64   `json:"total_amount"`
	PlacedAt    time.Time `json:"placed_at"`
}

// LogPublisher writes events to the structured log. It is used when no broker is configured.
type LogPublisher struct{}

// NewLogPublisher creates a LogPublisher
func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (LogPublisher) PublishEvent(_ context.Context, topic string, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	utils.Info("event published", map[string]any{
		"topic":   topic,
		"key":     key,
		"payload": string(payload),
	})
	return nil
}

func (LogPublisher) Close() error { return nil }

// Message is one event captured by a RecordingPublisher
type Message struct {
	Topic string
	Key   string
	Event any
}

// RecordingPublisher keeps published events in memory
type RecordingPublisher struct {
	mu       sync.Mutex
	messages []Message
	Err      error
}

func (r *RecordingPublisher) PublishEvent(_ context.Context, topic string, key string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.messages = append(r.messages, Message{Topic: topic, Key: key, Event: event})
	return nil
}

func (r *RecordingPublisher) Close() error { return nil }

// Messages returns the events published so far, optionally filtered by topic
func (r *RecordingPublisher) Messages(topic string) []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Message
	for _, m := range r.messages {
		if topic == "" || m.Topic == topic {
			out = append(out, m)
		}
	}
	return out
}

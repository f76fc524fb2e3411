package services

import (
	"context"
	"encoding/json"
	"time"

	"blogapp/global"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventArticleLike = "article.like"
	EventAuthorLike  = "author.like"
	EventFollow      = "author.follow"
)

// InteractionEvent is published to the broker after every committed toggle.
type InteractionEvent struct {
	Type   string    `json:"type"`
	Actor  string    `json:"actor"`
	Target string    `json:"target"`
	Active bool      `json:"active"`
	Count  int       `json:"count"`
	At     time.Time `json:"at"`
}

// Publisher delivers interaction events.
type Publisher interface {
	Publish(ctx context.Context, event InteractionEvent) error
}

// AMQPPublisher publishes events as persistent JSON messages to one queue
// through the default exchange.
type AMQPPublisher struct {
	Channel *amqp.Channel
	Queue   string
}

func (p *AMQPPublisher) Publish(ctx context.Context, event InteractionEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.Channel.PublishWithContext(ctx, "", p.Queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.At,
		Type:         event.Type,
		Body:         body,
	})
}

// Events is the publisher used by the toggle operations; nil disables
// publishing.
var Events Publisher

func publish(ctx context.Context, kind, actor, target string, res *ToggleResult) {
	if Events == nil {
		return
	}
	event := InteractionEvent{
		Type:   kind,
		Actor:  actor,
		Target: target,
		Active: res.Active,
		Count:  res.Count,
		At:     time.Now().UTC(),
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := Events.Publish(ctx, event); err != nil {
		global.Logger.WithError(err).WithField("event", kind).Warn("interaction event not published")
	}
}

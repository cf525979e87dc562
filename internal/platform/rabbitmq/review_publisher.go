package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"gopher-classifieds/internal/model"
)

const reviewMessageType = "posting.review"

// ReviewPublisher puts review notices for new postings on the review queue.
// The queue is declared once by New; the publisher keeps one channel and
// reopens it after the broker closes it.
type ReviewPublisher struct {
	conn      *amqp.Connection
	queueName string

	mu sync.Mutex
	ch *amqp.Channel
}

func NewReviewPublisher(conn *amqp.Connection, queueName string) *ReviewPublisher {
	return &ReviewPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *ReviewPublisher) PublishReview(ctx context.Context, notice model.ReviewNotice) error {
	msg, err := reviewMessage(notice)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil || p.ch.IsClosed() {
		ch, err := p.conn.Channel()
		if err != nil {
			return fmt.Errorf("open review channel failed: %w", err)
		}
		p.ch = ch
	}

	if err := p.ch.PublishWithContext(ctx, "", p.queueName, false, false, msg); err != nil {
		// a failed publish may leave the channel unusable
		_ = p.ch.Close()
		p.ch = nil
		return fmt.Errorf("publish review notice for posting %d failed: %w", notice.PostingID, err)
	}
	return nil
}

func (p *ReviewPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return nil
	}
	err := p.ch.Close()
	p.ch = nil
	return err
}

// reviewMessage ids the message by posting so moderators can drop redeliveries.
func reviewMessage(notice model.ReviewNotice) (amqp.Publishing, error) {
	if notice.PostingID == 0 {
		return amqp.Publishing{}, fmt.Errorf("review notice without posting id")
	}
	body, err := json.Marshal(notice)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal review notice failed: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    "posting-" + strconv.FormatUint(uint64(notice.PostingID), 10),
		Type:         reviewMessageType,
		Timestamp:    notice.SubmittedAt,
		Body:         body,
	}, nil
}

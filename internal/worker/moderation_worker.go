package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"gopher-classifieds/internal/model"
)

var errInvalidDecision = errors.New("invalid moderation decision")

// StatusUpdater applies a status to a posting and reports whether a row changed.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, id uint, status int) (bool, error)
}

// ModerationWorker consumes moderation decisions made outside this service
// and writes them to the posting store.
type ModerationWorker struct {
	conn      *amqp.Connection
	postings  StatusUpdater
	queueName string
	log       logrus.FieldLogger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewModerationWorker(conn *amqp.Connection, postings StatusUpdater, queueName string, log logrus.FieldLogger) *ModerationWorker {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ModerationWorker{
		conn:      conn,
		postings:  postings,
		queueName: queueName,
		log:       log.WithField("worker", "moderation"),
	}
}

func (w *ModerationWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if _, err := ch.QueueDeclare(w.queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}
	if err := ch.Qos(16, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker qos failed: %w", err)
	}

	deliveries, err := ch.Consume(w.queueName, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					w.log.Warn("delivery channel closed")
					return
				}
				w.dispatch(workerCtx, d)
			}
		}
	}()

	w.log.WithField("queue", w.queueName).Info("moderation worker started")
	return nil
}

func (w *ModerationWorker) dispatch(ctx context.Context, d amqp.Delivery) {
	err := w.Handle(ctx, d.Body)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, errInvalidDecision):
		w.log.WithError(err).Warn("dropping moderation decision")
		_ = d.Nack(false, false)
	default:
		// store trouble: hand the decision back for another attempt
		w.log.WithError(err).Error("apply moderation decision failed")
		_ = d.Nack(false, !d.Redelivered)
	}
}

// Handle decodes and applies one decision.
func (w *ModerationWorker) Handle(ctx context.Context, body []byte) error {
	var decision model.ModerationDecision
	if err := json.Unmarshal(body, &decision); err != nil {
		return fmt.Errorf("%w: %v", errInvalidDecision, err)
	}
	if !decision.Valid() {
		return fmt.Errorf("%w: posting %d status %d", errInvalidDecision, decision.PostingID, decision.Status)
	}

	changed, err := w.postings.UpdateStatus(ctx, decision.PostingID, decision.Status)
	if err != nil {
		return err
	}
	w.log.WithFields(logrus.Fields{
		"posting_id": decision.PostingID,
		"status":     decision.Status,
		"changed":    changed,
	}).Info("moderation decision applied")
	return nil
}

func (w *ModerationWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

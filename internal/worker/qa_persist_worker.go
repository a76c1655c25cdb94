package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"pdfqa/internal/model"
	"pdfqa/internal/repository"
)

// QAPersistWorker drains the persistence queue and writes answered
// exchanges into MySQL.
type QAPersistWorker struct {
	conn      *amqp.Connection
	repo      *repository.QAExchangeRepository
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewQAPersistWorker(conn *amqp.Connection, repo *repository.QAExchangeRepository, queueName string) *QAPersistWorker {
	return &QAPersistWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
	}
}

func (w *QAPersistWorker) Start(ctx context.Context) error {
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

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
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
					return
				}

				var ex model.QAExchange
				if err := json.Unmarshal(d.Body, &ex); err != nil {
					log.Error().Err(err).Msg("worker decode qa exchange failed")
					_ = d.Nack(false, false)
					continue
				}

				if err := w.repo.Create(&ex); err != nil {
					log.Error().Err(err).Msg("worker persist qa exchange failed")
					_ = d.Nack(false, false)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *QAPersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

package services

import (
	"context"
	"fmt"
	"log/slog"

	"famfin/internal/amqp"
	"famfin/internal/core"
	"famfin/internal/storage"
)

// TransactionService persists transactions and publishes created events.
// It implements report.TransactionWriter.
type TransactionService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewTransactionService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *TransactionService {
	return &TransactionService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// CreateTransaction saves the transaction to SQLite first, then publishes a
// created event. The event is best-effort: a broker failure never fails the
// request, the transaction is already saved locally.
func (s *TransactionService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	created, err := s.storage.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	if err := s.publishCreated(ctx, created); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"id", created.ID, "error", err)
	}

	return created, nil
}

func (s *TransactionService) publishCreated(ctx context.Context, t core.Transaction) error {
	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not configured, skipping transaction event")
		return nil
	}

	msg := amqp.NewTransactionCreatedMessage(
		t.ID, int(t.Date.Month()), t.Date.Year(),
		core.ToCents(t.Amount), t.Account, t.Category, t.Unexpected)
	return s.amqpClient.PublishTransactionCreated(ctx, msg)
}

// Close closes both storage and AMQP connections.
func (s *TransactionService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}

	return nil
}

package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/metinatakli/ticket-booking-engine/internal/domain"
)

const paymentTicketConstraint = "payments_ticket_id_key"

type PostgresPaymentRepository struct {
	db DBTX
}

func NewPostgresPaymentRepository(db DBTX) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{
		db: db,
	}
}

func (p *PostgresPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (
			ticket_id,
			provider_intent_id,
			amount,
			currency,
			status,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := p.db.QueryRow(
		ctx,
		query,
		payment.TicketID,
		payment.ProviderIntentID,
		payment.Amount,
		payment.Currency,
		payment.Status,
		payment.CreatedAt,
	).Scan(&payment.ID)

	if err != nil {
		if isUniqueViolation(err, paymentTicketConstraint) {
			return domain.ErrPaymentAlreadyLinked
		}

		return err
	}

	return nil
}

func (p *PostgresPaymentRepository) GetByIntentId(ctx context.Context, intentID string) (*domain.Payment, error) {
	query := `
		SELECT id, ticket_id, provider_intent_id, amount, currency, status, created_at
		FROM payments
		WHERE provider_intent_id = $1
	`

	var payment domain.Payment

	err := p.db.QueryRow(ctx, query, intentID).Scan(
		&payment.ID,
		&payment.TicketID,
		&payment.ProviderIntentID,
		&payment.Amount,
		&payment.Currency,
		&payment.Status,
		&payment.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}

		return nil, err
	}

	return &payment, nil
}

func (p *PostgresPaymentRepository) UpdateStatus(ctx context.Context, id int, status domain.PaymentStatus) error {
	query := `UPDATE payments
		SET status = $1
		WHERE id = $2
	`

	tag, err := p.db.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}

	return nil
}

func (p *PostgresPaymentRepository) LinkTicket(
	ctx context.Context,
	id int,
	ticketID int,
	status domain.PaymentStatus) error {

	query := `UPDATE payments
		SET ticket_id = $1, status = $2
		WHERE id = $3 AND ticket_id IS NULL
	`

	tag, err := p.db.Exec(ctx, query, ticketID, status, id)
	if err != nil {
		if isUniqueViolation(err, paymentTicketConstraint) {
			return domain.ErrPaymentAlreadyLinked
		}

		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentAlreadyLinked
	}

	return nil
}

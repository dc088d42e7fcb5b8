package emailqueue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/emailqueue/pkg/contact"
)

// PostgresStorage implements Storage on top of a pgx connection pool using
// the normalized contact model: messages, a deduplicated contact table, and
// a join table carrying the header role. The claim is a single conditional
// UPDATE, so concurrent dispatcher processes cannot both claim a message.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage creates a Postgres-backed storage. The schema is
// managed by the migrations shipped with this module.
func NewPostgresStorage(pool *pgxpool.Pool) (*PostgresStorage, error) {
	if pool == nil {
		return nil, ErrStorageNil
	}
	return &PostgresStorage{pool: pool}, nil
}

const messageColumns = `id::text, subject, body, status, template_class, unique_key, sending_schedule, created_at, last_modified_at`

// CreateMessage implements EnqueueStorage. The message row, contact upserts,
// and role associations are written in one transaction.
func (ps *PostgresStorage) CreateMessage(ctx context.Context, msg *Message) error {
	if msg == nil {
		return errors.New("message cannot be nil")
	}
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}

	now := time.Now()
	msg.Status = StatusQueued
	if msg.SendingSchedule.IsZero() {
		msg.SendingSchedule = now
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now
	}
	msg.LastModifiedAt = now

	tx, err := ps.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO email_messages (id, subject, body, status, template_class, unique_key, sending_schedule, created_at, last_modified_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9)
	`, msg.ID.String(), msg.Subject, msg.Body, string(StatusQueued), msg.TemplateClass, msg.UniqueKey,
		msg.SendingSchedule, msg.CreatedAt, msg.LastModifiedAt)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	for _, assoc := range []struct {
		role     Role
		contacts []contact.Contact
	}{
		{RoleFrom, msg.From},
		{RoleTo, msg.To},
		{RoleCC, msg.CC},
		{RoleBCC, msg.BCC},
	} {
		if err := ps.linkContacts(ctx, tx, msg.ID, assoc.role, assoc.contacts); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit message: %w", err)
	}
	return nil
}

// linkContacts upserts each contact row and associates it with the message
// under the given role. A repeated address within one role is linked once.
func (ps *PostgresStorage) linkContacts(ctx context.Context, tx pgx.Tx, messageID uuid.UUID, role Role, contacts []contact.Contact) error {
	seen := make(map[string]struct{}, len(contacts))
	position := 0
	for _, c := range contacts {
		address := strings.ToLower(strings.TrimSpace(c.Address))
		if address == "" {
			continue
		}
		if _, dup := seen[address]; dup {
			continue
		}
		seen[address] = struct{}{}

		// The contact table would accumulate redundant rows otherwise, so
		// messages attach to an existing contact when possible; a changed
		// non-empty display name refreshes the row.
		var contactID string
		err := tx.QueryRow(ctx, `
			INSERT INTO email_contacts (id, address, display_name)
			VALUES ($1::uuid, $2, $3)
			ON CONFLICT (address) DO UPDATE
			SET display_name = CASE
				WHEN EXCLUDED.display_name <> '' THEN EXCLUDED.display_name
				ELSE email_contacts.display_name
			END
			RETURNING id::text
		`, uuid.New().String(), address, c.DisplayName).Scan(&contactID)
		if err != nil {
			return fmt.Errorf("failed to upsert contact %q: %w", address, err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO email_message_contacts (message_id, contact_id, role, position)
			VALUES ($1::uuid, $2::uuid, $3, $4)
		`, messageID.String(), contactID, string(role), position)
		if err != nil {
			return fmt.Errorf("failed to link contact %q as %s: %w", address, role, err)
		}
		position++
	}
	return nil
}

// FindByUniqueKey implements EnqueueStorage.
func (ps *PostgresStorage) FindByUniqueKey(ctx context.Context, templateClass, uniqueKey string) (*Message, error) {
	row := ps.pool.QueryRow(ctx, `
		SELECT `+messageColumns+`
		FROM email_messages
		WHERE template_class = $1 AND unique_key = $2
		LIMIT 1
	`, templateClass, uniqueKey)

	msg, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to query message by unique key: %w", err)
	}

	if err := ps.attachContacts(ctx, []*Message{msg}); err != nil {
		return nil, err
	}
	return msg, nil
}

// FindDue implements DispatchStorage. Result order is unspecified by
// contract; the query deliberately carries no ORDER BY.
func (ps *PostgresStorage) FindDue(ctx context.Context, limit int) ([]Message, error) {
	return ps.findQueued(ctx, "sending_schedule <= now()", limit)
}

// FindScheduled implements QueryStorage.
func (ps *PostgresStorage) FindScheduled(ctx context.Context, limit int) ([]Message, error) {
	return ps.findQueued(ctx, "sending_schedule > now()", limit)
}

func (ps *PostgresStorage) findQueued(ctx context.Context, scheduleCond string, limit int) ([]Message, error) {
	if limit < 0 {
		return nil, ErrInvalidLimit
	}

	rows, err := ps.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM email_messages
		WHERE status = 'queued' AND `+scheduleCond+`
		LIMIT NULLIF($1, 0)
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query queued messages: %w", err)
	}
	return ps.collectMessages(ctx, rows)
}

// CountScheduled implements DispatchStorage.
func (ps *PostgresStorage) CountScheduled(ctx context.Context) (int, error) {
	var count int
	err := ps.pool.QueryRow(ctx, `
		SELECT count(*) FROM email_messages
		WHERE status = 'queued' AND sending_schedule > now()
	`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count scheduled messages: %w", err)
	}
	return count, nil
}

// FindByStatus implements QueryStorage.
func (ps *PostgresStorage) FindByStatus(ctx context.Context, status Status, limit int) ([]Message, error) {
	if limit < 0 {
		return nil, ErrInvalidLimit
	}

	rows, err := ps.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM email_messages
		WHERE status = $1
		LIMIT NULLIF($2, 0)
	`, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages by status: %w", err)
	}
	return ps.collectMessages(ctx, rows)
}

// ClaimMessage implements DispatchStorage. The conditional UPDATE is the
// system's synchronization point: exactly one concurrent claimer observes a
// non-zero row count.
func (ps *PostgresStorage) ClaimMessage(ctx context.Context, id uuid.UUID) error {
	tag, err := ps.pool.Exec(ctx, `
		UPDATE email_messages
		SET status = 'in-progress', last_modified_at = now()
		WHERE id = $1::uuid AND status = 'queued'
	`, id.String())
	if err != nil {
		return fmt.Errorf("failed to claim message %s: %w", id, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// The row was not queued: either it doesn't exist or another run won.
	var status string
	err = ps.pool.QueryRow(ctx, `SELECT status FROM email_messages WHERE id = $1::uuid`, id.String()).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrMessageNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to inspect message %s after claim: %w", id, err)
	}
	return ErrAlreadyClaimed
}

// MarkSent implements DispatchStorage.
func (ps *PostgresStorage) MarkSent(ctx context.Context, id uuid.UUID) error {
	return ps.markTerminal(ctx, id, StatusSent)
}

// MarkFailed implements DispatchStorage.
func (ps *PostgresStorage) MarkFailed(ctx context.Context, id uuid.UUID) error {
	return ps.markTerminal(ctx, id, StatusFailed)
}

func (ps *PostgresStorage) markTerminal(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := ps.pool.Exec(ctx, `
		UPDATE email_messages
		SET status = $2, last_modified_at = now()
		WHERE id = $1::uuid AND status <> $2
	`, id.String(), string(status))
	if err != nil {
		return fmt.Errorf("failed to mark message %s as %s: %w", id, status, err)
	}
	if tag.RowsAffected() == 0 {
		// Either already in the target status (idempotent no-op) or missing.
		var exists bool
		if err := ps.pool.QueryRow(ctx, `SELECT true FROM email_messages WHERE id = $1::uuid`, id.String()).Scan(&exists); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrMessageNotFound
			}
			return fmt.Errorf("failed to inspect message %s: %w", id, err)
		}
	}
	return nil
}

// collectMessages scans message rows and loads their contact lists in one
// follow-up query.
func (ps *PostgresStorage) collectMessages(ctx context.Context, rows pgx.Rows) ([]Message, error) {
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read message rows: %w", err)
	}

	if err := ps.attachContacts(ctx, msgs); err != nil {
		return nil, err
	}

	out := make([]Message, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, *msg)
	}
	return out, nil
}

// attachContacts loads the role-tagged contact associations for a batch of
// messages, preserving per-role insertion order.
func (ps *PostgresStorage) attachContacts(ctx context.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}

	byID := make(map[string]*Message, len(msgs))
	ids := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		key := msg.ID.String()
		byID[key] = msg
		ids = append(ids, key)
	}

	rows, err := ps.pool.Query(ctx, `
		SELECT mc.message_id::text, mc.role, c.address, c.display_name
		FROM email_message_contacts mc
		JOIN email_contacts c ON c.id = mc.contact_id
		WHERE mc.message_id = ANY($1::uuid[])
		ORDER BY mc.message_id, mc.role, mc.position
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to load message contacts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var messageID, role, address, displayName string
		if err := rows.Scan(&messageID, &role, &address, &displayName); err != nil {
			return fmt.Errorf("failed to scan contact row: %w", err)
		}
		msg, ok := byID[messageID]
		if !ok {
			continue
		}
		c := contact.Contact{Address: address, DisplayName: displayName}
		switch Role(role) {
		case RoleFrom:
			msg.From = append(msg.From, c)
		case RoleTo:
			msg.To = append(msg.To, c)
		case RoleCC:
			msg.CC = append(msg.CC, c)
		case RoleBCC:
			msg.BCC = append(msg.BCC, c)
		}
	}
	return rows.Err()
}

// scanMessage scans the messageColumns projection from a row.
func scanMessage(row pgx.Row) (*Message, error) {
	var (
		msg    Message
		rawID  string
		status string
	)
	if err := row.Scan(&rawID, &msg.Subject, &msg.Body, &status, &msg.TemplateClass, &msg.UniqueKey,
		&msg.SendingSchedule, &msg.CreatedAt, &msg.LastModifiedAt); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid message id %q: %w", rawID, err)
	}
	msg.ID = id
	msg.Status = Status(status)
	return &msg, nil
}

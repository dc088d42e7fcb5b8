package emailqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/emailqueue/pkg/contact"
	"github.com/dmitrymomot/emailqueue/pkg/mailer"
)

// Dispatcher is the batch processor: it selects due messages, claims them,
// sends them through the transport, and records the outcome. Multiple
// dispatcher instances may run concurrently against the same storage;
// ClaimMessage is the sole synchronization point, so no in-process locks and
// no distributed lock manager are needed.
type Dispatcher struct {
	storage   DispatchStorage
	transport mailer.Transport
	filter    *RecipientFilter
	hooks     *Hooks
	logger    *slog.Logger

	maxBatchSize       int
	maxConcurrentSends int
	fallbackAddress    string
}

// DispatcherOption is a functional option for configuring a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherHooks attaches a hook registry to the dispatcher.
func WithDispatcherHooks(hooks *Hooks) DispatcherOption {
	return func(d *Dispatcher) {
		if hooks != nil {
			d.hooks = hooks
		}
	}
}

// WithLogger sets the structured logger used for run progress.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDispatcher creates a dispatcher from explicit configuration. Config is
// passed in rather than read from ambient state so tests can inject
// deterministic settings.
func NewDispatcher(storage DispatchStorage, transport mailer.Transport, cfg Config, opts ...DispatcherOption) (*Dispatcher, error) {
	if storage == nil {
		return nil, ErrStorageNil
	}
	if transport == nil {
		return nil, ErrTransportNil
	}

	d := &Dispatcher{
		storage:            storage,
		transport:          transport,
		filter:             NewRecipientFilter(cfg),
		logger:             slog.Default(),
		maxBatchSize:       cfg.MaxBatchSize,
		maxConcurrentSends: cfg.MaxConcurrentSends,
		fallbackAddress:    cfg.OverrideAddress,
	}
	if d.maxBatchSize <= 0 {
		d.maxBatchSize = 50
	}
	if d.maxConcurrentSends <= 0 {
		d.maxConcurrentSends = 1
	}

	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Outcome records the result of one message's send attempt within a run.
type Outcome struct {
	MessageID uuid.UUID
	Status    Status
	Err       error
}

// RunReport summarizes a dispatcher run. Individual send failures are
// expected operational events and appear here; they do not fail the run.
type RunReport struct {
	Selected       int
	Claimed        int
	ClaimLost      int
	Sent           int
	Failed         int
	ScheduledLater int
	Outcomes       []Outcome
}

// Run executes one dispatch cycle: select → claim-all → send-each → report.
// It returns an error only for run-level faults (storage unreachable before
// any claim); per-message failures are isolated and recorded in the report.
func (d *Dispatcher) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{}

	due, err := d.storage.FindDue(ctx, d.maxBatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to select due messages: %w", err)
	}
	report.Selected = len(due)

	if len(due) == 0 {
		if count, countErr := d.storage.CountScheduled(ctx); countErr == nil {
			report.ScheduledLater = count
		}
		d.logger.Info("nothing to do, the list of sendable messages is empty",
			slog.Int("scheduled_later", report.ScheduledLater))
		return report, nil
	}

	// Claim stage. Messages whose claim is lost to a concurrent run are
	// dropped from this run's working set, not retried.
	claimed := make([]Message, 0, len(due))
	for _, msg := range due {
		if err := d.storage.ClaimMessage(ctx, msg.ID); err != nil {
			if errors.Is(err, ErrAlreadyClaimed) {
				report.ClaimLost++
				d.logger.Debug("claim lost to concurrent run", slog.String("message_id", msg.ID.String()))
				continue
			}
			d.logger.Error("failed to claim message",
				slog.String("message_id", msg.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		msg.Status = StatusInProgress
		claimed = append(claimed, msg)
	}
	report.Claimed = len(claimed)

	d.logger.Info("claimed due messages",
		slog.Int("selected", report.Selected),
		slog.Int("claimed", report.Claimed),
		slog.Int("claim_lost", report.ClaimLost))

	// Send stage. Each claimed message is owned exclusively by this run, so
	// sends are independent and may proceed concurrently, bounded by a
	// semaphore.
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, d.maxConcurrentSends)
	)
	for i := range claimed {
		msg := claimed[i]
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			outcome := d.process(ctx, &msg)

			mu.Lock()
			report.Outcomes = append(report.Outcomes, outcome)
			if outcome.Status == StatusSent {
				report.Sent++
			} else {
				report.Failed++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	d.logger.Info("dispatch run completed",
		slog.Int("sent", report.Sent),
		slog.Int("failed", report.Failed))

	return report, nil
}

// process sends a single claimed message and writes its terminal status.
func (d *Dispatcher) process(ctx context.Context, msg *Message) Outcome {
	sendErr := d.send(ctx, msg)

	status := StatusSent
	if sendErr != nil {
		status = StatusFailed
		d.logger.Error("message send failed",
			slog.String("message_id", msg.ID.String()),
			slog.String("template_class", msg.TemplateClass),
			slog.String("error", sendErr.Error()))
		if err := d.storage.MarkFailed(ctx, msg.ID); err != nil {
			d.logger.Error("failed to mark message failed",
				slog.String("message_id", msg.ID.String()),
				slog.String("error", err.Error()))
		}
	} else {
		d.logger.Info("message sent",
			slog.String("message_id", msg.ID.String()),
			slog.String("template_class", msg.TemplateClass))
		if err := d.storage.MarkSent(ctx, msg.ID); err != nil {
			d.logger.Error("failed to mark message sent",
				slog.String("message_id", msg.ID.String()),
				slog.String("error", err.Error()))
		}
	}

	msg.Status = status
	d.hooks.fireAfterSend(ctx, msg, sendErr)

	return Outcome{MessageID: msg.ID, Status: status, Err: sendErr}
}

// send performs the transport call for one message. A transport panic is
// treated identically to a returned error: the message fails, the batch
// continues.
func (d *Dispatcher) send(ctx context.Context, msg *Message) (retErr error) {
	defer func() {
		if r := recover(); r != nil {
			retErr = fmt.Errorf("panic during send: %v", r)
		}
	}()

	to := msg.To
	if len(to) == 0 {
		// Fallback resolution happens here, at the transport boundary, so
		// the stored message keeps its original (empty) recipient list.
		if d.fallbackAddress == "" {
			return ErrMissingRecipient
		}
		to = []contact.Contact{{Address: d.fallbackAddress}}
	}

	filteredTo, filteredCC, filteredBCC, err := d.filter.Apply(to, msg.CC, msg.BCC)
	if err != nil {
		return err
	}

	email := mailer.Email{
		To:      filteredTo,
		CC:      filteredCC,
		BCC:     filteredBCC,
		Subject: msg.Subject,
		Body:    msg.Body,
		Tag:     msg.TemplateClass,
	}
	if len(msg.From) > 0 {
		email.From = msg.From[0]
	}

	if d.hooks.fireBeforeSend(ctx, msg, &email) == Cancel {
		return ErrSendCanceled
	}

	if err := d.transport.Send(ctx, email); err != nil {
		return err
	}
	return nil
}

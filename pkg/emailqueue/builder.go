package emailqueue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/emailqueue/pkg/contact"
)

// Builder assembles messages from templates and persists them as queued.
type Builder struct {
	storage EnqueueStorage
	hooks   *Hooks
}

// BuilderOption is a functional option for configuring a Builder.
type BuilderOption func(*Builder)

// WithBuilderHooks attaches a hook registry to the builder.
func WithBuilderHooks(hooks *Hooks) BuilderOption {
	return func(b *Builder) {
		if hooks != nil {
			b.hooks = hooks
		}
	}
}

// NewBuilder creates a new message Builder.
func NewBuilder(storage EnqueueStorage, opts ...BuilderOption) (*Builder, error) {
	if storage == nil {
		return nil, ErrStorageNil
	}

	b := &Builder{storage: storage}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// EnqueueOption is a functional option for a single Enqueue call.
type EnqueueOption func(*enqueueOptions)

type enqueueOptions struct {
	sendAt    *time.Time
	delay     time.Duration
	recipient contact.Recipient
	uniqueKey string
}

// WithSendAt schedules the message for a specific time. Before that time the
// message is queued but not due.
func WithSendAt(sendAt time.Time) EnqueueOption {
	return func(o *enqueueOptions) {
		o.sendAt = &sendAt
	}
}

// WithDelay schedules the message relative to now.
func WithDelay(delay time.Duration) EnqueueOption {
	return func(o *enqueueOptions) {
		if delay > 0 {
			o.delay = delay
		}
	}
}

// WithRecipient supplies the recipient member the message is addressed to
// when the template itself declares no "to" recipients.
func WithRecipient(recipient contact.Recipient) EnqueueOption {
	return func(o *enqueueOptions) {
		o.recipient = recipient
	}
}

// WithUniqueKey overrides the template-declared de-duplication key.
func WithUniqueKey(key string) EnqueueOption {
	return func(o *enqueueOptions) {
		if key != "" {
			o.uniqueKey = key
		}
	}
}

// Enqueue builds a message from the template and persists it with status
// queued. Pre-enqueue hooks may veto (nothing is persisted,
// ErrEnqueueCanceled); post-enqueue hooks always fire, even when persistence
// fails, so observers see every attempt.
func (b *Builder) Enqueue(ctx context.Context, tpl Template, opts ...EnqueueOption) (msg *Message, err error) {
	if tpl == nil {
		return nil, ErrTemplateNil
	}

	defer func() {
		b.hooks.fireAfterEnqueue(ctx, msg, err)
	}()

	if b.hooks.fireBeforeEnqueue(ctx, tpl) == Cancel {
		return nil, ErrEnqueueCanceled
	}

	options := &enqueueOptions{}
	for _, opt := range opts {
		opt(options)
	}

	built, buildErr := b.buildMessage(tpl, options)
	if buildErr != nil {
		return nil, buildErr
	}

	if createErr := b.storage.CreateMessage(ctx, built); createErr != nil {
		return nil, fmt.Errorf("failed to create message for template %q: %w", built.TemplateClass, createErr)
	}

	return built, nil
}

// EnqueueOnce enqueues only if no message with the same (templateClass,
// uniqueKey) exists yet; otherwise the existing message is returned with
// created=false. The lookup is advisory, not transactional: two concurrent
// callers may both pass the check and insert twice.
func (b *Builder) EnqueueOnce(ctx context.Context, tpl Template, opts ...EnqueueOption) (msg *Message, created bool, err error) {
	if tpl == nil {
		return nil, false, ErrTemplateNil
	}

	options := &enqueueOptions{}
	for _, opt := range opts {
		opt(options)
	}

	key := options.uniqueKey
	if key == "" {
		key = templateUniqueKey(tpl)
	}
	if key == "" {
		msg, err = b.Enqueue(ctx, tpl, opts...)
		return msg, err == nil, err
	}

	existing, findErr := b.storage.FindByUniqueKey(ctx, qualifiedStructName(tpl), key)
	if findErr == nil {
		return existing, false, nil
	}
	if !IsNotFound(findErr) {
		return nil, false, findErr
	}

	msg, err = b.Enqueue(ctx, tpl, opts...)
	return msg, err == nil, err
}

func (b *Builder) buildMessage(tpl Template, options *enqueueOptions) (*Message, error) {
	from, err := resolveOptional(tpl.From())
	if err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	to, err := resolveOptional(tpl.To())
	if err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	cc, err := resolveOptional(tpl.CC())
	if err != nil {
		return nil, fmt.Errorf("cc: %w", err)
	}
	bcc, err := resolveOptional(tpl.BCC())
	if err != nil {
		return nil, fmt.Errorf("bcc: %w", err)
	}

	// The template may omit "to" entirely; then the recipient member the
	// message was built for becomes the recipient.
	if len(to) == 0 && options.recipient != nil {
		to, err = contact.Resolve(options.recipient)
		if err != nil {
			return nil, fmt.Errorf("recipient: %w", err)
		}
	}

	// A message without a final "to" may still be queued when the template
	// allows it; the dispatcher substitutes the configured fallback address
	// at the transport boundary.
	if len(to) == 0 && !allowsMissingRecipient(tpl) {
		return nil, ErrMissingRecipient
	}

	uniqueKey := options.uniqueKey
	if uniqueKey == "" {
		uniqueKey = templateUniqueKey(tpl)
	}

	now := time.Now()
	schedule := now
	if options.sendAt != nil {
		schedule = *options.sendAt
	} else if options.delay > 0 {
		schedule = now.Add(options.delay)
	}

	return &Message{
		ID:              uuid.New(),
		From:            from,
		To:              to,
		CC:              cc,
		BCC:             bcc,
		Subject:         tpl.Subject(),
		Body:            tpl.Body(),
		Status:          StatusQueued,
		TemplateClass:   qualifiedStructName(tpl),
		UniqueKey:       uniqueKey,
		SendingSchedule: schedule,
		CreatedAt:       now,
		LastModifiedAt:  now,
	}, nil
}

// resolveOptional treats a nil recipient as an empty list; headers other
// than "to" are genuinely optional.
func resolveOptional(input contact.Recipient) ([]contact.Contact, error) {
	if input == nil {
		return nil, nil
	}
	return contact.Resolve(input)
}

func templateUniqueKey(tpl Template) string {
	if keyer, ok := tpl.(UniqueKeyer); ok {
		return keyer.UniqueKey()
	}
	return ""
}

func allowsMissingRecipient(tpl Template) bool {
	if fb, ok := tpl.(Fallbacker); ok {
		return fb.AllowMissingRecipient()
	}
	return false
}

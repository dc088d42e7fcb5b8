package emailqueue

import (
	"context"

	"github.com/dmitrymomot/emailqueue/pkg/mailer"
)

// Decision is the typed result of a pre-hook: Proceed lets the lifecycle
// event continue, Cancel vetoes it.
type Decision int

const (
	Proceed Decision = iota
	Cancel
)

type (
	// BeforeEnqueueHook runs before a message is built and persisted.
	// Returning Cancel vetoes queuing; nothing is persisted.
	BeforeEnqueueHook func(ctx context.Context, tpl Template) Decision

	// AfterEnqueueHook runs after the enqueue attempt, whether it succeeded,
	// failed, or was vetoed. msg is nil unless a message was persisted.
	AfterEnqueueHook func(ctx context.Context, msg *Message, err error)

	// BeforeSendHook runs after a message is claimed, immediately before the
	// transport call. Returning Cancel vetoes the send and the message is
	// marked failed.
	BeforeSendHook func(ctx context.Context, msg *Message, email *mailer.Email) Decision

	// AfterSendHook runs after the send attempt with its outcome.
	AfterSendHook func(ctx context.Context, msg *Message, sendErr error)
)

// Hooks is an ordered registry of lifecycle callbacks. Hooks are invoked
// synchronously in registration order. Registration is not safe for
// concurrent use; register everything before handing Hooks to a Builder or
// Dispatcher.
type Hooks struct {
	beforeEnqueue []BeforeEnqueueHook
	afterEnqueue  []AfterEnqueueHook
	beforeSend    []BeforeSendHook
	afterSend     []AfterSendHook
}

// NewHooks creates an empty hook registry.
func NewHooks() *Hooks {
	return &Hooks{}
}

// OnBeforeEnqueue appends a pre-enqueue hook.
func (h *Hooks) OnBeforeEnqueue(fn BeforeEnqueueHook) *Hooks {
	if fn != nil {
		h.beforeEnqueue = append(h.beforeEnqueue, fn)
	}
	return h
}

// OnAfterEnqueue appends a post-enqueue hook.
func (h *Hooks) OnAfterEnqueue(fn AfterEnqueueHook) *Hooks {
	if fn != nil {
		h.afterEnqueue = append(h.afterEnqueue, fn)
	}
	return h
}

// OnBeforeSend appends a pre-send hook.
func (h *Hooks) OnBeforeSend(fn BeforeSendHook) *Hooks {
	if fn != nil {
		h.beforeSend = append(h.beforeSend, fn)
	}
	return h
}

// OnAfterSend appends a post-send hook.
func (h *Hooks) OnAfterSend(fn AfterSendHook) *Hooks {
	if fn != nil {
		h.afterSend = append(h.afterSend, fn)
	}
	return h
}

// fireBeforeEnqueue returns Cancel as soon as any hook vetoes.
func (h *Hooks) fireBeforeEnqueue(ctx context.Context, tpl Template) Decision {
	if h == nil {
		return Proceed
	}
	for _, fn := range h.beforeEnqueue {
		if fn(ctx, tpl) == Cancel {
			return Cancel
		}
	}
	return Proceed
}

func (h *Hooks) fireAfterEnqueue(ctx context.Context, msg *Message, err error) {
	if h == nil {
		return
	}
	for _, fn := range h.afterEnqueue {
		fn(ctx, msg, err)
	}
}

func (h *Hooks) fireBeforeSend(ctx context.Context, msg *Message, email *mailer.Email) Decision {
	if h == nil {
		return Proceed
	}
	for _, fn := range h.beforeSend {
		if fn(ctx, msg, email) == Cancel {
			return Cancel
		}
	}
	return Proceed
}

func (h *Hooks) fireAfterSend(ctx context.Context, msg *Message, sendErr error) {
	if h == nil {
		return
	}
	for _, fn := range h.afterSend {
		fn(ctx, msg, sendErr)
	}
}

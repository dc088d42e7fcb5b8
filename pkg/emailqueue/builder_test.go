package emailqueue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/emailqueue/pkg/contact"
	"github.com/dmitrymomot/emailqueue/pkg/emailqueue"
)

// welcomeTemplate is a minimal template with explicit recipients.
type welcomeTemplate struct {
	to        contact.Recipient
	uniqueKey string
}

func (tpl *welcomeTemplate) From() contact.Recipient { return contact.Address("noreply@example.com") }
func (tpl *welcomeTemplate) To() contact.Recipient   { return tpl.to }
func (tpl *welcomeTemplate) CC() contact.Recipient   { return nil }
func (tpl *welcomeTemplate) BCC() contact.Recipient  { return nil }
func (tpl *welcomeTemplate) Subject() string         { return "Welcome aboard" }
func (tpl *welcomeTemplate) Body() string            { return "<p>Welcome!</p>" }
func (tpl *welcomeTemplate) UniqueKey() string       { return tpl.uniqueKey }

// digestTemplate declares no recipients of its own; the member it is built
// for supplies them, or the send-time fallback applies.
type digestTemplate struct {
	allowMissing bool
}

func (tpl *digestTemplate) From() contact.Recipient     { return contact.Address("digest@example.com") }
func (tpl *digestTemplate) To() contact.Recipient       { return nil }
func (tpl *digestTemplate) CC() contact.Recipient       { return nil }
func (tpl *digestTemplate) BCC() contact.Recipient      { return nil }
func (tpl *digestTemplate) Subject() string             { return "Weekly digest" }
func (tpl *digestTemplate) Body() string                { return "<p>News</p>" }
func (tpl *digestTemplate) AllowMissingRecipient() bool { return tpl.allowMissing }

func TestNewBuilder(t *testing.T) {
	t.Parallel()

	_, err := emailqueue.NewBuilder(nil)
	assert.ErrorIs(t, err, emailqueue.ErrStorageNil)

	b, err := emailqueue.NewBuilder(emailqueue.NewMemoryStorage())
	require.NoError(t, err)
	assert.NotNil(t, b)
}

func TestBuilderEnqueue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("persists a queued message", func(t *testing.T) {
		t.Parallel()

		store := emailqueue.NewMemoryStorage()
		b, err := emailqueue.NewBuilder(store)
		require.NoError(t, err)

		msg, err := b.Enqueue(ctx, &welcomeTemplate{to: contact.Address("member@example.com")})
		require.NoError(t, err)
		assert.Equal(t, emailqueue.StatusQueued, msg.Status)
		assert.Equal(t, "Welcome aboard", msg.Subject)
		assert.Equal(t, "emailqueue_test.welcomeTemplate", msg.TemplateClass)
		require.Len(t, msg.To, 1)
		assert.Equal(t, "member@example.com", msg.To[0].Address)
		require.Len(t, msg.From, 1)
		assert.Equal(t, "noreply@example.com", msg.From[0].Address)

		queued, err := store.FindByStatus(ctx, emailqueue.StatusQueued, 0)
		require.NoError(t, err)
		assert.Len(t, queued, 1)
	})

	t.Run("nil template", func(t *testing.T) {
		t.Parallel()

		b, err := emailqueue.NewBuilder(emailqueue.NewMemoryStorage())
		require.NoError(t, err)

		_, err = b.Enqueue(ctx, nil)
		assert.ErrorIs(t, err, emailqueue.ErrTemplateNil)
	})

	t.Run("send at sets the schedule", func(t *testing.T) {
		t.Parallel()

		b, err := emailqueue.NewBuilder(emailqueue.NewMemoryStorage())
		require.NoError(t, err)

		sendAt := time.Now().Add(2 * time.Hour)
		msg, err := b.Enqueue(ctx, &welcomeTemplate{to: contact.Address("member@example.com")},
			emailqueue.WithSendAt(sendAt))
		require.NoError(t, err)
		assert.WithinDuration(t, sendAt, msg.SendingSchedule, time.Second)
		assert.False(t, msg.Due(time.Now()))
	})

	t.Run("delay sets a relative schedule", func(t *testing.T) {
		t.Parallel()

		b, err := emailqueue.NewBuilder(emailqueue.NewMemoryStorage())
		require.NoError(t, err)

		msg, err := b.Enqueue(ctx, &welcomeTemplate{to: contact.Address("member@example.com")},
			emailqueue.WithDelay(30*time.Minute))
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(30*time.Minute), msg.SendingSchedule, time.Second)
	})

	t.Run("recipient option fills an empty to list", func(t *testing.T) {
		t.Parallel()

		b, err := emailqueue.NewBuilder(emailqueue.NewMemoryStorage())
		require.NoError(t, err)

		msg, err := b.Enqueue(ctx, &digestTemplate{},
			emailqueue.WithRecipient(contact.AddressNameMap{"member@example.com": "Member"}))
		require.NoError(t, err)
		require.Len(t, msg.To, 1)
		assert.Equal(t, "member@example.com", msg.To[0].Address)
		assert.Equal(t, "Member", msg.To[0].DisplayName)
	})

	t.Run("missing recipient rejected unless the template allows it", func(t *testing.T) {
		t.Parallel()

		b, err := emailqueue.NewBuilder(emailqueue.NewMemoryStorage())
		require.NoError(t, err)

		_, err = b.Enqueue(ctx, &digestTemplate{})
		assert.ErrorIs(t, err, emailqueue.ErrMissingRecipient)

		msg, err := b.Enqueue(ctx, &digestTemplate{allowMissing: true})
		require.NoError(t, err)
		assert.Empty(t, msg.To)
	})

	t.Run("invalid recipient input surfaces the resolver error", func(t *testing.T) {
		t.Parallel()

		b, err := emailqueue.NewBuilder(emailqueue.NewMemoryStorage())
		require.NoError(t, err)

		_, err = b.Enqueue(ctx, &welcomeTemplate{to: contact.Address("   ")})
		assert.ErrorIs(t, err, contact.ErrEmptyAddress)
	})
}

// namedTemplate carries display names on both sides of the message.
type namedTemplate struct{}

func (namedTemplate) From() contact.Recipient {
	return contact.AddressNameMap{"a@x.com": "A"}
}
func (namedTemplate) To() contact.Recipient {
	return contact.AddressNameMap{"b@x.com": "B"}
}
func (namedTemplate) CC() contact.Recipient  { return nil }
func (namedTemplate) BCC() contact.Recipient { return nil }
func (namedTemplate) Subject() string        { return "S" }
func (namedTemplate) Body() string           { return "B" }

func TestBuilderRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := emailqueue.NewMemoryStorage()
	b, err := emailqueue.NewBuilder(store)
	require.NoError(t, err)

	built, err := b.Enqueue(ctx, namedTemplate{})
	require.NoError(t, err)

	queued, err := store.FindByStatus(ctx, emailqueue.StatusQueued, 0)
	require.NoError(t, err)
	require.Len(t, queued, 1)

	stored := queued[0]
	assert.Equal(t, built.ID, stored.ID)
	assert.Equal(t, emailqueue.StatusQueued, stored.Status)
	assert.Equal(t, "S", stored.Subject)
	assert.Equal(t, "B", stored.Body)
	assert.Equal(t, []contact.Contact{{Address: "a@x.com", DisplayName: "A"}}, stored.From)
	assert.Equal(t, []contact.Contact{{Address: "b@x.com", DisplayName: "B"}}, stored.To)
}

func TestBuilderHooks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("before-enqueue veto persists nothing", func(t *testing.T) {
		t.Parallel()

		store := emailqueue.NewMemoryStorage()
		hooks := emailqueue.NewHooks().
			OnBeforeEnqueue(func(ctx context.Context, tpl emailqueue.Template) emailqueue.Decision {
				return emailqueue.Cancel
			})

		b, err := emailqueue.NewBuilder(store, emailqueue.WithBuilderHooks(hooks))
		require.NoError(t, err)

		_, err = b.Enqueue(ctx, &welcomeTemplate{to: contact.Address("member@example.com")})
		assert.ErrorIs(t, err, emailqueue.ErrEnqueueCanceled)

		queued, err := store.FindByStatus(ctx, emailqueue.StatusQueued, 0)
		require.NoError(t, err)
		assert.Empty(t, queued)
	})

	t.Run("after-enqueue fires on success and on veto", func(t *testing.T) {
		t.Parallel()

		var calls []error
		hooks := emailqueue.NewHooks().
			OnAfterEnqueue(func(ctx context.Context, msg *emailqueue.Message, err error) {
				calls = append(calls, err)
			})

		b, err := emailqueue.NewBuilder(emailqueue.NewMemoryStorage(), emailqueue.WithBuilderHooks(hooks))
		require.NoError(t, err)

		_, err = b.Enqueue(ctx, &welcomeTemplate{to: contact.Address("member@example.com")})
		require.NoError(t, err)

		vetoing := emailqueue.NewHooks().
			OnBeforeEnqueue(func(ctx context.Context, tpl emailqueue.Template) emailqueue.Decision {
				return emailqueue.Cancel
			}).
			OnAfterEnqueue(func(ctx context.Context, msg *emailqueue.Message, err error) {
				calls = append(calls, err)
			})
		b2, err := emailqueue.NewBuilder(emailqueue.NewMemoryStorage(), emailqueue.WithBuilderHooks(vetoing))
		require.NoError(t, err)

		_, _ = b2.Enqueue(ctx, &welcomeTemplate{to: contact.Address("member@example.com")})

		require.Len(t, calls, 2)
		assert.NoError(t, calls[0])
		assert.ErrorIs(t, calls[1], emailqueue.ErrEnqueueCanceled)
	})

	t.Run("hooks run in registration order until a veto", func(t *testing.T) {
		t.Parallel()

		var order []string
		hooks := emailqueue.NewHooks().
			OnBeforeEnqueue(func(ctx context.Context, tpl emailqueue.Template) emailqueue.Decision {
				order = append(order, "first")
				return emailqueue.Proceed
			}).
			OnBeforeEnqueue(func(ctx context.Context, tpl emailqueue.Template) emailqueue.Decision {
				order = append(order, "second")
				return emailqueue.Cancel
			}).
			OnBeforeEnqueue(func(ctx context.Context, tpl emailqueue.Template) emailqueue.Decision {
				order = append(order, "third")
				return emailqueue.Proceed
			})

		b, err := emailqueue.NewBuilder(emailqueue.NewMemoryStorage(), emailqueue.WithBuilderHooks(hooks))
		require.NoError(t, err)

		_, err = b.Enqueue(ctx, &welcomeTemplate{to: contact.Address("member@example.com")})
		assert.ErrorIs(t, err, emailqueue.ErrEnqueueCanceled)
		assert.Equal(t, []string{"first", "second"}, order)
	})
}

func TestBuilderEnqueueOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("second enqueue with same key returns the existing message", func(t *testing.T) {
		t.Parallel()

		b, err := emailqueue.NewBuilder(emailqueue.NewMemoryStorage())
		require.NoError(t, err)

		first, created, err := b.EnqueueOnce(ctx, &welcomeTemplate{
			to:        contact.Address("member@example.com"),
			uniqueKey: "welcome:42",
		})
		require.NoError(t, err)
		assert.True(t, created)

		second, created, err := b.EnqueueOnce(ctx, &welcomeTemplate{
			to:        contact.Address("member@example.com"),
			uniqueKey: "welcome:42",
		})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("different keys enqueue independently", func(t *testing.T) {
		t.Parallel()

		b, err := emailqueue.NewBuilder(emailqueue.NewMemoryStorage())
		require.NoError(t, err)

		first, created, err := b.EnqueueOnce(ctx, &welcomeTemplate{
			to:        contact.Address("member@example.com"),
			uniqueKey: "welcome:1",
		})
		require.NoError(t, err)
		assert.True(t, created)

		second, created, err := b.EnqueueOnce(ctx, &welcomeTemplate{
			to:        contact.Address("member@example.com"),
			uniqueKey: "welcome:2",
		})
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("no key degrades to plain enqueue", func(t *testing.T) {
		t.Parallel()

		b, err := emailqueue.NewBuilder(emailqueue.NewMemoryStorage())
		require.NoError(t, err)

		first, created, err := b.EnqueueOnce(ctx, &welcomeTemplate{to: contact.Address("member@example.com")})
		require.NoError(t, err)
		assert.True(t, created)

		second, created, err := b.EnqueueOnce(ctx, &welcomeTemplate{to: contact.Address("member@example.com")})
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("key option overrides the template key", func(t *testing.T) {
		t.Parallel()

		b, err := emailqueue.NewBuilder(emailqueue.NewMemoryStorage())
		require.NoError(t, err)

		msg, created, err := b.EnqueueOnce(ctx, &welcomeTemplate{
			to:        contact.Address("member@example.com"),
			uniqueKey: "welcome:template",
		}, emailqueue.WithUniqueKey("welcome:override"))
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "welcome:override", msg.UniqueKey)

		_, created, err = b.EnqueueOnce(ctx, &welcomeTemplate{
			to: contact.Address("member@example.com"),
		}, emailqueue.WithUniqueKey("welcome:override"))
		require.NoError(t, err)
		assert.False(t, created)
	})
}

func TestBuilderEnqueueStorageFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := emailqueue.NewMemoryStorage()
	b, err := emailqueue.NewBuilder(store)
	require.NoError(t, err)

	msg, err := b.Enqueue(ctx, &welcomeTemplate{to: contact.Address("member@example.com")})
	require.NoError(t, err)

	// Re-inserting the same id surfaces the wrapped storage error.
	err = store.CreateMessage(ctx, msg)
	assert.True(t, errors.Is(err, emailqueue.ErrMessageExists))
}

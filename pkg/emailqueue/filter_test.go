package emailqueue_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/emailqueue/pkg/contact"
	"github.com/dmitrymomot/emailqueue/pkg/emailqueue"
)

func TestRecipientFilterActive(t *testing.T) {
	t.Parallel()

	assert.False(t, emailqueue.NewRecipientFilter(emailqueue.Config{Environment: "production"}).Active())
	assert.False(t, emailqueue.NewRecipientFilter(emailqueue.Config{Environment: "prod"}).Active())
	assert.True(t, emailqueue.NewRecipientFilter(emailqueue.Config{Environment: "development"}).Active())
	assert.True(t, emailqueue.NewRecipientFilter(emailqueue.Config{Environment: "staging"}).Active())
	assert.True(t, emailqueue.NewRecipientFilter(emailqueue.Config{Environment: ""}).Active())
}

func TestRecipientFilterApply(t *testing.T) {
	t.Parallel()

	to := []contact.Contact{
		{Address: "customer@example.com", DisplayName: "Customer"},
		{Address: "QA@example.com", DisplayName: "QA"},
	}
	cc := []contact.Contact{{Address: "manager@example.com"}}
	bcc := []contact.Contact{{Address: "audit@example.com"}}

	t.Run("production passes everything through", func(t *testing.T) {
		t.Parallel()

		filter := emailqueue.NewRecipientFilter(emailqueue.Config{Environment: "production"})

		gotTo, gotCC, gotBCC, err := filter.Apply(to, cc, bcc)
		require.NoError(t, err)
		assert.Equal(t, to, gotTo)
		assert.Equal(t, cc, gotCC)
		assert.Equal(t, bcc, gotBCC)
	})

	t.Run("whitelist matched case-insensitively per recipient", func(t *testing.T) {
		t.Parallel()

		filter := emailqueue.NewRecipientFilter(emailqueue.Config{
			Environment:            "development",
			TestRecipientWhitelist: "qa@example.com\naudit@example.com",
		})

		gotTo, gotCC, gotBCC, err := filter.Apply(to, cc, bcc)
		require.NoError(t, err)
		require.Len(t, gotTo, 1)
		assert.Equal(t, "QA@example.com", gotTo[0].Address)
		assert.Empty(t, gotCC)
		require.Len(t, gotBCC, 1)
		assert.Equal(t, "audit@example.com", gotBCC[0].Address)
	})

	t.Run("emptied to list gets the override address", func(t *testing.T) {
		t.Parallel()

		filter := emailqueue.NewRecipientFilter(emailqueue.Config{
			Environment:     "staging",
			OverrideAddress: "inbox@example.com",
		})

		gotTo, gotCC, gotBCC, err := filter.Apply(to, cc, bcc)
		require.NoError(t, err)
		require.Len(t, gotTo, 1)
		assert.Equal(t, "inbox@example.com", gotTo[0].Address)
		assert.Empty(t, gotCC)
		assert.Empty(t, gotBCC)
	})

	t.Run("emptied to list without override fails", func(t *testing.T) {
		t.Parallel()

		filter := emailqueue.NewRecipientFilter(emailqueue.Config{Environment: "development"})

		_, _, _, err := filter.Apply(to, nil, nil)
		assert.ErrorIs(t, err, emailqueue.ErrNoOverrideAddress)
	})

	t.Run("whitelist ignores blank lines and surrounding whitespace", func(t *testing.T) {
		t.Parallel()

		filter := emailqueue.NewRecipientFilter(emailqueue.Config{
			Environment:            "development",
			TestRecipientWhitelist: "\n  Customer@Example.com  \n\n",
		})

		gotTo, _, _, err := filter.Apply(to, nil, nil)
		require.NoError(t, err)
		require.Len(t, gotTo, 1)
		assert.Equal(t, "customer@example.com", gotTo[0].Address)
	})

	t.Run("cc and bcc never fall back to the override", func(t *testing.T) {
		t.Parallel()

		filter := emailqueue.NewRecipientFilter(emailqueue.Config{
			Environment:            "development",
			TestRecipientWhitelist: "customer@example.com",
			OverrideAddress:        "inbox@example.com",
		})

		gotTo, gotCC, gotBCC, err := filter.Apply(to, cc, bcc)
		require.NoError(t, err)
		require.Len(t, gotTo, 1)
		assert.Equal(t, "customer@example.com", gotTo[0].Address)
		assert.Empty(t, gotCC)
		assert.Empty(t, gotBCC)
	})
}

package contact_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/emailqueue/pkg/contact"
)

type memberStub struct {
	email string
	name  string
}

func (m memberStub) EmailAddresses() map[string]string {
	return map[string]string{m.email: m.name}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	t.Run("single address string", func(t *testing.T) {
		t.Parallel()

		contacts, err := contact.Resolve(contact.Address("  alice@example.com "))
		require.NoError(t, err)
		assert.Equal(t, []contact.Contact{{Address: "alice@example.com"}}, contacts)
	})

	t.Run("empty address string", func(t *testing.T) {
		t.Parallel()

		contacts, err := contact.Resolve(contact.Address("   "))
		assert.ErrorIs(t, err, contact.ErrEmptyAddress)
		assert.Nil(t, contacts)
	})

	t.Run("address list preserves order", func(t *testing.T) {
		t.Parallel()

		contacts, err := contact.Resolve(contact.AddressList{"b@example.com", " a@example.com", "", "c@example.com"})
		require.NoError(t, err)
		assert.Equal(t, []contact.Contact{
			{Address: "b@example.com"},
			{Address: "a@example.com"},
			{Address: "c@example.com"},
		}, contacts)
	})

	t.Run("address name map sorted by address", func(t *testing.T) {
		t.Parallel()

		contacts, err := contact.Resolve(contact.AddressNameMap{
			"bob@example.com":   "Bob",
			"alice@example.com": " Alice ",
		})
		require.NoError(t, err)
		assert.Equal(t, []contact.Contact{
			{Address: "alice@example.com", DisplayName: "Alice"},
			{Address: "bob@example.com", DisplayName: "Bob"},
		}, contacts)
	})

	t.Run("address provider", func(t *testing.T) {
		t.Parallel()

		contacts, err := contact.Resolve(contact.Provider(memberStub{email: "alice@example.com", name: "Alice"}))
		require.NoError(t, err)
		assert.Equal(t, []contact.Contact{{Address: "alice@example.com", DisplayName: "Alice"}}, contacts)
	})

	t.Run("nil provider", func(t *testing.T) {
		t.Parallel()

		contacts, err := contact.Resolve(contact.Provider(nil))
		assert.ErrorIs(t, err, contact.ErrInvalidInputKind)
		assert.Nil(t, contacts)
	})

	t.Run("nil input", func(t *testing.T) {
		t.Parallel()

		contacts, err := contact.Resolve(nil)
		assert.ErrorIs(t, err, contact.ErrInvalidInputKind)
		assert.Nil(t, contacts)
	})
}

func TestResolveAny(t *testing.T) {
	t.Parallel()

	t.Run("plain string", func(t *testing.T) {
		t.Parallel()

		contacts, err := contact.ResolveAny("alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, []contact.Contact{{Address: "alice@example.com"}}, contacts)
	})

	t.Run("string slice", func(t *testing.T) {
		t.Parallel()

		contacts, err := contact.ResolveAny([]string{"a@example.com", "b@example.com"})
		require.NoError(t, err)
		assert.Len(t, contacts, 2)
	})

	t.Run("string map", func(t *testing.T) {
		t.Parallel()

		contacts, err := contact.ResolveAny(map[string]string{"a@example.com": "A"})
		require.NoError(t, err)
		assert.Equal(t, []contact.Contact{{Address: "a@example.com", DisplayName: "A"}}, contacts)
	})

	t.Run("bare address provider", func(t *testing.T) {
		t.Parallel()

		contacts, err := contact.ResolveAny(memberStub{email: "m@example.com", name: "M"})
		require.NoError(t, err)
		assert.Equal(t, []contact.Contact{{Address: "m@example.com", DisplayName: "M"}}, contacts)
	})

	t.Run("unsupported shape", func(t *testing.T) {
		t.Parallel()

		contacts, err := contact.ResolveAny(42)
		assert.ErrorIs(t, err, contact.ErrInvalidInputKind)
		assert.Nil(t, contacts)
	})
}

func TestContactRFC5322(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "alice@example.com", contact.Contact{Address: "alice@example.com"}.RFC5322())
	assert.Equal(t, "Alice <alice@example.com>",
		contact.Contact{Address: "alice@example.com", DisplayName: "Alice"}.RFC5322())
}

func TestAddresses(t *testing.T) {
	t.Parallel()

	assert.Nil(t, contact.Addresses(nil))
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, contact.Addresses([]contact.Contact{
		{Address: "a@example.com"},
		{Address: "b@example.com", DisplayName: "B"},
	}))
}

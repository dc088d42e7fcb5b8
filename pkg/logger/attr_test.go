package logger_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/emailqueue/pkg/logger"
)

func TestError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Attr{}, logger.Error(nil))

	err := errors.New("send failed")
	attr := logger.Error(err)
	assert.Equal(t, "error", attr.Key)
}

func TestErrors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Attr{}, logger.Errors(nil, nil))

	attr := logger.Errors(errors.New("first"), nil, errors.New("second"))
	assert.Equal(t, "errors", attr.Key)
	assert.Len(t, attr.Value.Group(), 2)
}

func TestDomainAttrs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Attr{}, logger.MessageID(nil))
	assert.Equal(t, "message_id", logger.MessageID("abc").Key)
	assert.Equal(t, "template_class", logger.TemplateClass("WelcomeEmail").Key)
	assert.Equal(t, "recipient", logger.Recipient("a@example.com").Key)
	assert.Equal(t, int64(3), logger.BatchSize(3).Value.Int64())
}

package notify

import (
	"bytes"
	"context"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })
	return &buf
}

func TestLogSender_Send(t *testing.T) {
	buf := captureLog(t)
	s := NewLogSender("no-reply@bookshelf.local")

	err := s.Send(context.Background(), WelcomeMessage("Bookshelf", "ada", "ada@example.com"))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "to=ada@example.com")
	assert.Contains(t, out, "from=no-reply@bookshelf.local")
	assert.Contains(t, out, `subject="Welcome to Bookshelf"`)
}

func TestLogSender_Send_Errors(t *testing.T) {
	captureLog(t)
	s := NewLogSender("x@y")

	err := s.Send(context.Background(), Message{Subject: "no one"})
	assert.ErrorIs(t, err, ErrNoRecipient)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = s.Send(ctx, Message{To: "a@b"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWelcomeMessage(t *testing.T) {
	msg := WelcomeMessage("", "grace", "grace@example.com")

	assert.Equal(t, "grace@example.com", msg.To)
	assert.Equal(t, "Welcome to Bookshelf", msg.Subject)
	assert.Contains(t, msg.Body, "Hi grace")
}

// Package notify delivers user-facing notifications such as the welcome
// email. The only built-in Sender writes messages to the log; a real mail
// transport can be plugged in by implementing Sender.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

var ErrNoRecipient = errors.New("message has no recipient")

// Message is a single outbound notification.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender records messages in the application log instead of delivering
// them.
type LogSender struct {
	From string
}

func NewLogSender(from string) *LogSender {
	return &LogSender{From: from}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}
	if msg.From == "" {
		msg.From = s.From
	}
	log.Printf("[NOTIFY] from=%s to=%s subject=%q (%d bytes)", msg.From, msg.To, msg.Subject, len(msg.Body))
	return nil
}

// WelcomeMessage builds the greeting sent after registration.
func WelcomeMessage(projectName, username, email string) Message {
	if projectName == "" {
		projectName = "Bookshelf"
	}
	return Message{
		To:      email,
		Subject: fmt.Sprintf("Welcome to %s", projectName),
		Body: fmt.Sprintf("Hi %s,\n\nYour %s account is ready. Start by rating the books you have read.\n",
			username, projectName),
	}
}

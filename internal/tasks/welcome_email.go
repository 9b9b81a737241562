package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/librarium/bookshelf/internal/notify"
)

// SendWelcomeEmailTask greets a newly registered user.
type SendWelcomeEmailTask struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Config returns the queue configuration for welcome emails.
func (t SendWelcomeEmailTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "send_welcome_email",
		MaxAttempts: 5,
		Backoff:     time.Minute,
		Timeout:     30 * time.Second,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SendWelcomeEmailProcessor delivers the welcome message through sender.
func SendWelcomeEmailProcessor(sender notify.Sender, projectName string) backlite.QueueProcessor[SendWelcomeEmailTask] {
	return func(ctx context.Context, task SendWelcomeEmailTask) error {
		if sender == nil {
			return fmt.Errorf("notification sender not configured")
		}
		msg := notify.WelcomeMessage(projectName, task.Username, task.Email)
		if err := sender.Send(ctx, msg); err != nil {
			return fmt.Errorf("send welcome email to user %d: %w", task.UserID, err)
		}
		log.Printf("[TASK] Sent welcome email to user %d", task.UserID)
		return nil
	}
}

// NewSendWelcomeEmailQueue creates a backlite queue for welcome emails.
func NewSendWelcomeEmailQueue(sender notify.Sender, projectName string) backlite.Queue {
	return backlite.NewQueue(SendWelcomeEmailProcessor(sender, projectName))
}

package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarium/bookshelf/internal/config"
	"github.com/librarium/bookshelf/internal/entities"
	"github.com/librarium/bookshelf/internal/notify"
)

func newTestClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func startClient(t *testing.T, client *Client) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go client.Start(ctx)
	t.Cleanup(func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer stopCancel()
		client.Stop(stopCtx)
		cancel()
	})
}

func TestNewClient(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	require.NotNil(t, client)

	_, err = os.Stat(filepath.Join(tmpDir, "test-tasks.db"))
	assert.NoError(t, err, "tasks database should be created")

	assert.NoError(t, client.Close())
}

func TestDBPathFor(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "bookshelf-tasks.db"), DBPathFor("data/bookshelf.db"))
	assert.Equal(t, "catalogue-tasks.db", DBPathFor("catalogue"))
}

func TestClientStartStop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 1
	client := newTestClient(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.Start(ctx)
	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()

	assert.True(t, client.Stop(stopCtx), "stop should succeed gracefully")
}

func TestClientStop_NotStarted(t *testing.T) {
	client := newTestClient(t, DefaultConfig())
	assert.True(t, client.Stop(context.Background()))
}

type recordingSender struct {
	mu   sync.Mutex
	sent chan notify.Message
	fail error
}

func (s *recordingSender) Send(_ context.Context, msg notify.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.sent <- msg
	return nil
}

func TestUserCreated_SendsWelcomeEmail(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 1
	cfg.EmailEnabled = true
	client := newTestClient(t, cfg)

	sender := &recordingSender{sent: make(chan notify.Message, 1)}
	client.Register(NewSendWelcomeEmailQueue(sender, "Bookshelf"))
	startClient(t, client)

	user := &entities.User{ID: 7, Username: "ada", Email: "ada@example.com"}
	require.NoError(t, client.UserCreated(context.Background(), user))

	select {
	case msg := <-sender.sent:
		assert.Equal(t, "ada@example.com", msg.To)
		assert.Equal(t, "Welcome to Bookshelf", msg.Subject)
	case <-time.After(5 * time.Second):
		t.Fatal("welcome email was not sent within timeout")
	}
}

func TestUserCreated_EmailDisabled(t *testing.T) {
	client := newTestClient(t, DefaultConfig())

	err := client.UserCreated(context.Background(), &entities.User{ID: 1, Email: "a@b"})
	assert.NoError(t, err)
}

type fakeReconciler struct {
	calls chan struct{}
	err   error
}

func (f *fakeReconciler) RecomputeAll(context.Context) (int64, error) {
	f.calls <- struct{}{}
	return 3, f.err
}

func TestRequestRatingRecompute(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 1
	client := newTestClient(t, cfg)

	reconciler := &fakeReconciler{calls: make(chan struct{}, 1)}
	client.Register(NewRecomputeRatingsQueue(reconciler))
	startClient(t, client)

	id, err := client.RequestRatingRecompute(context.Background(), "test")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case <-reconciler.calls:
	case <-time.After(5 * time.Second):
		t.Fatal("recompute was not executed within timeout")
	}
}

func TestProcessors_PropagateErrors(t *testing.T) {
	ctx := context.Background()

	err := SendWelcomeEmailProcessor(nil, "x")(ctx, SendWelcomeEmailTask{UserID: 1})
	assert.Error(t, err)

	boom := errors.New("boom")
	err = SendWelcomeEmailProcessor(&recordingSender{fail: boom}, "x")(ctx, SendWelcomeEmailTask{UserID: 1, Email: "a@b"})
	assert.ErrorIs(t, err, boom)

	err = RecomputeRatingsProcessor(nil)(ctx, RecomputeRatingsTask{})
	assert.Error(t, err)

	r := &fakeReconciler{calls: make(chan struct{}, 1), err: boom}
	err = RecomputeRatingsProcessor(r)(ctx, RecomputeRatingsTask{Reason: "manual"})
	assert.ErrorIs(t, err, boom)
}

func TestTaskConfigs(t *testing.T) {
	welcome := SendWelcomeEmailTask{}.Config()
	assert.Equal(t, "send_welcome_email", welcome.Name)
	assert.Equal(t, 5, welcome.MaxAttempts)
	assert.NotNil(t, welcome.Retention)

	recompute := RecomputeRatingsTask{}.Config()
	assert.Equal(t, "recompute_ratings", recompute.Name)
	assert.Equal(t, 3, recompute.MaxAttempts)
	assert.Equal(t, 10*time.Minute, recompute.Timeout)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
	assert.False(t, cfg.EmailEnabled)
}

func TestConfigFrom(t *testing.T) {
	app := &config.Config{}
	app.Tasks.Workers = 4
	app.API.ProjectName = "Shelf"
	app.Email.Enabled = true

	cfg := ConfigFrom(app)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, "Shelf", cfg.ProjectName)
	assert.True(t, cfg.EmailEnabled)
}

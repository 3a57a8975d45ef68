package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gastos/internal/bot"
)

type fakeAPI struct {
	mu       sync.Mutex
	updates  chan tgbotapi.Update
	sent     []tgbotapi.MessageConfig
	sendErrs []error
	stopped  bool
	config   tgbotapi.UpdateConfig
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update, 16)}
}

func (f *fakeAPI) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	f.config = cfg
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	if len(f.sendErrs) > 0 {
		err := f.sendErrs[0]
		f.sendErrs = f.sendErrs[1:]
		return tgbotapi.Message{}, err
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) sentMessages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.MessageConfig(nil), f.sent...)
}

type echoHandler struct {
	mu   sync.Mutex
	seen []bot.Message
	wait chan struct{}
}

func (h *echoHandler) Handle(_ context.Context, msg bot.Message) (bot.Reply, bool) {
	if h.wait != nil {
		<-h.wait
	}
	h.mu.Lock()
	h.seen = append(h.seen, msg)
	h.mu.Unlock()
	if msg.Text == "/silencio" {
		return bot.Reply{}, false
	}
	return bot.Reply{ChatID: msg.ChatID, Text: "<b>" + msg.Text + "</b>"}, true
}

func textUpdate(id int, chatID int64, name, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: id,
		Message: &tgbotapi.Message{
			Chat: &tgbotapi.Chat{ID: chatID},
			From: &tgbotapi.User{FirstName: name},
			Text: text,
		},
	}
}

func TestToMessage(t *testing.T) {
	msg, ok := toMessage(textUpdate(3, 10, "Ana", "super 10"))
	require.True(t, ok)
	assert.Equal(t, bot.Message{UpdateID: 3, ChatID: 10, Sender: "Ana", Text: "super 10"}, msg)

	_, ok = toMessage(tgbotapi.Update{UpdateID: 4})
	assert.False(t, ok)

	_, ok = toMessage(tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}}})
	assert.False(t, ok, "non-text messages are skipped")

	msg, ok = toMessage(tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}, Text: "x"}})
	require.True(t, ok)
	assert.Empty(t, msg.Sender)
}

func TestRun_DispatchesAndStops(t *testing.T) {
	api := newFakeAPI()
	h := &echoHandler{}
	b := NewWithAPI(api, h, Config{PollTimeout: 5, MaxConcurrent: 2}, nil)

	api.updates <- textUpdate(1, 10, "Ana", "super 10")
	api.updates <- textUpdate(2, 11, "Luis", "/silencio")
	api.updates <- tgbotapi.Update{UpdateID: 3}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	require.Eventually(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		return len(h.seen) == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}

	assert.True(t, api.stopped)
	assert.Equal(t, 5, api.config.Timeout)
	assert.Equal(t, []string{"message"}, api.config.AllowedUpdates)
	sent := api.sentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, int64(10), sent[0].ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, sent[0].ParseMode)
	assert.Equal(t, "<b>super 10</b>", sent[0].Text)
}

func TestRun_WaitsForInFlightHandlers(t *testing.T) {
	api := newFakeAPI()
	h := &echoHandler{wait: make(chan struct{})}
	b := NewWithAPI(api, h, Config{}, nil)

	api.updates <- textUpdate(1, 10, "Ana", "super 10")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
		t.Fatal("Run returned before the handler finished")
	case <-time.After(20 * time.Millisecond):
	}
	close(h.wait)
	require.NoError(t, <-done)
	assert.Len(t, api.sentMessages(), 1)
}

func TestRun_StopsWhileAllHandlersBusy(t *testing.T) {
	api := newFakeAPI()
	h := &echoHandler{wait: make(chan struct{})}
	b := NewWithAPI(api, h, Config{MaxConcurrent: 1}, nil)

	api.updates <- textUpdate(1, 10, "Ana", "super 10")
	api.updates <- textUpdate(2, 10, "Ana", "carne 20")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	// The second update waits for the only slot.
	require.Eventually(t, func() bool { return len(api.updates) == 0 }, time.Second, 5*time.Millisecond)
	cancel()

	require.Eventually(t, func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return api.stopped
	}, time.Second, 5*time.Millisecond, "polling must stop while the handler is still busy")

	close(h.wait)
	require.NoError(t, <-done)

	h.mu.Lock()
	defer h.mu.Unlock()
	require.Len(t, h.seen, 1)
	assert.Equal(t, "super 10", h.seen[0].Text)
}

func TestRun_ClosedUpdatesChannel(t *testing.T) {
	api := newFakeAPI()
	close(api.updates)
	b := NewWithAPI(api, &echoHandler{}, Config{}, nil)
	assert.Error(t, b.Run(context.Background()))
}

func TestSend_FallsBackToPlainText(t *testing.T) {
	api := newFakeAPI()
	api.sendErrs = []error{errors.New("Bad Request: can't parse entities: unsupported start tag")}
	b := NewWithAPI(api, &echoHandler{}, Config{}, nil)

	err := b.Send(context.Background(), bot.Reply{ChatID: 5, Text: "✅ <b>Super</b> &amp; más"})
	require.NoError(t, err)

	sent := api.sentMessages()
	require.Len(t, sent, 2)
	assert.Equal(t, tgbotapi.ModeHTML, sent[0].ParseMode)
	assert.Empty(t, sent[1].ParseMode)
	assert.Equal(t, "✅ Super & más", sent[1].Text)
}

func TestSend_OtherErrorsAreReturned(t *testing.T) {
	api := newFakeAPI()
	api.sendErrs = []error{errors.New("Forbidden: bot was blocked by the user")}
	b := NewWithAPI(api, &echoHandler{}, Config{}, nil)

	err := b.Send(context.Background(), bot.Reply{ChatID: 5, Text: "hola"})
	require.Error(t, err)
	assert.Len(t, api.sentMessages(), 1)
}

func TestNew_MissingToken(t *testing.T) {
	_, err := New(Config{}, &echoHandler{}, nil)
	require.Error(t, err)
}

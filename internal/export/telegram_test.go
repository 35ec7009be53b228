package export

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CLDWare/csi-survey-backend/config"
	"github.com/CLDWare/csi-survey-backend/internal/apperrors"
)

const okMessage = `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}}}`

// fakeBotAPI answers Bot API calls with a fixed status and body and records
// the called methods.
type fakeBotAPI struct {
	mu      sync.Mutex
	status  int
	body    string
	methods []string
	forms   []string
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	payload, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.methods = append(f.methods, r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:])
	f.forms = append(f.forms, string(payload))
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.status)
	io.WriteString(w, f.body)
}

func newFakeTelegram(t *testing.T, destination string, status int, body string) (*TelegramChannel, *fakeBotAPI) {
	t.Helper()
	api := &fakeBotAPI{status: status, body: body}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	ch, err := newTelegramChannel("123:abc", destination, srv.URL+"/bot%s/%s", srv.Client())
	require.NoError(t, err)
	return ch, api
}

func TestNewTelegramChannel_Unconfigured(t *testing.T) {
	ch, err := NewTelegramChannel(&config.Config{})
	require.NoError(t, err)
	assert.False(t, ch.Configured())

	err = ch.SendMessage(context.Background(), "hello")
	assert.ErrorIs(t, err, apperrors.ErrChannelNotConfigured)
}

func TestNewTelegramChannel_InvalidChatID(t *testing.T) {
	_, err := newTelegramChannel("123:abc", "admins", "http://localhost/bot%s/%s", http.DefaultClient)
	assert.Error(t, err)
}

func TestTelegramChannel_SendMessage(t *testing.T) {
	ch, api := newFakeTelegram(t, "42", http.StatusOK, okMessage)

	require.NoError(t, ch.SendMessage(context.Background(), "hello"))
	assert.Equal(t, []string{"sendMessage"}, api.methods)
	assert.Contains(t, api.forms[0], "chat_id=42")
}

func TestTelegramChannel_ChannelUsername(t *testing.T) {
	ch, api := newFakeTelegram(t, "@survey_admins", http.StatusOK, okMessage)

	require.NoError(t, ch.SendMessage(context.Background(), "hello"))
	assert.Contains(t, api.forms[0], "chat_id=%40survey_admins")
}

func TestTelegramChannel_SendDocument(t *testing.T) {
	ch, api := newFakeTelegram(t, "42", http.StatusOK, okMessage)

	path := filepath.Join(t.TempDir(), "results.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("workbook"), 0o600))

	require.NoError(t, ch.SendDocument(context.Background(), path, "caption"))
	assert.Equal(t, []string{"sendDocument"}, api.methods)
	assert.Contains(t, api.forms[0], "results.xlsx")
	assert.Contains(t, api.forms[0], "caption")
}

func TestTelegramChannel_RateLimited(t *testing.T) {
	body := `{"ok":false,"error_code":429,"description":"Too Many Requests: retry after 17","parameters":{"retry_after":17}}`
	ch, _ := newFakeTelegram(t, "42", http.StatusTooManyRequests, body)

	err := ch.SendMessage(context.Background(), "hello")
	assert.ErrorIs(t, err, apperrors.ErrRateLimited)
	retryAfter, ok := apperrors.RetryAfter(err)
	require.True(t, ok)
	assert.Equal(t, 17*time.Second, retryAfter)
}

func TestTelegramChannel_RateLimitedWithoutHint(t *testing.T) {
	body := `{"ok":false,"error_code":429,"description":"Too Many Requests"}`
	ch, _ := newFakeTelegram(t, "42", http.StatusTooManyRequests, body)

	err := ch.SendMessage(context.Background(), "hello")
	retryAfter, ok := apperrors.RetryAfter(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.DefaultRetryAfter, retryAfter)
}

func TestTelegramChannel_OtherErrors(t *testing.T) {
	body := `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`
	ch, _ := newFakeTelegram(t, "42", http.StatusBadRequest, body)

	err := ch.SendMessage(context.Background(), "hello")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrRateLimited)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestTelegramChannel_NotifierProbe(t *testing.T) {
	ch, api := newFakeTelegram(t, "42", http.StatusOK, okMessage)
	n, _ := newTestNotifier(t, ch)

	assert.True(t, n.TestChannel(context.Background()))
	assert.Equal(t, []string{"sendMessage"}, api.methods)

	down, _ := newFakeTelegram(t, "42", http.StatusBadGateway, "<html>bad gateway</html>")
	n, _ = newTestNotifier(t, down)
	assert.False(t, n.TestChannel(context.Background()))
}

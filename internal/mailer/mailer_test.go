package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"alcyxob/liftlog/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResendSender_RequiresCredentials(t *testing.T) {
	_, err := NewResendSender(config.MailConfig{From: "liftlog <noreply@liftlog.test>"})
	assert.Error(t, err)
	_, err = NewResendSender(config.MailConfig{APIKey: "re_test"})
	assert.Error(t, err)
}

func TestResendSender_Send(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg-1"}`))
	}))
	defer server.Close()

	sender, err := NewResendSender(config.MailConfig{
		APIKey:  "re_test",
		From:    "liftlog <noreply@liftlog.test>",
		BaseURL: server.URL,
	})
	require.NoError(t, err)

	id, err := sender.Send(context.Background(), Confirmation("lifter@example.com", "https://liftlog.test/login?confirm=abc"))
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)
	assert.Equal(t, "liftlog <noreply@liftlog.test>", got["from"])
	assert.Equal(t, []any{"lifter@example.com"}, got["to"])
	assert.Equal(t, "Confirm your liftlog account", got["subject"])
	assert.Contains(t, got["text"], "https://liftlog.test/login?confirm=abc")
}

func TestResendSender_SendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"invalid from address"}`))
	}))
	defer server.Close()

	sender, err := NewResendSender(config.MailConfig{APIKey: "re_test", From: "nobody", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = sender.Send(context.Background(), Confirmation("lifter@example.com", "https://liftlog.test/login?confirm=abc"))
	assert.ErrorContains(t, err, "resend send failed")
}

func TestConfirmation_EscapesLink(t *testing.T) {
	msg := Confirmation("lifter@example.com", `https://liftlog.test/login?confirm=a&b="c"`)
	assert.Equal(t, []string{"lifter@example.com"}, msg.To)
	assert.Contains(t, msg.HTML, `href="https://liftlog.test/login?confirm=a&amp;b=&#34;c&#34;"`)
	assert.Contains(t, msg.Text, `confirm=a&b="c"`)
}

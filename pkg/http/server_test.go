package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli/v3"

	"github.com/tzrikka/gatekeep/pkg/approval"
	"github.com/tzrikka/gatekeep/pkg/slack"
)

func newTestServer() *httpServer {
	h := approval.NewHandler(&slack.FakeClient{}, approval.NewStore(), "C999", true)
	return &httpServer{port: DefaultPort, handler: h}
}

func postForm(t *testing.T, mux *http.ServeMux, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	r := httptest.NewRequestWithContext(t.Context(), http.MethodPost, path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	mux.ServeHTTP(w, r)
	return w
}

func TestHealthHandler(t *testing.T) {
	mux := newTestServer().routes()

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/", http.NoBody))

	if w.Code != http.StatusOK {
		t.Errorf("GET /: got status %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "running") {
		t.Errorf("GET /: got body %q", w.Body.String())
	}
}

func TestUnknownRoute(t *testing.T) {
	mux := newTestServer().routes()

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/nonexistent", http.NoBody))

	if w.Code != http.StatusNotFound {
		t.Errorf("GET /nonexistent: got status %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestCommandHandler(t *testing.T) {
	tests := []struct {
		name       string
		form       url.Values
		wantStatus int
	}{
		{
			name:       "missing_trigger_id",
			form:       url.Values{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "ok",
			form:       url.Values{"trigger_id": {"trigger123"}},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postForm(t, newTestServer().routes(), "/slack/command", tt.form)

			if w.Code != tt.wantStatus {
				t.Errorf("POST /slack/command: got status %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestInteractionHandler(t *testing.T) {
	tests := []struct {
		name       string
		form       url.Values
		wantStatus int
		wantBody   string
	}{
		{
			name:       "missing_payload",
			form:       url.Values{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed_payload",
			form:       url.Values{"payload": {"{not json"}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unsupported_interaction_type",
			form:       url.Values{"payload": {`{"type": "shortcut"}`}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "valid_submission",
			form: url.Values{"payload": {`{"type": "view_submission", "user": {"id": "U1"},
				"view": {"state": {"values": {
					"approver_select": {"approver": {"selected_option": {"value": "U0001"}}},
					"approval_reason": {"text": {"value": "need access"}}}}}}`}},
			wantStatus: http.StatusOK,
			wantBody:   `{"response_action":"clear"}`,
		},
		{
			name: "decision_for_unknown_request",
			form: url.Values{"payload": {`{"type": "interactive_message",
				"callback_id": "request_unknown", "user": {"id": "U2"},
				"channel": {"id": "D123"}, "message_ts": "111.222",
				"actions": [{"name": "approve", "type": "button", "value": "approved"}]}`}},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postForm(t, newTestServer().routes(), "/slack/interactions", tt.form)

			if w.Code != tt.wantStatus {
				t.Errorf("POST /slack/interactions: got status %d, want %d", w.Code, tt.wantStatus)
			}
			if body := strings.TrimSpace(w.Body.String()); body != tt.wantBody {
				t.Errorf("POST /slack/interactions: got body %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestNewHTTPServerConfig(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{
			name:    "missing_channel_id",
			args:    []string{"gatekeep"},
			wantErr: true,
		},
		{
			name:    "missing_bot_token",
			args:    []string{"gatekeep", "--slack-channel-id", "C999"},
			wantErr: true,
		},
		{
			name: "dev_mode_needs_no_token",
			args: []string{"gatekeep", "--dev", "--slack-channel-id", "C999"},
		},
		{
			name: "live_mode",
			args: []string{"gatekeep", "--slack-channel-id", "C999", "--slack-bot-token", "xoxb-123"},
		},
	}

	// Keep the ambient environment from leaking into flag values.
	t.Setenv("PORT", "3000")
	t.Setenv("SLACK_BOT_TOKEN", "")
	t.Setenv("HIDDEN_CHANNEL_ID", "")
	t.Setenv("SLACK_ADMINS_ONLY", "true")

	configFilePath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configFilePath, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	src := altsrc.StringSourcer(configFilePath)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := []cli.Flag{&cli.BoolFlag{Name: "dev"}}
			flags = append(flags, Flags(src)...)
			flags = append(flags, slack.Flags(src)...)

			cmd := &cli.Command{
				Name:  "gatekeep",
				Flags: flags,
				Action: func(_ context.Context, cmd *cli.Command) error {
					_, err := newHTTPServer(cmd)
					return err
				},
			}

			err := cmd.Run(t.Context(), tt.args)
			if (err != nil) != tt.wantErr {
				t.Errorf("newHTTPServer() error: got %v, want error = %v", err, tt.wantErr)
			}
		})
	}
}

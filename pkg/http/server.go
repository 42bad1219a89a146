package http

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/tzrikka/gatekeep/pkg/approval"
	"github.com/tzrikka/gatekeep/pkg/slack"
)

const (
	readTimeout = 3 * time.Second

	// Handlers call Slack's Web API up to 3 times before
	// responding, so writes get a more generous deadline.
	writeTimeout = 10 * time.Second
)

type httpServer struct {
	port    int
	handler *approval.Handler
}

// newHTTPServer wires the Slack API client, the in-memory request store,
// and the approval handler, based on the given CLI configuration. It fails
// fast when a required setting is missing, so that a misconfigured process
// never serves traffic.
func newHTTPServer(cmd *cli.Command) (*httpServer, error) {
	channelID := cmd.String("slack-channel-id")
	if channelID == "" {
		return nil, errors.New("missing required config: slack-channel-id")
	}

	var api approval.API
	if cmd.Bool("dev") {
		api = &slack.FakeClient{}
	} else {
		token := cmd.String("slack-bot-token")
		if token == "" {
			return nil, errors.New("missing required config: slack-bot-token")
		}
		api = slack.NewClient(token)
	}

	return &httpServer{
		port:    cmd.Int("http-port"),
		handler: approval.NewHandler(api, approval.NewStore(), channelID, cmd.Bool("slack-admins-only")),
	}, nil
}

// routes maps the URL paths that Slack is configured
// to call, plus a liveness check at the root.
func (s *httpServer) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.healthHandler)
	mux.HandleFunc("POST /slack/command", s.commandHandler)
	mux.HandleFunc("POST /slack/interactions", s.interactionHandler)
	return mux
}

// run starts the HTTP server that receives Slack's callbacks.
// This is blocking, to keep the Gatekeep server running.
func (s *httpServer) run() error {
	server := &http.Server{
		Addr:         net.JoinHostPort("", strconv.Itoa(s.port)),
		Handler:      s.routes(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	log.Info().Msgf("HTTP server listening on port %d", s.port)
	err := server.ListenAndServe()
	if err != nil {
		log.Err(err).Send()
		return err
	}

	return nil
}

func (s *httpServer) healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintln(w, "Bot is running!")
}

// commandHandler receives slash command invocations from Slack, and asks
// Slack to display the approval request modal to the invoking user.
func (s *httpServer) commandHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	l, ok := s.parseForm(w, r)
	if !ok {
		return
	}

	ctx := l.WithContext(r.Context())
	if status := s.handler.HandleCommand(ctx, r.PostForm.Get("trigger_id")); status != http.StatusOK {
		w.WriteHeader(status)
	}
}

// interactionHandler receives interaction payloads from Slack:
// modal submissions and Approve/Reject button clicks.
func (s *httpServer) interactionHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	l, ok := s.parseForm(w, r)
	if !ok {
		return
	}

	payload := r.PostForm.Get("payload")
	if payload == "" {
		l.Warn().Msg("bad request: missing interaction payload")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	ctx := l.WithContext(r.Context())
	status := s.handler.HandleInteraction(ctx, w, []byte(payload))
	if status != 0 && status != http.StatusOK {
		w.WriteHeader(status)
	}
}

// parseForm parses the request's form-encoded body, and initializes a
// request-scoped logger. Slack sends all of its callbacks form-encoded,
// so failing to parse the body is reported as a client error.
func (s *httpServer) parseForm(w http.ResponseWriter, r *http.Request) (zerolog.Logger, bool) {
	l := log.With().Str("http_method", r.Method).Str("url_path", r.URL.EscapedPath()).Logger()
	l.Info().Msg("received HTTP request")

	if err := r.ParseForm(); err != nil {
		l.Warn().Err(err).Msg("bad request: invalid form body")
		w.WriteHeader(http.StatusBadRequest)
		return l, false
	}

	return l, true
}

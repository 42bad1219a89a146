// Package slack initializes clients for Slack's [Web API]: a real one
// for production use, and a configurable fake for dev mode and tests.
//
// [Web API]: https://docs.slack.dev/apis/web-api/
package slack

import (
	"github.com/slack-go/slack"

	"github.com/tzrikka/gatekeep/pkg/approval"
)

// Both clients must stay in sync with the Web API
// subset that the approval workflow consumes.
var (
	_ approval.API = (*slack.Client)(nil)
	_ approval.API = (*FakeClient)(nil)
)

// NewClient initializes a Slack Web API client with the given bot token.
func NewClient(botToken string) *slack.Client {
	return slack.New(botToken)
}

package approval

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
)

// Slack's built-in system account, which is never a valid approver.
const slackbotUserID = "USLACKBOT"

// ListApprovers fetches the workspace's user directory and projects it
// into dropdown options for the approver selection modal. Bots,
// deactivated accounts, and Slack's built-in system account are always
// excluded; when adminsOnly is true, so is everyone without workspace
// admin privileges.
//
// Directory errors degrade to an empty list - callers must treat that as
// "no approvers available" and fail the slash command.
func ListApprovers(ctx context.Context, api API, adminsOnly bool) []*slack.OptionBlockObject {
	l := zerolog.Ctx(ctx)

	users, err := api.GetUsersContext(ctx)
	if err != nil {
		l.Warn().Err(err).Msg("failed to list workspace users")
		return nil
	}

	var options []*slack.OptionBlockObject
	for _, u := range users {
		if u.IsBot || u.Deleted || u.ID == slackbotUserID {
			continue
		}
		if adminsOnly && !u.IsAdmin {
			continue
		}

		label := slack.NewTextBlockObject(slack.PlainTextType, u.Name, false, false)
		options = append(options, slack.NewOptionBlockObject(u.ID, label, nil))
	}

	return options
}

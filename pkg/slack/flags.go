package slack

import (
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

// Flags defines CLI flags to configure the Slack Web API client and the
// approval workflow's target channel. These flags can also be set using
// environment variables and the application's configuration file.
func Flags(configFilePath altsrc.StringSourcer) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "slack-bot-token",
			Usage: `Slack bot token ("xoxb-...") for Web API calls`,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("SLACK_BOT_TOKEN"),
				toml.TOML("slack.bot_token", configFilePath),
			),
		},
		&cli.StringFlag{
			Name:  "slack-channel-id",
			Usage: "ID of the private channel that approved requesters are invited to",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("HIDDEN_CHANNEL_ID"),
				toml.TOML("slack.channel_id", configFilePath),
			),
		},
		&cli.BoolFlag{
			Name:  "slack-admins-only",
			Usage: "offer only workspace admins as approver candidates",
			Value: true,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("SLACK_ADMINS_ONLY"),
				toml.TOML("slack.admins_only", configFilePath),
			),
		},
	}
}

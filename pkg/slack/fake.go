package slack

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
)

// FakeClient is an in-memory implementation of the Slack Web API subset
// that the approval workflow consumes. It backs the "--dev" mode and unit
// tests, so neither needs a real Slack workspace: every call logs its
// inputs, and returns a canned response unless the corresponding function
// field overrides it.
type FakeClient struct {
	GetUsersFunc      func(ctx context.Context) ([]slack.User, error)
	OpenViewFunc      func(ctx context.Context, triggerID string, view slack.ModalViewRequest) (*slack.ViewResponse, error)
	PostMessageFunc   func(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	UpdateMessageFunc func(ctx context.Context, channelID, timestamp string, options ...slack.MsgOption) (string, string, string, error)
	InviteFunc        func(ctx context.Context, channelID string, users ...string) (*slack.Channel, error)
}

func (f *FakeClient) GetUsersContext(ctx context.Context, _ ...slack.GetUsersOption) ([]slack.User, error) {
	zerolog.Ctx(ctx).Debug().Str("fake_api_call", "users.list").Send()

	if f.GetUsersFunc != nil {
		return f.GetUsersFunc(ctx)
	}
	return []slack.User{
		{ID: "U0001", Name: "alice", IsAdmin: true},
		{ID: "U0002", Name: "bob", IsAdmin: true},
		{ID: "U0003", Name: "carol"},
	}, nil
}

func (f *FakeClient) OpenViewContext(ctx context.Context, triggerID string, view slack.ModalViewRequest) (*slack.ViewResponse, error) {
	zerolog.Ctx(ctx).Debug().Str("fake_api_call", "views.open").Str("trigger_id", triggerID).Send()

	if f.OpenViewFunc != nil {
		return f.OpenViewFunc(ctx, triggerID, view)
	}
	return &slack.ViewResponse{}, nil
}

func (f *FakeClient) PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	zerolog.Ctx(ctx).Debug().Str("fake_api_call", "chat.postMessage").Str("channel", channelID).Send()

	if f.PostMessageFunc != nil {
		return f.PostMessageFunc(ctx, channelID, options...)
	}
	return channelID, "1234567890.123456", nil
}

func (f *FakeClient) UpdateMessageContext(ctx context.Context, channelID, timestamp string, options ...slack.MsgOption) (string, string, string, error) {
	zerolog.Ctx(ctx).Debug().Str("fake_api_call", "chat.update").Str("channel", channelID).Str("ts", timestamp).Send()

	if f.UpdateMessageFunc != nil {
		return f.UpdateMessageFunc(ctx, channelID, timestamp, options...)
	}
	return channelID, timestamp, "", nil
}

func (f *FakeClient) InviteUsersToConversationContext(ctx context.Context, channelID string, users ...string) (*slack.Channel, error) {
	zerolog.Ctx(ctx).Debug().Str("fake_api_call", "conversations.invite").
		Str("channel", channelID).Strs("users", users).Send()

	if f.InviteFunc != nil {
		return f.InviteFunc(ctx, channelID, users...)
	}
	return &slack.Channel{}, nil
}

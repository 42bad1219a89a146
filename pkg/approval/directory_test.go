package approval_test

import (
	"context"
	"errors"
	"testing"

	"github.com/slack-go/slack"

	"github.com/tzrikka/gatekeep/pkg/approval"
	slackfake "github.com/tzrikka/gatekeep/pkg/slack"
)

func TestListApprovers(t *testing.T) {
	directory := []slack.User{
		{ID: "U1", Name: "alice", IsAdmin: true},
		{ID: "U2", Name: "bob"},
		{ID: "U3", Name: "approvalbot", IsBot: true, IsAdmin: true},
		{ID: "U4", Name: "mallory", IsAdmin: true, Deleted: true},
		{ID: "USLACKBOT", Name: "slackbot"},
	}

	tests := []struct {
		name       string
		users      []slack.User
		err        error
		adminsOnly bool
		want       []string
	}{
		{
			name:       "admins_only",
			users:      directory,
			adminsOnly: true,
			want:       []string{"U1"},
		},
		{
			name:  "all_active_humans",
			users: directory,
			want:  []string{"U1", "U2"},
		},
		{
			name:       "empty_directory",
			adminsOnly: true,
		},
		{
			name:       "directory_error_degrades_to_empty",
			err:        errors.New("slack is down"),
			adminsOnly: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &slackfake.FakeClient{
				GetUsersFunc: func(_ context.Context) ([]slack.User, error) {
					return tt.users, tt.err
				},
			}

			got := approval.ListApprovers(t.Context(), api, tt.adminsOnly)

			if len(got) != len(tt.want) {
				t.Fatalf("ListApprovers() returned %d options, want %d", len(got), len(tt.want))
			}
			for i, opt := range got {
				if opt.Value != tt.want[i] {
					t.Errorf("ListApprovers() option %d: got value %q, want %q", i, opt.Value, tt.want[i])
				}
				if opt.Text == nil || opt.Text.Text == "" {
					t.Errorf("ListApprovers() option %d: missing display label", i)
				}
			}
		})
	}
}

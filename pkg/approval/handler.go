package approval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
)

// Button values in the approver's notification message.
const (
	actionApproved = "approved"
	actionRejected = "rejected"
)

// API is the subset of Slack's Web API that the approval workflow
// consumes. [slack.Client] implements it, and so does the fake client
// in pkg/slack that is used in dev mode and during testing.
type API interface {
	GetUsersContext(ctx context.Context, options ...slack.GetUsersOption) ([]slack.User, error)
	OpenViewContext(ctx context.Context, triggerID string, view slack.ModalViewRequest) (*slack.ViewResponse, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	UpdateMessageContext(ctx context.Context, channelID, timestamp string, options ...slack.MsgOption) (string, string, string, error)
	InviteUsersToConversationContext(ctx context.Context, channelID string, users ...string) (*slack.Channel, error)
}

// Handler correlates the three asynchronous Slack callbacks that make up
// a single approval flow: slash command, modal submission, button click.
type Handler struct {
	api   API
	store *Store

	// The private channel that approved requesters are invited to.
	channelID string

	// Offer only workspace admins as approver candidates.
	adminsOnly bool
}

func NewHandler(api API, store *Store, channelID string, adminsOnly bool) *Handler {
	return &Handler{api: api, store: store, channelID: channelID, adminsOnly: adminsOnly}
}

// HandleCommand handles a slash command invocation: it opens the approval
// request modal for the invoking user, using the command's single-use
// trigger ID. The returned value is an HTTP status code.
//
// Modal display failures are not retried - the trigger ID is short-lived
// and would most likely be expired by the time a retry is sent.
func (h *Handler) HandleCommand(ctx context.Context, triggerID string) int {
	l := zerolog.Ctx(ctx)

	if triggerID == "" {
		l.Warn().Msg("bad request: missing trigger ID")
		return http.StatusBadRequest
	}

	approvers := ListApprovers(ctx, h.api, h.adminsOnly)
	if len(approvers) == 0 {
		l.Warn().Bool("admins_only", h.adminsOnly).Msg("bad request: no approver candidates")
		return http.StatusBadRequest
	}

	if _, err := h.api.OpenViewContext(ctx, triggerID, newModalView(approvers)); err != nil {
		l.Err(err).Msg("failed to open approval request modal")
		return http.StatusInternalServerError
	}

	return http.StatusOK
}

// HandleSubmission handles a modal submission: it validates the submitted
// values, saves a new pending request, and notifies the chosen approver
// with a message containing Approve/Reject buttons. The message is tagged
// with the request's ID, so [Handler.HandleDecision] can correlate the
// button click back to the request.
func (h *Handler) HandleSubmission(ctx context.Context, cb *slack.InteractionCallback) int {
	l := zerolog.Ctx(ctx)

	requester := cb.User.ID
	var approver, reason string
	if state := cb.View.State; state != nil {
		approver = state.Values[approverBlockID][approverActionID].SelectedOption.Value
		reason = state.Values[reasonBlockID][reasonActionID].Value
	}

	switch {
	case requester == "" || approver == "" || strings.TrimSpace(reason) == "":
		l.Warn().Msg("bad request: missing field in modal submission")
		return http.StatusBadRequest
	case approver == requester:
		l.Warn().Str("user_id", requester).Msg("bad request: requesters can't approve themselves")
		return http.StatusBadRequest
	}

	id := h.store.Create(Request{RequesterID: requester, ApproverID: approver, Reason: reason})

	text := fmt.Sprintf("New approval request from <@%s>: %s", requester, reason)
	buttons := slack.Attachment{
		Text:       "Do you approve?",
		Fallback:   "You must approve or reject",
		CallbackID: id,
		Actions: []slack.AttachmentAction{
			{Name: "approve", Text: "Approve", Type: "button", Value: actionApproved},
			{Name: "reject", Text: "Reject", Type: "button", Value: actionRejected},
		},
	}

	_, _, err := h.api.PostMessageContext(ctx, approver,
		slack.MsgOptionText(text, false), slack.MsgOptionAttachments(buttons))
	if err != nil {
		// No approver was told about the request, so it must not stay pending.
		h.store.Delete(id)
		l.Err(err).Str("request_id", id).Msg("failed to notify approver")
		return http.StatusInternalServerError
	}

	l.Info().Str("request_id", id).Str("requester_id", requester).
		Str("approver_id", approver).Msg("created approval request")
	return http.StatusOK
}

// HandleDecision handles an Approve/Reject button click: it resolves the
// correlated pending request at most once, invites the requester to the
// private channel on approval, and then notifies both parties.
func (h *Handler) HandleDecision(ctx context.Context, cb *slack.InteractionCallback) int {
	l := zerolog.Ctx(ctx)

	var action string
	if len(cb.ActionCallback.AttachmentActions) > 0 {
		action = cb.ActionCallback.AttachmentActions[0].Value
	}
	if action != actionApproved && action != actionRejected {
		l.Warn().Str("action", action).Msg("bad request: unknown decision action")
		return http.StatusBadRequest
	}

	id := cb.CallbackID
	req, ok := h.store.TakeIfPending(id)
	if !ok {
		l.Warn().Str("request_id", id).Msg("bad request: request not found or already processed")
		return http.StatusBadRequest
	}

	if action == actionApproved {
		if _, err := h.api.InviteUsersToConversationContext(ctx, h.channelID, req.RequesterID); err != nil {
			// The requester wasn't granted access yet, so the request
			// goes back to pending and the approver can click again.
			h.store.Restore(id, req)
			l.Err(err).Str("request_id", id).Msg("failed to invite requester to the private channel")
			return http.StatusInternalServerError
		}
	}

	outcome := fmt.Sprintf("*Approved* by <@%s>", cb.User.ID)
	if action == actionRejected {
		outcome = fmt.Sprintf("*Rejected* by <@%s>", cb.User.ID)
	}

	// The two notifications are independent of each other, so they are
	// sent concurrently.
	var wg sync.WaitGroup
	var requesterErr, approverErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		text := fmt.Sprintf("Your approval request *%q* has been %s", req.Reason, outcome)
		_, _, requesterErr = h.api.PostMessageContext(ctx, req.RequesterID, slack.MsgOptionText(text, false))
	}()
	go func() {
		defer wg.Done()
		text := fmt.Sprintf("Approval request from <@%s>: *%s*", req.RequesterID, req.Reason)
		_, _, _, approverErr = h.api.UpdateMessageContext(ctx, cb.Channel.ID, cb.MessageTs,
			slack.MsgOptionText(text, false), slack.MsgOptionAttachments(slack.Attachment{Text: outcome}))
	}()
	wg.Wait()

	if err := errors.Join(requesterErr, approverErr); err != nil {
		// The decision is already terminal: on approval the channel invite
		// happened, and it can't be undone by replaying the button click.
		// So the request stays resolved, and only the error is reported.
		l.Err(err).Str("request_id", id).Str("action", action).
			Msg("request resolved, but failed to send notifications")
		return http.StatusInternalServerError
	}

	l.Info().Str("request_id", id).Str("decider_id", cb.User.ID).
		Str("action", action).Msg("resolved approval request")
	return http.StatusOK
}

// HandleInteraction decodes an interaction payload and dispatches it
// based on its type: modal submissions create pending requests, button
// clicks decide them. Like the other handlers it returns an HTTP status
// code, except that 0 means a response was already written.
func (h *Handler) HandleInteraction(ctx context.Context, w http.ResponseWriter, payload []byte) int {
	l := zerolog.Ctx(ctx)

	cb := &slack.InteractionCallback{}
	if err := json.Unmarshal(payload, cb); err != nil {
		l.Warn().Err(err).Msg("bad request: malformed interaction payload")
		return http.StatusBadRequest
	}

	switch cb.Type {
	case slack.InteractionTypeViewSubmission:
		if status := h.HandleSubmission(ctx, cb); status != http.StatusOK {
			return status
		}
		// Tell Slack to close the modal.
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response_action":"clear"}`))
		return 0

	case slack.InteractionTypeInteractionMessage:
		return h.HandleDecision(ctx, cb)

	default:
		l.Warn().Str("type", string(cb.Type)).Msg("bad request: unsupported interaction type")
		return http.StatusBadRequest
	}
}

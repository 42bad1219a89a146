package approval

import (
	"github.com/slack-go/slack"
)

// Block and action IDs inside the approval request modal. The submission
// handler uses them to extract the submitted values, so they must match
// the modal spec that the command handler sends to Slack.
const (
	modalCallbackID = "approval_modal"

	approverBlockID  = "approver_select"
	approverActionID = "approver"

	reasonBlockID  = "approval_reason"
	reasonActionID = "text"
)

// newModalView constructs the approval request form: a dropdown populated
// with the given approver candidates, and a free-text reason field.
func newModalView(approvers []*slack.OptionBlockObject) slack.ModalViewRequest {
	approverLabel := slack.NewTextBlockObject(slack.PlainTextType, "Select Approver", false, false)
	approverSelect := slack.NewOptionsSelectBlockElement(slack.OptTypeStatic, nil, approverActionID, approvers...)

	reasonLabel := slack.NewTextBlockObject(slack.PlainTextType, "Approval Reason", false, false)
	reasonInput := slack.NewPlainTextInputBlockElement(nil, reasonActionID)

	return slack.ModalViewRequest{
		Type:       slack.VTModal,
		CallbackID: modalCallbackID,
		Title:      slack.NewTextBlockObject(slack.PlainTextType, "Approval Request", false, false),
		Submit:     slack.NewTextBlockObject(slack.PlainTextType, "Submit", false, false),
		Blocks: slack.Blocks{
			BlockSet: []slack.Block{
				slack.NewInputBlock(approverBlockID, approverLabel, nil, approverSelect),
				slack.NewInputBlock(reasonBlockID, reasonLabel, nil, reasonInput),
			},
		},
	}
}

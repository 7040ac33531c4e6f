package lifecycle

import "github.com/linesmerrill/fir-api/models"

// Action is something an identity attempts against a FIR or a listing
type Action int

// Actions checked by Allowed
const (
	ActionRead Action = iota
	ActionTransition
	ActionListPending
	ActionListAllArchives
)

// Allowed is the single capability check used by every Manager operation.
// fir may be nil for listing actions.
func Allowed(id models.Identity, action Action, fir *models.FIR) bool {
	switch action {
	case ActionRead:
		if id.IsPolice() {
			return true
		}
		return fir != nil && id.UserID != "" && fir.UserID == id.UserID
	case ActionTransition, ActionListPending, ActionListAllArchives:
		return id.IsPolice()
	default:
		return false
	}
}

package lifecycle

import (
	"fmt"
	"strings"

	"github.com/linesmerrill/fir-api/models"
)

// allowed lists the forward moves out of each active status. Same-status
// updates (notes, sections) are always allowed and not listed here.
var allowed = map[models.Status][]models.Status{
	models.StatusPending:    {models.StatusInProgress, models.StatusResolved, models.StatusRejected},
	models.StatusInProgress: {models.StatusResolved, models.StatusRejected},
}

// ParseStatus validates a caller supplied status
func ParseStatus(s string) (models.Status, error) {
	switch st := models.Status(strings.TrimSpace(s)); st {
	case models.StatusPending, models.StatusInProgress, models.StatusResolved, models.StatusRejected:
		return st, nil
	case "":
		return "", fmt.Errorf("%w: status is required", ErrValidation)
	default:
		return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
	}
}

// CanTransition reports whether a FIR in status from may move to status to
func CanTransition(from, to models.Status) bool {
	if from == to {
		return true
	}
	for _, next := range allowed[from] {
		if next == to {
			return true
		}
	}
	return false
}

// HumanStatus renders a status for messages, "in_progress" becomes "In Progress"
func HumanStatus(s models.Status) string {
	words := strings.Fields(strings.ReplaceAll(string(s), "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// shortID is the id prefix shown to citizens in notification messages
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func resolvedMessage(id string) string {
	return fmt.Sprintf("Your FIR (%s) has been marked as RESOLVED.", shortID(id))
}

func statusMessage(id string, s models.Status) string {
	return fmt.Sprintf("Your FIR (%s) status has been updated to '%s'.", shortID(id), HumanStatus(s))
}

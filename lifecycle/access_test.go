package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linesmerrill/fir-api/models"
)

func TestAllowed(t *testing.T) {
	owned := &models.FIR{ID: "f1", UserID: "u1"}

	assert.True(t, Allowed(citizen, ActionRead, owned))
	assert.False(t, Allowed(stranger, ActionRead, owned))
	assert.True(t, Allowed(officer, ActionRead, owned))
	assert.False(t, Allowed(citizen, ActionRead, nil))
	assert.False(t, Allowed(models.Identity{Role: models.RoleCitizen}, ActionRead, &models.FIR{}))

	for _, action := range []Action{ActionTransition, ActionListPending, ActionListAllArchives} {
		assert.True(t, Allowed(officer, action, nil))
		assert.False(t, Allowed(citizen, action, owned))
	}
	assert.False(t, Allowed(officer, Action(99), owned))
}

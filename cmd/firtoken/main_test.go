package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/linesmerrill/fir-api/models"
)

func TestRun(t *testing.T) {
	assert.NoError(t, run("dev", models.Identity{UserID: "p1", Role: models.RolePolice, StationID: "S1"}, time.Hour))
	assert.Error(t, run("dev", models.Identity{Role: models.RoleCitizen}, time.Hour))
	assert.Error(t, run("dev", models.Identity{UserID: "u1", Role: "admin"}, time.Hour))
	assert.Error(t, run("", models.Identity{UserID: "u1", Role: models.RoleCitizen}, time.Hour))
}

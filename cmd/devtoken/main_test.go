package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hostel-allocation-api/internal/models"
)

func TestParseRole(t *testing.T) {
	role, err := parseRole(" student ")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, role)

	role, err = parseRole("SUPERADMIN")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, role)

	_, err = parseRole("TEACHER")
	assert.Error(t, err)
}

package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetPassword_HashesAndVerifies(t *testing.T) {
	user := &User{}
	require.NoError(t, user.SetPassword("correct horse battery staple"))

	assert.NotEqual(t, "correct horse battery staple", user.Password)
	assert.True(t, user.CheckPassword("correct horse battery staple"))
	assert.False(t, user.CheckPassword("wrong password"))
}

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole("USER"))
	assert.True(t, IsValidRole("VENDOR"))
	assert.True(t, IsValidRole("ADMIN"))
	assert.False(t, IsValidRole("user"))
	assert.False(t, IsValidRole(""))
}

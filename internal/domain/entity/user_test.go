package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewUser_DefaultState(t *testing.T) {
	u := NewUser(1, 10)
	require.Equal(t, StateMainMenu, u.State)
	require.Equal(t, int64(1), u.ID)
	require.Equal(t, int64(10), u.ChatID)
	require.Equal(t, DefaultUserThreshold, u.Threshold)
}

func TestUser_SetThreshold(t *testing.T) {
	u := NewUser(1, 10)
	require.NoError(t, u.SetThreshold(0.55))
	require.Equal(t, 0.55, u.Threshold)

	require.Error(t, u.SetThreshold(-0.1))
	require.Error(t, u.SetThreshold(1.2))
	require.Equal(t, 0.55, u.Threshold)
}

func TestUser_RecordCheck(t *testing.T) {
	u := NewUser(1, 10)
	u.RecordCheck(true)
	u.RecordCheck(false)
	require.Equal(t, 2, u.Checked)
	require.Equal(t, 1, u.Damaged)
}

package session

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chikondi-pos/appstate"
	"chikondi-pos/database"
	"chikondi-pos/models"
)

var _ Repository = (*database.Repository)(nil)

func setupService(t *testing.T) *Service {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "session-test-*")
	require.NoError(t, err)

	manager := database.NewManager(filepath.Join(tmpDir, "test.db"))
	db, err := manager.Open()
	require.NoError(t, err)

	t.Cleanup(func() {
		manager.Close()
		os.RemoveAll(tmpDir)
	})

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewService(database.NewRepository(db), appstate.NewStore(tmpDir), logger)
}

func TestResolve(t *testing.T) {
	user := &models.User{ShopName: "Shop"}

	tests := []struct {
		name      string
		user      *models.User
		everSetup bool
		want      State
	}{
		{"fresh device", nil, false, StateNewUser},
		{"account present", user, true, StateExistingUser},
		{"account present before flag", user, false, StateExistingUser},
		{"logged out after setup", nil, true, StateLoggedOut},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.user, tt.everSetup))
		})
	}
}

func TestSetupLoginLogoutFlow(t *testing.T) {
	svc := setupService(t)

	state, err := svc.CurrentState()
	require.NoError(t, err)
	assert.Equal(t, StateNewUser, state)

	user, err := svc.Setup("Chikondi Shop", "4729", "MWK")
	require.NoError(t, err)
	assert.NotEmpty(t, user.PinHash)

	state, err = svc.CurrentState()
	require.NoError(t, err)
	assert.Equal(t, StateExistingUser, state)

	t.Run("login with correct pin", func(t *testing.T) {
		user, err := svc.Login("4729")
		require.NoError(t, err)
		assert.Equal(t, "Chikondi Shop", user.ShopName)
	})

	t.Run("login with wrong pin", func(t *testing.T) {
		_, err := svc.Login("0000")
		assert.ErrorIs(t, err, ErrWrongPin)
	})

	t.Run("logout preserves ever-setup flag", func(t *testing.T) {
		require.NoError(t, svc.Logout())

		state, err := svc.CurrentState()
		require.NoError(t, err)
		assert.Equal(t, StateLoggedOut, state)
	})
}

func TestSetupRejectsWeakPin(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Setup("Shop", "1111", "MWK")
	assert.ErrorIs(t, err, ErrWeakPin)

	state, err := svc.CurrentState()
	require.NoError(t, err)
	assert.Equal(t, StateNewUser, state)
}

func TestLoginLockout(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Setup("Shop", "4729", "MWK")
	require.NoError(t, err)

	for i := 0; i < maxLoginAttempts; i++ {
		_, err := svc.Login("9990")
		assert.ErrorIs(t, err, ErrWrongPin)
	}

	// Even the right pin is refused while locked
	_, err = svc.Login("4729")
	assert.ErrorIs(t, err, ErrLockedOut)
}

func TestChangePin(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Setup("Shop", "4729", "MWK")
	require.NoError(t, err)

	t.Run("wrong current pin", func(t *testing.T) {
		err := svc.ChangePin("1212", "8305")
		assert.ErrorIs(t, err, ErrWrongPin)
	})

	t.Run("weak new pin", func(t *testing.T) {
		err := svc.ChangePin("4729", "2222")
		assert.ErrorIs(t, err, ErrWeakPin)
	})

	t.Run("successful rotation", func(t *testing.T) {
		require.NoError(t, svc.ChangePin("4729", "8305"))

		_, err := svc.Login("4729")
		assert.ErrorIs(t, err, ErrWrongPin)

		user, err := svc.Login("8305")
		require.NoError(t, err)
		assert.Equal(t, 1, user.PinResetCount)
		assert.NotZero(t, user.LastPinReset)
	})
}

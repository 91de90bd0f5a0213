package session

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"chikondi-pos/appstate"
	"chikondi-pos/database"
	"chikondi-pos/models"
)

// State is where the app should land on startup.
type State string

const (
	// StateNewUser means no account was ever created on this device.
	StateNewUser State = "new_user"
	// StateExistingUser means an account exists and the owner is logged in.
	StateExistingUser State = "existing_user"
	// StateLoggedOut means an account was created before but the owner
	// logged out; login, not setup, is the way back in.
	StateLoggedOut State = "logged_out"
)

const (
	maxLoginAttempts = 5
	attemptWindow    = time.Hour
	lockoutDuration  = 15 * time.Minute
)

var (
	ErrWrongPin  = errors.New("wrong pin")
	ErrLockedOut = errors.New("too many failed attempts")
)

// Resolve maps the stored account and the ever-setup flag to a startup
// state. The flag is what distinguishes "logged out" from "never set up".
func Resolve(user *models.User, everSetup bool) State {
	if user != nil {
		return StateExistingUser
	}
	if everSetup {
		return StateLoggedOut
	}
	return StateNewUser
}

// Repository is the slice of the data layer the session service needs.
type Repository interface {
	GetUser() (*models.User, error)
	SetUser(u *models.User) error
	ClearUser() error
}

// Service handles account setup, login with lockout, logout and PIN changes.
type Service struct {
	repo  Repository
	state *appstate.Store
	log   *slog.Logger
}

func NewService(repo Repository, state *appstate.Store, log *slog.Logger) *Service {
	return &Service{repo: repo, state: state, log: log}
}

// CurrentState resolves the startup state from the store and the device
// flag.
func (s *Service) CurrentState() (State, error) {
	cfg, err := s.state.Load()
	if err != nil {
		return "", err
	}

	user, err := s.repo.GetUser()
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return "", err
	}
	return Resolve(user, cfg.EverSetup), nil
}

// Setup creates the owner account with a hashed PIN and marks the device as
// set up.
func (s *Service) Setup(shopName, pin, currency string) (*models.User, error) {
	if err := ValidatePinStrength(pin); err != nil {
		return nil, err
	}

	hash, err := HashPin(pin)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ShopName: shopName,
		PinHash:  hash,
		Currency: currency,
	}
	if err := s.repo.SetUser(user); err != nil {
		return nil, err
	}

	if _, err := s.state.Update(func(cfg *appstate.ProcessConfig) {
		cfg.EverSetup = true
		cfg.LoginAttempts = 0
		cfg.FirstFailAt = 0
		cfg.LockedUntil = 0
	}); err != nil {
		return nil, err
	}

	s.log.Info("account created", "shop", shopName)
	return user, nil
}

// Login verifies the PIN. Five failures within an hour lock the account for
// fifteen minutes; a success clears the counter.
func (s *Service) Login(pin string) (*models.User, error) {
	cfg, err := s.state.Load()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if cfg.LockedUntil > 0 && models.Millis(now) < cfg.LockedUntil {
		remaining := time.UnixMilli(cfg.LockedUntil).Sub(now).Round(time.Second)
		return nil, fmt.Errorf("%w: try again in %s", ErrLockedOut, remaining)
	}

	user, err := s.repo.GetUser()
	if err != nil {
		return nil, err
	}

	ok, err := VerifyPin(pin, user.PinHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		if err := s.recordFailure(now); err != nil {
			return nil, err
		}
		return nil, ErrWrongPin
	}

	if _, err := s.state.Update(func(cfg *appstate.ProcessConfig) {
		cfg.LoginAttempts = 0
		cfg.FirstFailAt = 0
		cfg.LockedUntil = 0
	}); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) recordFailure(now time.Time) error {
	_, err := s.state.Update(func(cfg *appstate.ProcessConfig) {
		nowMs := models.Millis(now)
		windowStart := models.Millis(now.Add(-attemptWindow))
		if cfg.FirstFailAt < windowStart {
			cfg.LoginAttempts = 0
			cfg.FirstFailAt = nowMs
		}
		if cfg.LoginAttempts == 0 {
			cfg.FirstFailAt = nowMs
		}
		cfg.LoginAttempts++
		if cfg.LoginAttempts >= maxLoginAttempts {
			cfg.LockedUntil = models.Millis(now.Add(lockoutDuration))
			s.log.Warn("login locked out", "attempts", cfg.LoginAttempts)
		}
	})
	return err
}

// Logout removes the stored account but keeps the ever-setup flag, so the
// next startup lands on login rather than first-run setup.
func (s *Service) Logout() error {
	if err := s.repo.ClearUser(); err != nil {
		return err
	}
	s.log.Info("logged out")
	return nil
}

// ChangePin rotates the PIN after verifying the current one.
func (s *Service) ChangePin(currentPin, newPin string) error {
	user, err := s.repo.GetUser()
	if err != nil {
		return err
	}

	ok, err := VerifyPin(currentPin, user.PinHash)
	if err != nil {
		return err
	}
	if !ok {
		return ErrWrongPin
	}

	if err := ValidatePinStrength(newPin); err != nil {
		return err
	}

	hash, err := HashPin(newPin)
	if err != nil {
		return err
	}

	user.PinHash = hash
	user.LastPinReset = models.Millis(time.Now())
	user.PinResetCount++
	return s.repo.SetUser(user)
}

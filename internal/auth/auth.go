package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/five82/cijene/internal/cijene"
	"github.com/five82/cijene/internal/persist"
)

const storeVersion = 1

var (
	// ErrEmailTaken is returned when registering an email that already has an
	// account.
	ErrEmailTaken = errors.New("an account with this email already exists")
	// ErrNotLoggedIn is returned by operations that need a session.
	ErrNotLoggedIn = errors.New("not logged in")
)

// User is a local account as exposed to the UI.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
	LastLogin time.Time `json:"lastLogin"`
}

type account struct {
	User
	PasswordHash string `json:"passwordHash"`
}

type stored struct {
	Accounts  []account `json:"accounts"`
	CurrentID string    `json:"currentId,omitempty"`
}

// RegisterRequest is the registration form.
type RegisterRequest struct {
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=8"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
	Username        string `validate:"omitempty,min=3,max=50"`
}

// LoginRequest is the login form.
type LoginRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Service manages local accounts that gate access to favorites. Accounts never
// influence the API credential.
type Service struct {
	mu       sync.Mutex
	storage  persist.Storage
	enabled  bool
	logger   zerolog.Logger
	validate *validator.Validate
	cost     int
	now      func() time.Time

	data stored
}

// NewService restores accounts from storage. When enabled is false Allowed
// always reports true and login is optional.
func NewService(storage persist.Storage, enabled bool, logger zerolog.Logger) (*Service, error) {
	s := &Service{
		storage:  storage,
		enabled:  enabled,
		logger:   logger.With().Str("component", "auth").Logger(),
		validate: validator.New(),
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
	_, err := persist.LoadJSON(storage, persist.AuthKey, &s.data)
	switch {
	case err == nil, errors.Is(err, persist.ErrNotFound):
	case errors.Is(err, persist.ErrCorrupt):
		s.logger.Warn().Err(err).Msg("discarding stored accounts")
		s.data = stored{}
	default:
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	return s, nil
}

// Enabled reports whether login is required for favorites.
func (s *Service) Enabled() bool { return s.enabled }

// Allowed reports whether gated views may be shown.
func (s *Service) Allowed() bool {
	if !s.enabled {
		return true
	}
	_, ok := s.CurrentUser()
	return ok
}

// CurrentUser returns the logged-in user.
func (s *Service) CurrentUser() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc := s.find(func(a account) bool { return a.ID == s.data.CurrentID }); acc != nil && s.data.CurrentID != "" {
		return acc.User, true
	}
	return User{}, false
}

// Register creates an account and logs it in.
func (s *Service) Register(req RegisterRequest) (User, error) {
	req.Email = normalizeEmail(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if err := s.check(req); err != nil {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.find(func(a account) bool { return a.Email == req.Email }) != nil {
		return User{}, cijene.ValidationError(ErrEmailTaken.Error())
	}

	username := req.Username
	if username == "" {
		username, _, _ = strings.Cut(req.Email, "@")
	}
	now := s.now().UTC()
	acc := account{
		User: User{
			ID:        uuid.NewString(),
			Email:     req.Email,
			Username:  username,
			Verified:  true,
			CreatedAt: now,
			LastLogin: now,
		},
		PasswordHash: string(hash),
	}
	next := s.data
	next.Accounts = append(append([]account(nil), s.data.Accounts...), acc)
	next.CurrentID = acc.ID
	if err := s.save(next); err != nil {
		return User{}, err
	}
	s.logger.Info().Str("user_id", acc.ID).Msg("account registered")
	return acc.User, nil
}

// Login starts a session for the matching account.
func (s *Service) Login(req LoginRequest) (User, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.check(req); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.find(func(a account) bool { return a.Email == req.Email })
	if acc == nil || bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(req.Password)) != nil {
		s.logger.Info().Str("email", req.Email).Msg("login rejected")
		return User{}, authFailed()
	}

	next := stored{Accounts: append([]account(nil), s.data.Accounts...), CurrentID: acc.ID}
	for i := range next.Accounts {
		if next.Accounts[i].ID == acc.ID {
			next.Accounts[i].LastLogin = s.now().UTC()
			acc = &next.Accounts[i]
		}
	}
	if err := s.save(next); err != nil {
		return User{}, err
	}
	return acc.User, nil
}

// Logout ends the current session. Logging out twice is a no-op.
func (s *Service) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.CurrentID == "" {
		return nil
	}
	next := s.data
	next.CurrentID = ""
	return s.save(next)
}

// ChangePassword replaces the current user's password after checking the old
// one.
func (s *Service) ChangePassword(current, next string) error {
	if err := s.validate.Var(next, "required,min=8"); err != nil {
		return cijene.ValidationError("Password must be at least 8 characters long")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.CurrentID == "" {
		return ErrNotLoggedIn
	}
	data := stored{Accounts: append([]account(nil), s.data.Accounts...), CurrentID: s.data.CurrentID}
	for i := range data.Accounts {
		acc := &data.Accounts[i]
		if acc.ID != data.CurrentID {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(current)) != nil {
			return authFailed()
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(next), s.cost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		acc.PasswordHash = string(hash)
		return s.save(data)
	}
	return ErrNotLoggedIn
}

// save persists next and adopts it only once the write succeeded.
func (s *Service) save(next stored) error {
	if err := persist.SaveJSON(s.storage, persist.AuthKey, next, storeVersion); err != nil {
		return fmt.Errorf("save accounts: %w", err)
	}
	s.data = next
	return nil
}

func (s *Service) find(match func(account) bool) *account {
	for i := range s.data.Accounts {
		if match(s.data.Accounts[i]) {
			return &s.data.Accounts[i]
		}
	}
	return nil
}

func (s *Service) check(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return cijene.ValidationError(formMessage(fieldErrs[0]))
	}
	return cijene.ValidationError(err.Error())
}

func formMessage(fe validator.FieldError) string {
	switch {
	case fe.Tag() == "required":
		return fmt.Sprintf("Field '%s' is required", lowerFirst(fe.Field()))
	case fe.Tag() == "email":
		return "Invalid email format"
	case fe.Tag() == "eqfield":
		return "Passwords do not match"
	case fe.Field() == "Password":
		return "Password must be at least 8 characters long"
	case fe.Field() == "Username":
		return "Username must be between 3 and 50 characters"
	}
	return fmt.Sprintf("Field '%s' is invalid", lowerFirst(fe.Field()))
}

func authFailed() *cijene.Error {
	return &cijene.Error{
		Kind:      cijene.KindAuthentication,
		Code:      cijene.CodeAuth,
		Message:   cijene.Message(cijene.CodeAuth),
		Timestamp: time.Now(),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

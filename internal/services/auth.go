package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/powervate/admin-api/internal/models"
	"github.com/powervate/admin-api/internal/store"
	"github.com/powervate/admin-api/internal/utils"
)

const (
	AdminRole         = "admin"
	MinPasswordLength = 6
)

// CredentialRepository is the identity store used for sign-in.
type CredentialRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Credential, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Credential, error)
	Create(ctx context.Context, cred *models.Credential) error
	UpdateEmail(ctx context.Context, id primitive.ObjectID, email string) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
}

// ProfileRepository reads and writes the user documents admins are stored in.
type ProfileRepository interface {
	Get(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	SetFields(ctx context.Context, id string, set bson.M) error
	UpsertAdmin(ctx context.Context, id primitive.ObjectID, fullName, email string) error
}

type AuthOptions struct {
	BcryptCost int
	// RecentLogin is how long after proving the password an admin may change
	// their email without entering it again.
	RecentLogin time.Duration
	Logger      *slog.Logger
}

// LoginResult is returned by every operation that (re)issues a token.
type LoginResult struct {
	Token string       `json:"token"`
	Admin models.Admin `json:"admin"`
}

type ProfileUpdate struct {
	FullName        string
	Email           string
	CurrentPassword string
}

type PasswordChange struct {
	Current string
	New     string
	Confirm string
}

// AuthService signs admins in and manages their credentials and sessions.
type AuthService struct {
	creds    CredentialRepository
	users    ProfileRepository
	sessions SessionStore
	tokens   *utils.TokenManager
	opts     AuthOptions
	now      func() time.Time
}

func NewAuthService(creds CredentialRepository, users ProfileRepository, sessions SessionStore, tokens *utils.TokenManager, opts AuthOptions) *AuthService {
	if opts.RecentLogin <= 0 {
		opts.RecentLogin = 5 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &AuthService{creds: creds, users: users, sessions: sessions, tokens: tokens, opts: opts, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login checks the credentials, requires an admin profile and opens a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	cred, err := s.creds.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("looking up credentials: %w", err)
	}
	if !utils.CheckPasswordHash(password, cred.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	user, err := s.adminProfile(ctx, cred.ID.Hex())
	if err != nil {
		return nil, err
	}

	now := s.now()
	sess := &Session{ID: uuid.NewString(), Admin: models.NewAdmin(user, now), AuthTime: now}
	result, err := s.issue(ctx, sess)
	if err != nil {
		return nil, err
	}
	s.opts.Logger.Info("admin signed in", "uid", sess.Admin.UID, "session", sess.ID)
	return result, nil
}

func (s *AuthService) adminProfile(ctx context.Context, uid string) (*models.User, error) {
	user, err := s.users.Get(ctx, uid)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoProfile
	}
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	if !user.IsAdmin {
		return nil, ErrNotAdmin
	}
	return user, nil
}

func (s *AuthService) issue(ctx context.Context, sess *Session) (*LoginResult, error) {
	if err := s.sessions.Save(ctx, sess, s.tokens.TTL()); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	token, err := s.tokens.GenerateJWT(sess.Admin.UID, AdminRole, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}
	return &LoginResult{Token: token, Admin: sess.Admin}, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// Session returns the live session with the cached admin profile.
func (s *AuthService) Session(ctx context.Context, sessionID string) (*Session, error) {
	return s.sessions.Get(ctx, sessionID)
}

func (s *AuthService) reauthenticate(cred *models.Credential, password string) error {
	if !utils.CheckPasswordHash(password, cred.PasswordHash) {
		return ErrWrongPassword
	}
	return nil
}

func (s *AuthService) credentialFor(ctx context.Context, sess *Session) (*models.Credential, error) {
	oid, err := primitive.ObjectIDFromHex(sess.Admin.UID)
	if err != nil {
		return nil, ErrNoProfile
	}
	cred, err := s.creds.Get(ctx, oid)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoProfile
	}
	return cred, err
}

// UpdateProfile changes the admin's name and email. Changing the email needs a
// recent sign-in or the current password.
func (s *AuthService) UpdateProfile(ctx context.Context, sessionID string, upd ProfileUpdate) (*LoginResult, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	cred, err := s.credentialFor(ctx, sess)
	if err != nil {
		return nil, err
	}

	now := s.now()
	email := normalizeEmail(upd.Email)
	emailChanged := email != cred.Email
	if emailChanged {
		if now.Sub(sess.AuthTime) > s.opts.RecentLogin {
			if upd.CurrentPassword == "" {
				return nil, ErrRequiresRecentLogin
			}
			if err := s.reauthenticate(cred, upd.CurrentPassword); err != nil {
				return nil, err
			}
			sess.AuthTime = now
		}
		if err := s.creds.UpdateEmail(ctx, cred.ID, email); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return nil, ErrEmailTaken
			}
			return nil, fmt.Errorf("updating credential email: %w", err)
		}
	}

	set := bson.M{
		"profile.fullName": strings.TrimSpace(upd.FullName),
		"profile.email":    email,
		"updated_at":       now.UTC(),
	}
	if err := s.users.SetFields(ctx, sess.Admin.UID, set); err != nil {
		// The credential must keep matching the profile, so sign-in still
		// works with the email the admin sees.
		if emailChanged {
			if rerr := s.creds.UpdateEmail(ctx, cred.ID, cred.Email); rerr != nil {
				s.opts.Logger.ErrorContext(ctx, "restoring credential email failed",
					"uid", sess.Admin.UID, "email", cred.Email, "error", rerr)
				err = errors.Join(err, fmt.Errorf("restoring credential email: %w", rerr))
			}
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoProfile
		}
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	user, err := s.adminProfile(ctx, sess.Admin.UID)
	if err != nil {
		_ = s.sessions.Delete(ctx, sess.ID)
		return nil, err
	}
	sess.Admin = models.NewAdmin(user, sess.Admin.LoggedIn)
	return s.issue(ctx, sess)
}

// ChangePassword re-authenticates with the current password before setting a new one.
func (s *AuthService) ChangePassword(ctx context.Context, sessionID string, chg PasswordChange) error {
	if len(chg.New) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if chg.New != chg.Confirm {
		return ErrPasswordMismatch
	}
	if chg.Current == "" {
		return ErrCurrentPasswordRequired
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	cred, err := s.credentialFor(ctx, sess)
	if err != nil {
		return err
	}
	if err := s.reauthenticate(cred, chg.Current); err != nil {
		return err
	}

	hash, err := utils.HashPassword(chg.New, s.opts.BcryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := s.creds.UpdatePassword(ctx, cred.ID, hash); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	sess.AuthTime = s.now()
	if err := s.sessions.Save(ctx, sess, s.tokens.TTL()); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// CreateAdmin creates an admin account, or promotes the account or app user
// already using email and sets its password. It returns the admin's uid.
func (s *AuthService) CreateAdmin(ctx context.Context, fullName, email, password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	email = normalizeEmail(email)
	hash, err := utils.HashPassword(password, s.opts.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	cred, err := s.creds.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.creds.UpdatePassword(ctx, cred.ID, hash); err != nil {
			return "", fmt.Errorf("updating password: %w", err)
		}
	case errors.Is(err, store.ErrNotFound):
		// An app user with this email keeps its document and becomes an admin.
		id := primitive.NewObjectID()
		user, err := s.users.FindByEmail(ctx, email)
		switch {
		case err == nil:
			id = user.ID
		case !errors.Is(err, store.ErrNotFound):
			return "", fmt.Errorf("looking up user: %w", err)
		}
		cred = &models.Credential{ID: id, Email: email, PasswordHash: hash}
		if err := s.creds.Create(ctx, cred); err != nil {
			return "", fmt.Errorf("creating credentials: %w", err)
		}
	default:
		return "", fmt.Errorf("looking up credentials: %w", err)
	}

	if err := s.users.UpsertAdmin(ctx, cred.ID, strings.TrimSpace(fullName), email); err != nil {
		return "", fmt.Errorf("saving admin profile: %w", err)
	}
	return cred.ID.Hex(), nil
}

// ResetPassword sets a new password for the account using email.
func (s *AuthService) ResetPassword(ctx context.Context, email, password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	cred, err := s.creds.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	hash, err := utils.HashPassword(password, s.opts.BcryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	return s.creds.UpdatePassword(ctx, cred.ID, hash)
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mptwarrior/warrior/internal/auth"
	"github.com/mptwarrior/warrior/internal/invitation"
	"github.com/mptwarrior/warrior/internal/middleware"
	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/internal/storage"
	"github.com/mptwarrior/warrior/pkg/api"
)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	store         storage.Store
	authenticator auth.Authenticator
	codes         *invitation.Manager
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
	now           func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(store storage.Store, authenticator auth.Authenticator, codes *invitation.Manager, jwtManager *auth.JWTManager, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		store:         store,
		authenticator: authenticator,
		codes:         codes,
		jwtManager:    jwtManager,
		logger:        logger,
		now:           time.Now,
	}
}

// Register creates a pending account, consuming one use of the invitation code.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	msg := req.Msg
	email := strings.ToLower(strings.TrimSpace(msg.Email))
	name := strings.TrimSpace(msg.Name)
	whatsapp := strings.TrimSpace(msg.WhatsApp)
	telegram := strings.TrimSpace(msg.TelegramID)
	s.logger.Info("Register request", "email", email)

	switch {
	case name == "" || email == "" || msg.Password == "" || strings.TrimSpace(msg.InvitationCode) == "":
		return nil, invalidArgument("name, email, password and invitation code are required")
	case whatsapp == "" && telegram == "":
		return nil, invalidArgument("a WhatsApp number or Telegram ID is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalidArgument("email address is not valid")
	}
	if err := s.authenticator.ValidateCredential(msg.Password); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	// Check the email before burning a code use on a doomed registration.
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, connect.NewError(connect.CodeAlreadyExists, auth.ErrEmailExists)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, toConnectError(err)
	}

	code, err := s.codes.Use(ctx, msg.InvitationCode)
	if err != nil {
		s.logger.Warn("Registration rejected", "email", email, "error", err)
		return nil, toConnectError(err)
	}

	now := s.now().UTC()
	warriorID, err := auth.NewWarriorID(now)
	if err != nil {
		return nil, toConnectError(err)
	}

	role := models.RoleWarrior
	if code.Role == models.RoleAdmin {
		role = models.RoleAdmin
	}
	user := &models.User{
		ID:             uuid.New().String(),
		WarriorID:      warriorID,
		Email:          email,
		Name:           name,
		WhatsApp:       whatsapp,
		TelegramID:     telegram,
		Role:           role,
		Status:         models.StatusPending,
		InvitationCode: code.Code,
		InvitedBy:      code.CreatedBy,
		Settings:       models.DefaultUserSettings(),
		JoinDate:       now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.authenticator.Register(ctx, user, msg.Password); err != nil {
		s.logger.Error("Registration failed", "email", email, "code", code.Code, "error", err)
		return nil, toConnectError(err)
	}

	recordAudit(ctx, s.store, models.AuditUserRegistered, user.ID, user.ID, map[string]string{
		"invitation_code": code.Code,
		"role":            string(role),
	})
	s.logger.Info("User registered", "user_id", user.ID, "warrior_id", user.WarriorID, "code", code.Code)

	return connect.NewResponse(&api.RegisterResponse{
		User:    api.NewUser(user),
		Message: "Registration successful. Your account is waiting for admin approval.",
	}), nil
}

// Login authenticates a user and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	email := strings.TrimSpace(req.Msg.Email)
	s.logger.Info("Login request", "email", email)

	if email == "" || req.Msg.Password == "" {
		return nil, invalidArgument("email and password are required")
	}

	user, err := s.authenticator.Authenticate(ctx, email, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Login failed", "email", email, "error", err)
		return nil, toConnectError(err)
	}

	now := s.now().UTC()
	user.LoginCount++
	user.LastLogin = &now
	user.UpdatedAt = now
	if err := s.store.UpdateUser(ctx, user); err != nil {
		s.logger.Error("Failed to record login", "user_id", user.ID, "error", err)
		return nil, toConnectError(err)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	recordAudit(ctx, s.store, models.AuditLogin, user.ID, user.ID, nil)
	s.logger.Info("User logged in", "user_id", user.ID, "status", user.Status)

	return connect.NewResponse(&api.LoginResponse{User: api.NewUser(user), Token: token}), nil
}

// GetCurrentUser returns the caller's stored account.
func (s *AuthService) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	userID, err := middleware.Authenticated(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetCurrentUserResponse{User: api.NewUser(user)}), nil
}

// UpdateProfile changes the caller's name, avatar and settings. Settings
// fields that are not set keep their stored values.
func (s *AuthService) UpdateProfile(ctx context.Context, req *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.UpdateProfileResponse], error) {
	userID, err := middleware.Authenticated(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	var changed []string
	if msg.Name != nil {
		name := strings.TrimSpace(*msg.Name)
		if name == "" {
			return nil, invalidArgument("name must not be empty")
		}
		user.Name = name
		changed = append(changed, "name")
	}
	if msg.Avatar != nil {
		user.Avatar = strings.TrimSpace(*msg.Avatar)
		changed = append(changed, "avatar")
	}
	if msg.Settings != nil {
		settings, err := mergeSettings(user.Settings, msg.Settings)
		if err != nil {
			return nil, err
		}
		user.Settings = settings
		changed = append(changed, "settings")
	}
	if len(changed) == 0 {
		return connect.NewResponse(&api.UpdateProfileResponse{User: api.NewUser(user)}), nil
	}

	user.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		s.logger.Error("UpdateProfile failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	recordAudit(ctx, s.store, models.AuditProfileUpdated, userID, userID, map[string]string{
		"fields": strings.Join(changed, ","),
	})
	s.logger.Info("Profile updated", "user_id", userID, "fields", changed)
	return connect.NewResponse(&api.UpdateProfileResponse{User: api.NewUser(user)}), nil
}

// mergeSettings applies the set fields of u on top of cur.
func mergeSettings(cur models.UserSettings, u *api.SettingsUpdate) (models.UserSettings, error) {
	if u.Theme != nil {
		switch *u.Theme {
		case "dark", "light":
			cur.Theme = *u.Theme
		default:
			return cur, invalidArgument("theme must be dark or light")
		}
	}
	if u.Currency != nil {
		c := strings.ToUpper(strings.TrimSpace(*u.Currency))
		if len(c) != 3 {
			return cur, invalidArgument("currency must be a three-letter code")
		}
		cur.Currency = c
	}
	if u.Timezone != nil {
		if _, err := time.LoadLocation(*u.Timezone); err != nil || *u.Timezone == "" {
			return cur, invalidArgument("unknown timezone " + *u.Timezone)
		}
		cur.Timezone = *u.Timezone
	}
	if u.Language != nil {
		l := strings.ToLower(strings.TrimSpace(*u.Language))
		if l == "" {
			return cur, invalidArgument("language must not be empty")
		}
		cur.Language = l
	}
	if u.Notifications != nil {
		cur.Notifications = *u.Notifications
	}
	if u.RiskPercent != nil {
		if *u.RiskPercent <= 0 || *u.RiskPercent > 100 {
			return cur, invalidArgument("riskPercent must be above 0 and at most 100")
		}
		cur.RiskPercent = *u.RiskPercent
	}
	return cur, nil
}

package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushq/attendly/internal/models"
	"github.com/campushq/attendly/internal/repository"
	appErrors "github.com/campushq/attendly/pkg/errors"
)

// defaultAdmin seeds an empty installation so the first login is possible.
var defaultAdmin = models.User{
	Username:   "teacher",
	FirstName:  "Demo",
	LastName:   "Teacher",
	Email:      "demo@college.edu",
	Department: "Administration",
	Role:       models.RoleAdmin,
	EmployeeID: "ADM001",
}

const defaultAdminPassword = "password123"

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	SessionSecret string
	SessionTTL    time.Duration
	BcryptCost    int
}

// AuthService provides registration, login, sessions and password resets.
type AuthService struct {
	users     *repository.Users
	recents   *repository.RecentLogins
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users *repository.Users, recents *repository.RecentLogins, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = 24 * time.Hour
	}
	if config.BcryptCost <= 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	svc := &AuthService{users: users, recents: recents, validator: validate, logger: logger, config: config}
	_ = svc.validator.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return models.Role(fl.Field().String()).Valid()
	})
	return svc
}

// EnsureDefaultAdmin seeds the default admin account when no users exist.
func (s *AuthService) EnsureDefaultAdmin(ctx context.Context) error {
	if s.users.Count() > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(defaultAdminPassword), s.config.BcryptCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to hash default password")
	}
	admin := defaultAdmin
	admin.PasswordHash = string(hash)
	admin.RegisteredDate = time.Now().UTC()
	s.users.Append(admin)
	if err := s.users.Save(ctx); err != nil {
		s.users.Drop(admin.Username)
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, "failed to persist default admin")
	}
	s.logger.Info("seeded default admin account")
	return nil
}

// RegisterRequest holds the registration payload.
type RegisterRequest struct {
	FirstName       string      `json:"firstName" validate:"required"`
	LastName        string      `json:"lastName" validate:"required"`
	Email           string      `json:"email" validate:"required,email"`
	Department      string      `json:"department" validate:"required"`
	Role            models.Role `json:"role" validate:"required,role"`
	Username        string      `json:"username" validate:"required,min=3,alphanum|containsany=_"`
	EmployeeID      string      `json:"employeeId" validate:"required"`
	Password        string      `json:"password" validate:"required,min=6"`
	ConfirmPassword string      `json:"confirmPassword" validate:"required,eqfield=Password"`
	ProfilePicture  string      `json:"profilePicture"`
}

// Register creates a new account after uniqueness checks on username,
// employee id and email.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*models.UserInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid registration payload")
	}
	if _, exists := s.users.FindByUsername(req.Username); exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already exists")
	}
	if _, exists := s.users.FindByEmployeeID(req.EmployeeID); exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "employee id already exists")
	}
	if _, exists := s.users.FindByEmail(req.Email); exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to hash password")
	}

	user := models.User{
		Username:       req.Username,
		PasswordHash:   string(hash),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Department:     req.Department,
		Role:           req.Role,
		EmployeeID:     req.EmployeeID,
		ProfilePicture: req.ProfilePicture,
		RegisteredDate: time.Now().UTC(),
	}

	s.users.Append(user)
	if err := s.users.Save(ctx); err != nil {
		s.users.Drop(user.Username)
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, "failed to persist user")
	}

	s.logger.Info("user registered", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	info := userInfo(user)
	return &info, nil
}

// LoginRequest holds the login payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates a user and issues a session token. The username is
// added to the recent-logins history; a history write failure only logs.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid login payload")
	}

	user, ok := s.users.FindByUsername(req.Username)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid username or password")
	}

	s.recents.Add(user.Username, time.Now().UTC())
	if err := s.recents.Save(ctx); err != nil {
		s.logger.Warn("failed to persist recent logins", zap.Error(err))
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to create session token")
	}

	s.logger.Info("user logged in", zap.String("username", user.Username))
	return &models.LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.config.SessionTTL.Seconds()),
		User:      userInfo(user),
	}, nil
}

// VerifySession parses and validates a session token.
func (s *AuthService) VerifySession(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "unexpected signing method")
		}
		return []byte(s.config.SessionSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid session token")
	}
	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid session claims")
	}
	return claims, nil
}

// CurrentUser resolves the full account for verified session claims,
// supplying the identity the access policy consumes.
func (s *AuthService) CurrentUser(claims *models.SessionClaims) (models.User, error) {
	user, ok := s.users.FindByUsername(claims.Username)
	if !ok {
		return models.User{}, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return user, nil
}

// ResetPassword replaces the password for the account with the given
// email. Called after OTP verification.
func (s *AuthService) ResetPassword(ctx context.Context, email, newPassword string) error {
	if len(newPassword) < 6 {
		return appErrors.Clone(appErrors.ErrValidation, "password must be at least 6 characters long")
	}
	user, ok := s.users.FindByEmail(email)
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "no account found with this email address")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.config.BcryptCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to hash password")
	}
	previous := user.PasswordHash
	s.users.UpdatePassword(user.Username, string(hash))
	if err := s.users.Save(ctx); err != nil {
		s.users.UpdatePassword(user.Username, previous)
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, "failed to persist password reset")
	}
	s.logger.Info("password reset", zap.String("username", user.Username))
	return nil
}

// RecentLogins returns the stored login history, most recent first.
func (s *AuthService) RecentLogins() []models.RecentLogin {
	return s.recents.List()
}

// ClearRecentLogins wipes the login history.
func (s *AuthService) ClearRecentLogins(ctx context.Context) error {
	if err := s.recents.Clear(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, "failed to clear recent logins")
	}
	return nil
}

func (s *AuthService) issueToken(user models.User) (string, error) {
	now := time.Now().UTC()
	claims := models.SessionClaims{
		Username:   user.Username,
		Role:       user.Role,
		Department: user.Department,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.SessionTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.SessionSecret))
}

func userInfo(user models.User) models.UserInfo {
	return models.UserInfo{
		Username:   user.Username,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Email:      user.Email,
		Department: user.Department,
		Role:       user.Role,
		EmployeeID: user.EmployeeID,
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/sponsorship-backend/internal/logger"
	"github.com/ignatzorin/sponsorship-backend/internal/models"
	"github.com/ignatzorin/sponsorship-backend/internal/pkg/apperror"
	"github.com/ignatzorin/sponsorship-backend/internal/repository"
	"github.com/ignatzorin/sponsorship-backend/internal/validation"
)

// AuthRepository описывает зависимости AuthService от слоя хранилища.
type AuthRepository interface {
	CreateWithProfile(ctx context.Context, user *models.User, profile *models.Profile) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, refreshToken string) (*models.Session, error)
	DeleteSession(ctx context.Context, refreshToken string) error
	UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error
}

// ProfileGetter читает профиль пользователя.
type ProfileGetter interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

// AuthService инкапсулирует бизнес-логику регистрации и аутентификации.
type AuthService struct {
	repo         AuthRepository
	profiles     ProfileGetter
	tokenManager *TokenManager
}

// RegisterInput содержит данные пользователя при регистрации.
type RegisterInput struct {
	Email       string
	Password    string
	UserType    models.UserType
	ContactName string
	CompanyName *string
}

// LoginInput содержит данные для входа.
type LoginInput struct {
	Email    string
	Password string
}

// SessionMeta данные клиента для сессии.
type SessionMeta struct {
	UserAgent string
	IP        string
}

// AuthResult возвращает итог регистрации или авторизации.
type AuthResult struct {
	User      *models.User    `json:"user"`
	Profile   *models.Profile `json:"profile"`
	TokenPair *TokenPair      `json:"tokens"`
}

// CurrentUser текущий пользователь вместе с профилем.
type CurrentUser struct {
	User    *models.User    `json:"user"`
	Profile *models.Profile `json:"profile"`
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(repo AuthRepository, profiles ProfileGetter, tokenManager *TokenManager) *AuthService {
	return &AuthService{
		repo:         repo,
		profiles:     profiles,
		tokenManager: tokenManager,
	}
}

// Register создаёт пользователя и профиль выбранного типа. Админов через API не создают.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, meta SessionMeta) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, apperror.Validation(err)
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, apperror.Validation(err)
	}
	if !in.UserType.IsValid() {
		return nil, apperror.New(apperror.ErrCodeValidation, "неизвестный тип пользователя")
	}
	if in.UserType == models.UserTypeAdmin {
		return nil, apperror.New(apperror.ErrCodeForbidden, "регистрация администратора запрещена")
	}
	contactName := strings.TrimSpace(in.ContactName)
	if err := validation.ValidateContactName(contactName); err != nil {
		return nil, apperror.Validation(err)
	}
	if err := validation.ValidateOptionalText("company_name", in.CompanyName, validation.MaxCompanyNameLength); err != nil {
		return nil, apperror.Validation(err)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("auth service: не удалось захешировать пароль: %w", err))
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(passHash),
		UserType:     in.UserType,
	}
	profile := &models.Profile{
		ContactName: contactName,
		CompanyName: in.CompanyName,
	}

	if err := s.repo.CreateWithProfile(ctx, user, profile); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, apperror.ErrEmailTaken
		}
		return nil, apperror.Internal(err)
	}

	tokens, err := s.startSession(ctx, user, meta)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Profile: profile, TokenPair: tokens}, nil
}

// Login проверяет учётные данные и возвращает токены.
func (s *AuthService) Login(ctx context.Context, in LoginInput, meta SessionMeta) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, apperror.ErrInvalidCredentials
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, apperror.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, apperror.New(apperror.ErrCodeForbidden, "аккаунт заблокирован")
	}

	if err := s.repo.UpdateLastLoginAt(ctx, user.ID); err != nil {
		// не прерываем вход
		logger.Log.WithFields(logrus.Fields{
			"user_id": user.ID,
			"error":   err.Error(),
		}).Warn("auth service: не удалось обновить last_login_at")
	}

	tokens, err := s.startSession(ctx, user, meta)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.Get(ctx, user.ID)
	if err != nil && !errors.Is(err, repository.ErrProfileNotFound) {
		return nil, apperror.Internal(err)
	}

	return &AuthResult{User: user, Profile: profile, TokenPair: tokens}, nil
}

// Refresh выпускает новую пару токенов и отзывает старую сессию.
func (s *AuthService) Refresh(ctx context.Context, oldToken string, meta SessionMeta) (*TokenPair, error) {
	claims, err := s.tokenManager.ParseRefresh(oldToken)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "refresh токен невалиден")
	}

	if _, err := s.repo.GetSession(ctx, oldToken); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, apperror.New(apperror.ErrCodeUnauthorized, "сессия не найдена")
		}
		return nil, apperror.Internal(err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "некорректный subject")
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, apperror.Internal(err)
	}

	if err := s.repo.DeleteSession(ctx, oldToken); err != nil {
		return nil, apperror.Internal(err)
	}

	return s.startSession(ctx, user, meta)
}

// Logout отзывает refresh токен.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.repo.DeleteSession(ctx, refreshToken); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// Me возвращает текущего пользователя и его профиль.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*CurrentUser, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, apperror.Internal(err)
	}

	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, apperror.ErrProfileNotFound
		}
		return nil, apperror.Internal(err)
	}

	return &CurrentUser{User: user, Profile: profile}, nil
}

func (s *AuthService) startSession(ctx context.Context, user *models.User, meta SessionMeta) (*TokenPair, error) {
	tokens, _, refreshExp, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	session := &models.Session{
		UserID:       user.ID,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    refreshExp,
	}
	if meta.UserAgent != "" {
		session.UserAgent = &meta.UserAgent
	}
	if meta.IP != "" {
		session.IPAddress = &meta.IP
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, apperror.Internal(err)
	}
	return tokens, nil
}

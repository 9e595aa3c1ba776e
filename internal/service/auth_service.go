package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/straye-as/attendance-api/internal/auth"
	"github.com/straye-as/attendance-api/internal/domain"
	"github.com/straye-as/attendance-api/internal/mapper"
	"github.com/straye-as/attendance-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AdminDisplayName is the name shown for the admin account
const AdminDisplayName = "Administrator"

// AuthService logs users in and out and resolves session tokens
type AuthService struct {
	sessionRepo   *repository.SessionRepository
	studentRepo   *repository.StudentRepository
	codes         *DailyCodeService
	tokens        *auth.TokenManager
	adminPassHash []byte
	clock         Clock
	logger        *zap.Logger
}

// AdminCredentials configures the admin password. A bcrypt hash takes
// precedence over the plain password.
type AdminCredentials struct {
	Password     string
	PasswordHash string
	// BcryptCost is used when hashing a plain password (bcrypt.DefaultCost when 0)
	BcryptCost int
}

func NewAuthService(
	sessionRepo *repository.SessionRepository,
	studentRepo *repository.StudentRepository,
	codes *DailyCodeService,
	tokens *auth.TokenManager,
	admin AdminCredentials,
	clock Clock,
	logger *zap.Logger,
) (*AuthService, error) {
	hash, err := adminPasswordHash(admin)
	if err != nil {
		return nil, err
	}

	return &AuthService{
		sessionRepo:   sessionRepo,
		studentRepo:   studentRepo,
		codes:         codes,
		tokens:        tokens,
		adminPassHash: hash,
		clock:         clock,
		logger:        logger,
	}, nil
}

func adminPasswordHash(admin AdminCredentials) ([]byte, error) {
	if admin.PasswordHash != "" {
		if _, err := bcrypt.Cost([]byte(admin.PasswordHash)); err != nil {
			return nil, fmt.Errorf("invalid admin password hash: %w", err)
		}
		return []byte(admin.PasswordHash), nil
	}
	if admin.Password == "" {
		return nil, fmt.Errorf("admin password is required")
	}

	cost := admin.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}
	return hash, nil
}

// LoginAdmin starts an admin session
func (s *AuthService) LoginAdmin(ctx context.Context, req *domain.AdminLoginRequest) (*domain.LoginResponse, error) {
	if err := bcrypt.CompareHashAndPassword(s.adminPassHash, []byte(req.Password)); err != nil {
		s.logger.Warn("admin login failed")
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, &domain.Session{
		UserType: domain.UserTypeAdmin,
		UserID:   domain.AdminUserID,
		UserName: AdminDisplayName,
	})
}

// LoginStudent starts a student session. The daily code is checked before the
// roster so a missing or expired code is reported as such.
func (s *AuthService) LoginStudent(ctx context.Context, req *domain.StudentLoginRequest) (*domain.LoginResponse, error) {
	if err := s.codes.Validate(ctx, req.DailyCode); err != nil {
		s.logger.Info("student login rejected",
			zap.String("student_id", req.StudentID),
			zap.Error(err),
		)
		return nil, err
	}

	student, err := s.studentRepo.GetByID(ctx, strings.TrimSpace(req.StudentID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	if !strings.EqualFold(strings.TrimSpace(req.Name), student.Name) || req.Department != student.Department {
		s.logger.Info("student login rejected",
			zap.String("student_id", req.StudentID),
			zap.String("reason", "roster mismatch"),
		)
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, &domain.Session{
		UserType:   domain.UserTypeStudent,
		UserID:     student.ID,
		UserName:   student.Name,
		Department: student.Department,
	})
}

// Authenticate resolves a bearer token to its live session
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.UserContext, error) {
	now := s.clock()

	claims, err := s.tokens.Validate(token, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	session, err := s.sessionRepo.GetByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: session not found", ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if !now.Before(session.ExpiresAt) {
		if err := s.sessionRepo.Delete(ctx, session.ID); err != nil {
			s.logger.Warn("failed to delete expired session", zap.Error(err))
		}
		return nil, fmt.Errorf("%w: session expired", ErrUnauthorized)
	}

	return &auth.UserContext{
		SessionID:   session.ID,
		UserType:    session.UserType,
		UserID:      session.UserID,
		DisplayName: session.UserName,
		Department:  session.Department,
	}, nil
}

// Logout ends a session
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.logger.Info("session ended", zap.String("session_id", sessionID))
	return nil
}

// SweepExpiredSessions deletes sessions past their expiry
func (s *AuthService) SweepExpiredSessions(ctx context.Context) (int64, error) {
	removed, err := s.sessionRepo.DeleteExpired(ctx, s.clock())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep sessions: %w", err)
	}
	return removed, nil
}

func (s *AuthService) startSession(ctx context.Context, session *domain.Session) (*domain.LoginResponse, error) {
	now := s.clock()
	session.ID = uuid.New().String()

	token, expiresAt, err := s.tokens.Issue(session.ID, session.UserType, session.UserID, now)
	if err != nil {
		return nil, err
	}
	session.CreatedAt = now.UTC()
	session.ExpiresAt = expiresAt.UTC()

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("session started",
		zap.String("user_type", string(session.UserType)),
		zap.String("user_id", session.UserID),
	)

	return &domain.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      mapper.ToUserDTO(session),
	}, nil
}

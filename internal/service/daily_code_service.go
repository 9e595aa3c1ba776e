package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/straye-as/attendance-api/internal/domain"
	"github.com/straye-as/attendance-api/internal/mapper"
	"github.com/straye-as/attendance-api/internal/repository"
	"github.com/straye-as/attendance-api/internal/util"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DailyCodeAlphabet leaves out characters that are easy to confuse (0/O, 1/I/L)
const DailyCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// DefaultDailyCodeLength is the length of generated codes when none is configured
const DefaultDailyCodeLength = 6

// DailyCodeService issues and checks the student login code of the day
type DailyCodeService struct {
	codeRepo *repository.DailyCodeRepository
	notifier *NotificationService
	length   int
	random   io.Reader
	clock    Clock
	loc      *time.Location
	logger   *zap.Logger
}

func NewDailyCodeService(
	codeRepo *repository.DailyCodeRepository,
	notifier *NotificationService,
	length int,
	clock Clock,
	loc *time.Location,
	logger *zap.Logger,
) *DailyCodeService {
	if length < 1 {
		length = DefaultDailyCodeLength
	}
	return &DailyCodeService{
		codeRepo: codeRepo,
		notifier: notifier,
		length:   length,
		random:   rand.Reader,
		clock:    clock,
		loc:      loc,
		logger:   logger,
	}
}

// Generate issues a new code that replaces the current one and expires at
// the next local midnight
func (s *DailyCodeService) Generate(ctx context.Context) (*domain.DailyCodeDTO, error) {
	value, err := s.randomCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate daily code: %w", err)
	}

	now := s.clock()
	code := &domain.DailyCode{
		Code:      value,
		Day:       util.DayKey(now, s.loc),
		ExpiresAt: util.NextMidnight(now, s.loc).UTC(),
		CreatedAt: now.UTC(),
	}

	if err := s.codeRepo.Create(ctx, code); err != nil {
		return nil, fmt.Errorf("failed to store daily code: %w", err)
	}

	if removed, err := s.codeRepo.DeleteBefore(ctx, code.ID); err != nil {
		s.logger.Warn("failed to prune old daily codes", zap.Error(err))
	} else if removed > 0 {
		s.logger.Debug("pruned old daily codes", zap.Int64("removed", removed))
	}

	s.logger.Info("daily code generated",
		zap.String("day", code.Day),
		zap.Time("expires_at", code.ExpiresAt),
	)
	s.notifier.Notify(ctx, fmt.Sprintf("New daily code generated for %s", code.Day))

	dto := mapper.ToDailyCodeDTO(code, now, s.loc)
	return &dto, nil
}

// Current returns the latest issued code and whether it is still active
func (s *DailyCodeService) Current(ctx context.Context) (*domain.DailyCodeDTO, error) {
	code, err := s.latest(ctx)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToDailyCodeDTO(code, s.clock(), s.loc)
	return &dto, nil
}

// Validate checks a code entered at student login. Comparison ignores case
// and surrounding whitespace.
func (s *DailyCodeService) Validate(ctx context.Context, input string) error {
	code, err := s.latest(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNoDailyCode
		}
		return err
	}

	if !code.IsActive(s.clock()) {
		return ErrDailyCodeExpired
	}
	if !strings.EqualFold(strings.TrimSpace(input), code.Code) {
		return ErrDailyCodeMismatch
	}
	return nil
}

// EnsureCurrent issues a code unless an active one already exists.
// Used by the rotation job so a restart does not replace a valid code.
func (s *DailyCodeService) EnsureCurrent(ctx context.Context) (*domain.DailyCodeDTO, bool, error) {
	now := s.clock()
	code, err := s.latest(ctx)
	switch {
	case err == nil && code.IsActive(now) && code.Day == util.DayKey(now, s.loc):
		dto := mapper.ToDailyCodeDTO(code, now, s.loc)
		return &dto, false, nil
	case err != nil && !errors.Is(err, ErrNotFound):
		return nil, false, err
	}

	dto, err := s.Generate(ctx)
	if err != nil {
		return nil, false, err
	}
	return dto, true, nil
}

func (s *DailyCodeService) latest(ctx context.Context) (*domain.DailyCode, error) {
	code, err := s.codeRepo.Latest(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no daily code issued", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get daily code: %w", err)
	}
	return code, nil
}

func (s *DailyCodeService) randomCode() (string, error) {
	alphabetSize := big.NewInt(int64(len(DailyCodeAlphabet)))
	var b strings.Builder
	b.Grow(s.length)
	for i := 0; i < s.length; i++ {
		n, err := rand.Int(s.random, alphabetSize)
		if err != nil {
			return "", err
		}
		b.WriteByte(DailyCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/attendance-api/internal/domain"
	"github.com/straye-as/attendance-api/internal/mapper"
	"github.com/straye-as/attendance-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StudentIDPrefix prefixes every generated student id
const StudentIDPrefix = "ST"

// FormatStudentID renders a roster sequence as a student id, e.g. 6 -> "ST006"
func FormatStudentID(seq int) string {
	return fmt.Sprintf("%s%03d", StudentIDPrefix, seq)
}

// RosterService manages students and classes
type RosterService struct {
	studentRepo *repository.StudentRepository
	classRepo   *repository.ClassRepository
	notifier    *NotificationService
	clock       Clock
	loc         *time.Location
	logger      *zap.Logger
}

func NewRosterService(
	studentRepo *repository.StudentRepository,
	classRepo *repository.ClassRepository,
	notifier *NotificationService,
	clock Clock,
	loc *time.Location,
	logger *zap.Logger,
) *RosterService {
	return &RosterService{
		studentRepo: studentRepo,
		classRepo:   classRepo,
		notifier:    notifier,
		clock:       clock,
		loc:         loc,
		logger:      logger,
	}
}

// AddStudent enrolls a student and assigns the next id in sequence
func (s *RosterService) AddStudent(ctx context.Context, req *domain.CreateStudentRequest) (*domain.StudentDTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: student name is required", ErrInvalidInput)
	}
	if !req.Department.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDepartment, req.Department)
	}

	seq, err := s.studentRepo.NextSequence(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate student id: %w", err)
	}

	student := &domain.Student{
		ID:         FormatStudentID(seq),
		Seq:        seq,
		Name:       name,
		Department: req.Department,
		DateAdded:  s.clock().UTC(),
	}

	if err := s.studentRepo.Create(ctx, student); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: student id %s already exists", ErrConflict, student.ID)
		}
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	s.logger.Info("student added",
		zap.String("student_id", student.ID),
		zap.String("department", string(student.Department)),
	)
	s.notifier.Notify(ctx, fmt.Sprintf("New student added: %s (%s, %s)", student.Name, student.ID, student.Department))

	dto := mapper.ToStudentDTO(student, s.loc)
	return &dto, nil
}

// GetStudent looks a student up by id
func (s *RosterService) GetStudent(ctx context.Context, id string) (*domain.StudentDTO, error) {
	student, err := s.getStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToStudentDTO(student, s.loc)
	return &dto, nil
}

// ListStudents returns the roster sorted by department then name.
// search matches a substring of the name or id, ignoring case.
func (s *RosterService) ListStudents(ctx context.Context, search string, department *domain.Department) ([]domain.StudentDTO, error) {
	if department != nil && !department.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDepartment, *department)
	}

	students, err := s.studentRepo.List(ctx, repository.StudentFilter{
		Search:     strings.TrimSpace(search),
		Department: department,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return mapper.ToStudentDTOs(students, s.loc), nil
}

// GetStudentsByDepartment returns every student of one department
func (s *RosterService) GetStudentsByDepartment(ctx context.Context, department domain.Department) ([]domain.StudentDTO, error) {
	return s.ListStudents(ctx, "", &department)
}

// AddClass creates a class. Class names are unique per department, ignoring case.
func (s *RosterService) AddClass(ctx context.Context, req *domain.CreateClassRequest) (*domain.ClassDTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: class name is required", ErrInvalidInput)
	}
	if !req.Department.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDepartment, req.Department)
	}

	nameKey := domain.ClassNameKey(name)
	exists, err := s.classRepo.ExistsByName(ctx, req.Department, nameKey)
	if err != nil {
		return nil, fmt.Errorf("failed to check class name: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: class %q already exists in %s", ErrConflict, name, req.Department)
	}

	class := &domain.Class{
		ID:         uuid.New().String(),
		Name:       name,
		NameKey:    nameKey,
		Department: req.Department,
		CreatedAt:  s.clock().UTC(),
	}

	if err := s.classRepo.Create(ctx, class); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: class %q already exists in %s", ErrConflict, name, req.Department)
		}
		return nil, fmt.Errorf("failed to create class: %w", err)
	}

	s.logger.Info("class added",
		zap.String("class_id", class.ID),
		zap.String("department", string(class.Department)),
	)
	s.notifier.Notify(ctx, fmt.Sprintf("New class added: %s (%s)", class.Name, class.Department))

	dto := mapper.ToClassDTO(class, s.loc)
	return &dto, nil
}

// ListClasses returns classes, optionally of a single department
func (s *RosterService) ListClasses(ctx context.Context, department *domain.Department) ([]domain.ClassDTO, error) {
	if department != nil && !department.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDepartment, *department)
	}

	classes, err := s.classRepo.List(ctx, department)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}
	return mapper.ToClassDTOs(classes, s.loc), nil
}

// GetClassesByDepartment returns the classes offered by one department
func (s *RosterService) GetClassesByDepartment(ctx context.Context, department domain.Department) ([]domain.ClassDTO, error) {
	return s.ListClasses(ctx, &department)
}

func (s *RosterService) getStudent(ctx context.Context, id string) (*domain.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrStudentNotFound, id)
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return student, nil
}

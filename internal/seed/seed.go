package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/attendance-api/internal/domain"
	"github.com/straye-as/attendance-api/internal/repository"
	"github.com/straye-as/attendance-api/internal/util"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed roster.yaml
var defaultRoster []byte

var studentIDPattern = regexp.MustCompile(`^ST(\d{3,})$`)

// Roster is the YAML seed format
type Roster struct {
	Students []StudentEntry `yaml:"students"`
	Classes  []ClassEntry   `yaml:"classes"`
}

type StudentEntry struct {
	ID         string            `yaml:"id"`
	Name       string            `yaml:"name"`
	Department domain.Department `yaml:"department"`
	// DateAdded is a day (YYYY-MM-DD) in the configured timezone
	DateAdded string `yaml:"dateAdded"`
}

type ClassEntry struct {
	Name       string            `yaml:"name"`
	Department domain.Department `yaml:"department"`
}

// Result counts what Apply inserted
type Result struct {
	Students int
	Classes  int
}

// Default returns the embedded sample roster
func Default() (*Roster, error) {
	return Parse(bytes.NewReader(defaultRoster))
}

// LoadFile reads and validates a roster file
func LoadFile(path string) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes a roster and validates it. Unknown keys are rejected.
func Parse(r io.Reader) (*Roster, error) {
	var roster Roster

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&roster); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}

	if err := roster.Validate(); err != nil {
		return nil, err
	}
	return &roster, nil
}

// Validate checks ids, names, departments and dates
func (r *Roster) Validate() error {
	seen := make(map[string]bool, len(r.Students))
	for i, s := range r.Students {
		if _, err := StudentSeq(s.ID); err != nil {
			return fmt.Errorf("students[%d]: %w", i, err)
		}
		if seen[s.ID] {
			return fmt.Errorf("students[%d]: duplicate id %s", i, s.ID)
		}
		seen[s.ID] = true

		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("students[%d]: name is required", i)
		}
		if !s.Department.IsValid() {
			return fmt.Errorf("students[%d]: invalid department %q", i, s.Department)
		}
		if s.DateAdded != "" {
			if _, err := time.Parse(util.DayLayout, s.DateAdded); err != nil {
				return fmt.Errorf("students[%d]: invalid dateAdded %q", i, s.DateAdded)
			}
		}
	}

	classKeys := make(map[string]bool, len(r.Classes))
	for i, c := range r.Classes {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return fmt.Errorf("classes[%d]: name is required", i)
		}
		if !c.Department.IsValid() {
			return fmt.Errorf("classes[%d]: invalid department %q", i, c.Department)
		}
		key := string(c.Department) + "/" + domain.ClassNameKey(name)
		if classKeys[key] {
			return fmt.Errorf("classes[%d]: duplicate class %q in %s", i, name, c.Department)
		}
		classKeys[key] = true
	}
	return nil
}

// StudentSeq extracts the numeric suffix of a student id like "ST007"
func StudentSeq(id string) (int, error) {
	m := studentIDPattern.FindStringSubmatch(id)
	if m == nil {
		return 0, fmt.Errorf("invalid student id %q, expected ST followed by at least three digits", id)
	}
	seq, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("invalid student id %q: %w", id, err)
	}
	return seq, nil
}

// Loader writes a roster into the store
type Loader struct {
	studentRepo *repository.StudentRepository
	classRepo   *repository.ClassRepository
	loc         *time.Location
	now         func() time.Time
	logger      *zap.Logger
}

func NewLoader(
	studentRepo *repository.StudentRepository,
	classRepo *repository.ClassRepository,
	loc *time.Location,
	now func() time.Time,
	logger *zap.Logger,
) *Loader {
	return &Loader{
		studentRepo: studentRepo,
		classRepo:   classRepo,
		loc:         loc,
		now:         now,
		logger:      logger,
	}
}

// Apply inserts the students and classes that are not in the store yet.
// Applying the same roster twice inserts nothing the second time.
func (l *Loader) Apply(ctx context.Context, roster *Roster) (*Result, error) {
	result := &Result{}

	for _, entry := range roster.Students {
		_, err := l.studentRepo.GetByID(ctx, entry.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to look up student %s: %w", entry.ID, err)
		}

		seq, err := StudentSeq(entry.ID)
		if err != nil {
			return nil, err
		}

		added := l.now()
		if entry.DateAdded != "" {
			added, err = util.ParseDay(entry.DateAdded, l.loc)
			if err != nil {
				return nil, err
			}
		}

		student := &domain.Student{
			ID:         entry.ID,
			Seq:        seq,
			Name:       strings.TrimSpace(entry.Name),
			Department: entry.Department,
			DateAdded:  added.UTC(),
		}
		if err := l.studentRepo.Create(ctx, student); err != nil {
			return nil, fmt.Errorf("failed to seed student %s: %w", entry.ID, err)
		}
		result.Students++
	}

	for _, entry := range roster.Classes {
		name := strings.TrimSpace(entry.Name)
		nameKey := domain.ClassNameKey(name)

		exists, err := l.classRepo.ExistsByName(ctx, entry.Department, nameKey)
		if err != nil {
			return nil, fmt.Errorf("failed to look up class %q: %w", name, err)
		}
		if exists {
			continue
		}

		class := &domain.Class{
			ID:         uuid.New().String(),
			Name:       name,
			NameKey:    nameKey,
			Department: entry.Department,
			CreatedAt:  l.now().UTC(),
		}
		if err := l.classRepo.Create(ctx, class); err != nil {
			return nil, fmt.Errorf("failed to seed class %q: %w", name, err)
		}
		result.Classes++
	}

	l.logger.Info("roster seeded",
		zap.Int("students", result.Students),
		zap.Int("classes", result.Classes),
	)
	return result, nil
}

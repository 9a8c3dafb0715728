package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-roster-ledger/internal/models"
	appErrors "github.com/noah-isme/sma-roster-ledger/pkg/errors"
)

type snapshotStore interface {
	Load(ctx context.Context) ([]*models.Class, bool, error)
	Save(ctx context.Context, classes []*models.Class) (int, error)
}

// RosterService is the single owner of the in-memory roster. Every mutation
// holds the lock until the full snapshot has been flushed, so mutations run
// one at a time and each is followed by a complete write.
type RosterService struct {
	mu      sync.Mutex
	classes []*models.Class
	index   map[string]*models.Class

	store     snapshotStore
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	newID     func() string
}

// ClassRequest names a class.
type ClassRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// AddStudentRequest adds one student by name.
type AddStudentRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// NewRosterService constructs the service with an empty roster. Call Load to
// read the stored state.
func NewRosterService(store snapshotStore, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *RosterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{
		classes:   make([]*models.Class, 0),
		index:     make(map[string]*models.Class),
		store:     store,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		newID:     uuid.NewString,
	}
}

// Load replaces the in-memory roster with the stored one. A stored shape that
// needed migration is written back in canonical form.
func (s *RosterService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	classes, migrated, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	s.replace(classes)
	s.logger.Info("roster loaded", zap.Int("classes", len(s.classes)), zap.Int("students", s.studentCount()))

	if migrated {
		if err := s.flush(ctx); err != nil {
			s.logger.Warn("failed to write migrated roster", zap.Error(err))
		}
	}
	return nil
}

// ListClasses returns class names in creation order with their student counts.
func (s *RosterService) ListClasses(ctx context.Context) []models.ClassSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.ClassSummary, len(s.classes))
	for i, class := range s.classes {
		out[i] = models.ClassSummary{Name: class.Name, StudentCount: len(class.Students)}
	}
	return out
}

// CreateClass adds an empty class.
func (s *RosterService) CreateClass(ctx context.Context, req ClassRequest) (*models.ClassSummary, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class name")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[req.Name]; exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateClass, "class "+req.Name+" already exists")
	}
	class := models.NewClass(req.Name)
	s.classes = append(s.classes, class)
	s.index[class.Name] = class

	if err := s.flush(ctx); err != nil {
		return nil, err
	}
	s.logger.Info("class created", zap.String("class", class.Name))
	return &models.ClassSummary{Name: class.Name}, nil
}

// DeleteClass removes a class with all of its students and their ledgers. The
// name is trimmed the same way CreateClass trims it.
func (s *RosterService) DeleteClass(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.class(name); err != nil {
		return err
	}
	for i, class := range s.classes {
		if class.Name == name {
			s.classes = append(s.classes[:i], s.classes[i+1:]...)
			break
		}
	}
	delete(s.index, name)

	if err := s.flush(ctx); err != nil {
		return err
	}
	s.logger.Info("class deleted", zap.String("class", name))
	return nil
}

// Reset deletes every class.
func (s *RosterService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.replace(nil)
	if err := s.flush(ctx); err != nil {
		return err
	}
	s.logger.Info("roster reset")
	return nil
}

// Students lists a class in roster order. When date is set every summary also
// carries the effective absence for that date.
func (s *RosterService) Students(ctx context.Context, className, date string) ([]models.StudentSummary, error) {
	if date != "" {
		if err := validateDate(s.validator, date); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	class, err := s.class(className)
	if err != nil {
		return nil, err
	}
	out := make([]models.StudentSummary, len(class.Students))
	for i, student := range class.Students {
		out[i] = student.Summary(date)
	}
	return out, nil
}

// StudentNames returns the names of a class in roster order.
func (s *RosterService) StudentNames(ctx context.Context, className string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	class, err := s.class(className)
	if err != nil {
		return nil, err
	}
	return class.Names(), nil
}

// AddStudent appends a student with a score of zero and empty ledgers. The
// name is stored cleaned and must not match an existing one by NameKey.
func (s *RosterService) AddStudent(ctx context.Context, className string, req AddStudentRequest) (*models.StudentSummary, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student name")
	}
	name := CleanName(req.Name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student name has no letters or digits")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	class, err := s.class(className)
	if err != nil {
		return nil, err
	}
	student, err := s.appendStudent(class, name)
	if err != nil {
		return nil, err
	}
	if err := s.flush(ctx); err != nil {
		return nil, err
	}
	summary := student.Summary("")
	return &summary, nil
}

// RemoveStudent deletes a student and its ledgers from the class.
func (s *RosterService) RemoveStudent(ctx context.Context, className, studentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	class, err := s.class(className)
	if err != nil {
		return err
	}
	_, idx := class.Find(studentID)
	if idx < 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	class.Remove(idx)

	return s.flush(ctx)
}

// ImportBatch adds each name independently and flushes once. Duplicates are
// skipped without aborting the rest of the batch. The returned names are the
// ones actually added, in order.
func (s *RosterService) ImportBatch(ctx context.Context, className string, names []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	class, err := s.class(className)
	if err != nil {
		return nil, err
	}
	added := make([]string, 0, len(names))
	for _, name := range names {
		student, err := s.appendStudent(class, CleanName(name))
		if err != nil {
			continue
		}
		added = append(added, student.Name)
	}
	if len(added) == 0 {
		return added, nil
	}
	if err := s.flush(ctx); err != nil {
		return added, err
	}
	return added, nil
}

// StudentDetail returns both ledgers of one student.
func (s *RosterService) StudentDetail(ctx context.Context, className, studentID string) (*models.StudentDetail, error) {
	var detail models.StudentDetail
	err := s.viewStudent(className, studentID, func(student *models.Student) error {
		detail = student.Detail(className)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// viewStudent runs fn under the lock without flushing.
func (s *RosterService) viewStudent(className, studentID string, fn func(*models.Student) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	student, err := s.student(className, studentID)
	if err != nil {
		return err
	}
	return fn(student)
}

// viewClass runs fn under the lock without flushing.
func (s *RosterService) viewClass(className string, fn func(*models.Class) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	class, err := s.class(className)
	if err != nil {
		return err
	}
	return fn(class)
}

// mutateStudent runs fn under the lock and flushes the roster afterwards.
func (s *RosterService) mutateStudent(ctx context.Context, className, studentID string, fn func(*models.Student) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	student, err := s.student(className, studentID)
	if err != nil {
		return err
	}
	if err := fn(student); err != nil {
		return err
	}
	return s.flush(ctx)
}

func (s *RosterService) appendStudent(class *models.Class, name string) (*models.Student, error) {
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student name is empty")
	}
	key := NameKey(name)
	for _, existing := range class.Students {
		if NameKey(existing.Name) == key {
			return nil, appErrors.Clone(appErrors.ErrDuplicateStudent, "student "+name+" already exists in "+class.Name)
		}
	}
	student := models.NewStudent(s.newID(), name)
	class.Students = append(class.Students, student)
	return student, nil
}

func (s *RosterService) class(name string) (*models.Class, error) {
	class, ok := s.index[name]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	return class, nil
}

func (s *RosterService) student(className, studentID string) (*models.Student, error) {
	class, err := s.class(className)
	if err != nil {
		return nil, err
	}
	student, _ := class.Find(studentID)
	if student == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return student, nil
}

func (s *RosterService) replace(classes []*models.Class) {
	s.classes = make([]*models.Class, 0, len(classes))
	s.index = make(map[string]*models.Class, len(classes))
	for _, class := range classes {
		s.classes = append(s.classes, class)
		s.index[class.Name] = class
	}
}

func (s *RosterService) studentCount() int {
	total := 0
	for _, class := range s.classes {
		total += len(class.Students)
	}
	return total
}

// flush writes the whole roster. On failure the in-memory state is kept and
// the next successful flush persists it.
func (s *RosterService) flush(ctx context.Context) error {
	start := time.Now()
	size, err := s.store.Save(ctx, s.classes)
	s.metrics.ObserveFlush(size, s.studentCount(), time.Since(start), err)
	if err != nil {
		s.logger.Error("roster flush failed", zap.Error(err))
		if errors.Is(err, appErrors.ErrPersistence) {
			return err
		}
		return appErrors.WrapAs(err, appErrors.ErrPersistence, "")
	}
	return nil
}

package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/coursehub/coursehub/internal/apperror"
	"github.com/coursehub/coursehub/internal/model"
)

// LessonStore is the persistence surface the lesson service depends on.
type LessonStore interface {
	GetByID(ctx context.Context, id int64) (*model.Lesson, error)
	ListByCourseID(ctx context.Context, courseID int64) ([]*model.Lesson, error)
	Create(ctx context.Context, lesson *model.Lesson) error
	Update(ctx context.Context, lesson *model.Lesson) (int64, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

// LessonProvider is the lesson surface the HTTP layer consumes.
type LessonProvider interface {
	GetLesson(ctx context.Context, id int64) (*model.Lesson, error)
	CreateLesson(ctx context.Context, courseID int64, title string) (*model.Lesson, error)
	GetLessonForEditing(ctx context.Context, id int64) (*model.Lesson, error)
	EditLesson(ctx context.Context, lesson *model.Lesson) (*model.Lesson, error)
	DeleteLesson(ctx context.Context, id int64) error
}

type LessonService struct {
	lessons LessonStore
	courses CourseStore
	logger  *zap.Logger
}

func NewLessonService(lessons LessonStore, courses CourseStore, logger *zap.Logger) *LessonService {
	return &LessonService{lessons: lessons, courses: courses, logger: logger}
}

func (s *LessonService) GetLesson(ctx context.Context, id int64) (*model.Lesson, error) {
	return s.lessons.GetByID(ctx, id)
}

// CreateLesson appends a lesson to the course at the default sort position.
// The course must exist and not be deleted.
func (s *LessonService) CreateLesson(ctx context.Context, courseID int64, title string) (*model.Lesson, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", apperror.ErrInvalidInput)
	}

	exists, err := s.courses.Exists(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: course %d", apperror.ErrNotFound, courseID)
	}

	lesson := &model.Lesson{CourseID: courseID, Title: title}
	if err := s.lessons.Create(ctx, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

// GetLessonForEditing loads the lesson with the row version the editor will
// thread back through EditLesson.
func (s *LessonService) GetLessonForEditing(ctx context.Context, id int64) (*model.Lesson, error) {
	return s.lessons.GetByID(ctx, id)
}

// EditLesson applies an edit guarded by the row version the editor read. A
// zero affected count is disambiguated into not-found vs concurrency
// conflict by re-checking existence.
func (s *LessonService) EditLesson(ctx context.Context, lesson *model.Lesson) (*model.Lesson, error) {
	if strings.TrimSpace(lesson.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", apperror.ErrInvalidInput)
	}
	if lesson.Duration < 0 {
		return nil, fmt.Errorf("%w: duration cannot be negative", apperror.ErrInvalidInput)
	}
	if lesson.Order == 0 {
		lesson.Order = model.DefaultLessonOrder
	}

	affected, err := s.lessons.Update(ctx, lesson)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		exists, err := s.lessons.Exists(ctx, lesson.ID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("%w: lesson %d", apperror.ErrNotFound, lesson.ID)
		}
		return nil, fmt.Errorf("%w: lesson %d", apperror.ErrOptimisticConcurrency, lesson.ID)
	}

	return s.lessons.GetByID(ctx, lesson.ID)
}

// DeleteLesson removes the lesson permanently. Lessons are not soft-deleted.
func (s *LessonService) DeleteLesson(ctx context.Context, id int64) error {
	affected, err := s.lessons.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: lesson %d", apperror.ErrNotFound, id)
	}

	s.logger.Info("Lesson deleted", zap.Int64("lesson_id", id))
	return nil
}

var _ LessonProvider = (*LessonService)(nil)

package service

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/coursehub/coursehub/internal/model"
)

// CachedLessonService caches lesson reads and evicts on every write.
type CachedLessonService struct {
	inner LessonProvider
	cache *gocache.Cache
}

func NewCachedLessonService(inner LessonProvider, ttl time.Duration) *CachedLessonService {
	return &CachedLessonService{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func lessonKey(id int64) string { return fmt.Sprintf("Lesson%d", id) }

func (s *CachedLessonService) GetLesson(ctx context.Context, id int64) (*model.Lesson, error) {
	key := lessonKey(id)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*model.Lesson), nil
	}

	lesson, err := s.inner.GetLesson(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, lesson)
	return lesson, nil
}

func (s *CachedLessonService) CreateLesson(ctx context.Context, courseID int64, title string) (*model.Lesson, error) {
	return s.inner.CreateLesson(ctx, courseID, title)
}

// GetLessonForEditing reads through so the editor always sees the current
// row version.
func (s *CachedLessonService) GetLessonForEditing(ctx context.Context, id int64) (*model.Lesson, error) {
	return s.inner.GetLessonForEditing(ctx, id)
}

func (s *CachedLessonService) EditLesson(ctx context.Context, lesson *model.Lesson) (*model.Lesson, error) {
	updated, err := s.inner.EditLesson(ctx, lesson)
	if err != nil {
		return nil, err
	}
	s.cache.Delete(lessonKey(lesson.ID))
	return updated, nil
}

func (s *CachedLessonService) DeleteLesson(ctx context.Context, id int64) error {
	if err := s.inner.DeleteLesson(ctx, id); err != nil {
		return err
	}
	s.cache.Delete(lessonKey(id))
	return nil
}

var _ LessonProvider = (*CachedLessonService)(nil)

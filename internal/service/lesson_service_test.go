package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coursehub/coursehub/internal/apperror"
	"github.com/coursehub/coursehub/internal/model"
)

func newTestLessonService(lessons *fakeLessonStore, courses *fakeCourseStore) *LessonService {
	return NewLessonService(lessons, courses, zap.NewNop())
}

func TestCreateLessonRequiresTitle(t *testing.T) {
	svc := newTestLessonService(&fakeLessonStore{}, &fakeCourseStore{})

	_, err := svc.CreateLesson(context.Background(), 1, "   ")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestCreateLessonRequiresLiveCourse(t *testing.T) {
	svc := newTestLessonService(&fakeLessonStore{}, &fakeCourseStore{})

	_, err := svc.CreateLesson(context.Background(), 42, "Hello world")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateLessonDefaultsOrder(t *testing.T) {
	courses := &fakeCourseStore{courses: map[int64]*model.Course{1: {ID: 1}}}
	svc := newTestLessonService(&fakeLessonStore{}, courses)

	lesson, err := svc.CreateLesson(context.Background(), 1, "Hello world")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultLessonOrder, lesson.Order)
}

func TestEditLessonConflictWhenRowStillExists(t *testing.T) {
	lessons := &fakeLessonStore{lessons: map[int64]*model.Lesson{
		10: {ID: 10, CourseID: 1, Title: "Hello world", RowVersion: 2},
	}}
	svc := newTestLessonService(lessons, &fakeCourseStore{})

	_, err := svc.EditLesson(context.Background(), &model.Lesson{ID: 10, Title: "Hello", RowVersion: 1})
	assert.ErrorIs(t, err, apperror.ErrOptimisticConcurrency)
}

func TestEditLessonNotFoundWhenRowIsGone(t *testing.T) {
	svc := newTestLessonService(&fakeLessonStore{}, &fakeCourseStore{})

	_, err := svc.EditLesson(context.Background(), &model.Lesson{ID: 99, Title: "Hello", RowVersion: 1})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestEditLessonRejectsNegativeDuration(t *testing.T) {
	svc := newTestLessonService(&fakeLessonStore{}, &fakeCourseStore{})

	_, err := svc.EditLesson(context.Background(), &model.Lesson{ID: 10, Title: "Hello", Duration: -5, RowVersion: 1})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestEditLessonBumpsRowVersion(t *testing.T) {
	lessons := &fakeLessonStore{lessons: map[int64]*model.Lesson{
		10: {ID: 10, CourseID: 1, Title: "Hello world", RowVersion: 1},
	}}
	svc := newTestLessonService(lessons, &fakeCourseStore{})

	updated, err := svc.EditLesson(context.Background(), &model.Lesson{ID: 10, Title: "Hello again", Duration: 15, RowVersion: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.RowVersion)
	assert.Equal(t, "Hello again", updated.Title)
}

func TestDeleteLessonNotFound(t *testing.T) {
	svc := newTestLessonService(&fakeLessonStore{}, &fakeCourseStore{})

	err := svc.DeleteLesson(context.Background(), 99)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

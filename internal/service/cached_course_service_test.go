package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursehub/coursehub/internal/model"
)

func newCachedService(courses *fakeCourseStore, lessons *fakeLessonStore) *CachedCourseService {
	inner := newTestService(courses, lessons, &fakeSubscriptionStore{voteAffected: 1}, &fakeCoverStore{}, &fakeGateway{}, &fakeMailer{})
	return NewCachedCourseService(inner, testCoursesConfig(), time.Minute)
}

func TestCachedListServesRepeatsFromCache(t *testing.T) {
	courses := &fakeCourseStore{}
	svc := newCachedService(courses, &fakeLessonStore{})

	_, err := svc.ListCourses(context.Background(), "", 1, "Rating", false)
	require.NoError(t, err)
	_, err = svc.ListCourses(context.Background(), "", 1, "Rating", false)
	require.NoError(t, err)

	assert.Equal(t, 1, courses.listCalls)
}

func TestCachedListNormalizesKeyBeforeCaching(t *testing.T) {
	courses := &fakeCourseStore{}
	svc := newCachedService(courses, &fakeLessonStore{})

	// All of these normalize to the default Rating/descending entry.
	_, _ = svc.ListCourses(context.Background(), "", 1, "Rating", false)
	_, _ = svc.ListCourses(context.Background(), "", 1, "rating", false)
	_, _ = svc.ListCourses(context.Background(), "", 1, "garbage", false)
	_, _ = svc.ListCourses(context.Background(), "", 1, "also-garbage", true)

	assert.Equal(t, 1, courses.listCalls, "normalized inputs must share one entry")
	assert.Equal(t, 1, svc.cache.ItemCount(), "unknown sort keys must not grow the cache")
}

func TestCachedListKeySpaceBoundedByAllowList(t *testing.T) {
	courses := &fakeCourseStore{}
	svc := newCachedService(courses, &fakeLessonStore{})

	for i := 0; i < 50; i++ {
		_, _ = svc.ListCourses(context.Background(), "", 1, fmt.Sprintf("junk-%d", i), false)
	}

	assert.Equal(t, 1, courses.listCalls)
	assert.Equal(t, 1, svc.cache.ItemCount())
}

func TestCachedListKeysIncludeOrder(t *testing.T) {
	courses := &fakeCourseStore{}
	svc := newCachedService(courses, &fakeLessonStore{})

	_, _ = svc.ListCourses(context.Background(), "", 1, "Rating", false)
	_, _ = svc.ListCourses(context.Background(), "", 1, "Title", true)

	assert.Equal(t, 2, courses.listCalls, "different sort settings must not share an entry")
}

func TestCachedListBypassesSearches(t *testing.T) {
	courses := &fakeCourseStore{}
	svc := newCachedService(courses, &fakeLessonStore{})

	_, _ = svc.ListCourses(context.Background(), "go", 1, "Rating", false)
	_, _ = svc.ListCourses(context.Background(), "go", 1, "Rating", false)

	assert.Equal(t, 2, courses.listCalls, "searches always hit the store")
}

func TestCachedListBypassesDeepPages(t *testing.T) {
	courses := &fakeCourseStore{}
	svc := newCachedService(courses, &fakeLessonStore{})

	_, _ = svc.ListCourses(context.Background(), "", maxCachedPage+1, "Rating", false)
	_, _ = svc.ListCourses(context.Background(), "", maxCachedPage+1, "Rating", false)

	assert.Equal(t, 2, courses.listCalls, "deep pages always hit the store")
}

func TestCachedGetCourseEvictedByEdit(t *testing.T) {
	courses := &fakeCourseStore{
		courses:        map[int64]*model.Course{1: {ID: 1, Title: "Go Basics"}},
		updateAffected: 1,
	}
	svc := newCachedService(courses, &fakeLessonStore{})

	_, err := svc.GetCourse(context.Background(), 1)
	require.NoError(t, err)
	getCallsBefore := courses.getCalls

	_, err = svc.GetCourse(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, getCallsBefore, courses.getCalls, "second read should come from the cache")

	_, err = svc.EditCourse(context.Background(), validEdit(1), nil)
	require.NoError(t, err)
	callsAfterEdit := courses.getCalls

	_, err = svc.GetCourse(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, callsAfterEdit+1, courses.getCalls, "edit must evict the cached course")
}

func TestCachedGetCourseEvictedByDelete(t *testing.T) {
	courses := &fakeCourseStore{courses: map[int64]*model.Course{1: {ID: 1, Title: "Go Basics"}}}
	svc := newCachedService(courses, &fakeLessonStore{})

	_, err := svc.GetCourse(context.Background(), 1)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCourse(context.Background(), 1))

	_, err = svc.GetCourse(context.Background(), 1)
	assert.Error(t, err, "the deleted course must not be served from the cache")
}

func TestCachedAuthorCountEvictedByCreate(t *testing.T) {
	courses := &fakeCourseStore{countByAuthor: 2}
	svc := newCachedService(courses, &fakeLessonStore{})

	_, err := svc.GetCourseCountByAuthorID(context.Background(), 7)
	require.NoError(t, err)
	_, err = svc.GetCourseCountByAuthorID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, courses.countCalls)

	_, err = svc.CreateCourse(context.Background(), teacherIdentity(), "Go Basics")
	require.NoError(t, err)
	callsAfterCreate := courses.countCalls

	_, err = svc.GetCourseCountByAuthorID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, callsAfterCreate+1, courses.countCalls, "creation must evict the author's count")
}

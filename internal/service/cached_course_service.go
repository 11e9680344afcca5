package service

import (
	"context"
	"fmt"
	"io"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/coursehub/coursehub/internal/config"
	"github.com/coursehub/coursehub/internal/model"
)

// maxCachedPage bounds how many catalog pages are worth caching. Deep pages
// are rarely revisited, so caching them only evicts hot entries.
const maxCachedPage = 5

// CachedCourseService is a read-through cache in front of a CourseProvider.
// Entries expire on an absolute TTL; writes evict the entries they stale.
type CachedCourseService struct {
	inner CourseProvider
	cache *gocache.Cache
	cfg   config.CoursesConfig
}

func NewCachedCourseService(inner CourseProvider, cfg config.CoursesConfig, ttl time.Duration) *CachedCourseService {
	return &CachedCourseService{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
		cfg:   cfg,
	}
}

func courseKey(id int64) string       { return fmt.Sprintf("Course%d", id) }
func authorKey(courseID int64) string { return fmt.Sprintf("CourseAuthorId%d", courseID) }
func authorCountKey(authorID int64) string {
	return fmt.Sprintf("CourseCountByAuthorId%d", authorID)
}

// ListCourses caches only the shallow unfiltered pages. Searches and deep
// pages always hit the store. The sort input is normalized before keying so
// the key space stays bounded by the allow list; unknown keys all land on
// the default entry.
func (s *CachedCourseService) ListCourses(ctx context.Context, search string, page int, orderBy string, ascending bool) (*model.CourseList, error) {
	orderBy, ascending = s.cfg.NormalizeOrder(orderBy, ascending)
	if search != "" || page > maxCachedPage {
		return s.inner.ListCourses(ctx, search, page, orderBy, ascending)
	}

	key := fmt.Sprintf("Courses%d-%s-%t", page, orderBy, ascending)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*model.CourseList), nil
	}

	list, err := s.inner.ListCourses(ctx, search, page, orderBy, ascending)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, list)
	return list, nil
}

func (s *CachedCourseService) GetCourse(ctx context.Context, id int64) (*model.CourseDetail, error) {
	key := courseKey(id)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*model.CourseDetail), nil
	}

	detail, err := s.inner.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, detail)
	return detail, nil
}

func (s *CachedCourseService) GetMostRecentCourses(ctx context.Context) ([]*model.Course, error) {
	const key = "MostRecentCourses"
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*model.Course), nil
	}

	courses, err := s.inner.GetMostRecentCourses(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, courses)
	return courses, nil
}

func (s *CachedCourseService) GetBestRatingCourses(ctx context.Context) ([]*model.Course, error) {
	const key = "BestRatingCourses"
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*model.Course), nil
	}

	courses, err := s.inner.GetBestRatingCourses(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, courses)
	return courses, nil
}

// CreateCourse invalidates the author's course count so the limit check sees
// the new course immediately.
func (s *CachedCourseService) CreateCourse(ctx context.Context, identity model.Identity, title string) (*model.Course, error) {
	course, err := s.inner.CreateCourse(ctx, identity, title)
	if err != nil {
		return nil, err
	}
	s.cache.Delete(authorCountKey(identity.UserID))
	return course, nil
}

// GetCourseForEditing always reads through. Serving a stale row version here
// would guarantee a spurious concurrency conflict on save.
func (s *CachedCourseService) GetCourseForEditing(ctx context.Context, id int64) (*model.CourseEdit, error) {
	return s.inner.GetCourseForEditing(ctx, id)
}

func (s *CachedCourseService) EditCourse(ctx context.Context, edit model.CourseEdit, cover io.Reader) (*model.Course, error) {
	course, err := s.inner.EditCourse(ctx, edit, cover)
	if err != nil {
		return nil, err
	}
	s.cache.Delete(courseKey(edit.ID))
	return course, nil
}

func (s *CachedCourseService) DeleteCourse(ctx context.Context, id int64) error {
	if err := s.inner.DeleteCourse(ctx, id); err != nil {
		return err
	}
	s.cache.Delete(courseKey(id))
	return nil
}

func (s *CachedCourseService) IsTitleAvailable(ctx context.Context, title string, excludeID int64) (bool, error) {
	return s.inner.IsTitleAvailable(ctx, title, excludeID)
}

func (s *CachedCourseService) GetCourseAuthorID(ctx context.Context, courseID int64) (int64, error) {
	key := authorKey(courseID)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(int64), nil
	}

	authorID, err := s.inner.GetCourseAuthorID(ctx, courseID)
	if err != nil {
		return 0, err
	}
	s.cache.SetDefault(key, authorID)
	return authorID, nil
}

func (s *CachedCourseService) GetCourseCountByAuthorID(ctx context.Context, authorID int64) (int, error) {
	key := authorCountKey(authorID)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(int), nil
	}

	count, err := s.inner.GetCourseCountByAuthorID(ctx, authorID)
	if err != nil {
		return 0, err
	}
	s.cache.SetDefault(key, count)
	return count, nil
}

func (s *CachedCourseService) SendQuestionToCourseAuthor(ctx context.Context, identity model.Identity, courseID int64, question string) error {
	return s.inner.SendQuestionToCourseAuthor(ctx, identity, courseID, question)
}

func (s *CachedCourseService) Pay(ctx context.Context, courseID, userID int64, returnURL, cancelURL string) (string, error) {
	return s.inner.Pay(ctx, courseID, userID, returnURL, cancelURL)
}

func (s *CachedCourseService) CapturePayment(ctx context.Context, orderToken string) (*model.Subscription, error) {
	return s.inner.CapturePayment(ctx, orderToken)
}

func (s *CachedCourseService) SubscribeCourse(ctx context.Context, sub *model.Subscription) error {
	return s.inner.SubscribeCourse(ctx, sub)
}

func (s *CachedCourseService) GetSubscription(ctx context.Context, userID, courseID int64) (*model.Subscription, error) {
	return s.inner.GetSubscription(ctx, userID, courseID)
}

func (s *CachedCourseService) IsCourseSubscribed(ctx context.Context, userID, courseID int64) (bool, error) {
	return s.inner.IsCourseSubscribed(ctx, userID, courseID)
}

// VoteCourse evicts the course so the detail page reflects the new rating as
// soon as the background recompute lands.
func (s *CachedCourseService) VoteCourse(ctx context.Context, userID, courseID int64, vote int) error {
	if err := s.inner.VoteCourse(ctx, userID, courseID, vote); err != nil {
		return err
	}
	s.cache.Delete(courseKey(courseID))
	return nil
}

var _ CourseProvider = (*CachedCourseService)(nil)

package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/coursehub/coursehub/internal/apperror"
	"github.com/coursehub/coursehub/internal/client/email"
	"github.com/coursehub/coursehub/internal/client/paypal"
	"github.com/coursehub/coursehub/internal/config"
	"github.com/coursehub/coursehub/internal/model"
	"github.com/coursehub/coursehub/internal/repository"
)

// CourseStore is the persistence surface the course service depends on.
type CourseStore interface {
	List(ctx context.Context, search string, sort repository.SortColumn, ascending bool, limit, offset int) ([]*model.Course, int, error)
	GetByID(ctx context.Context, id int64) (*model.Course, error)
	Create(ctx context.Context, title, author string, authorID int64) (int64, error)
	Update(ctx context.Context, edit model.CourseEdit, imagePath *string) (int64, error)
	Exists(ctx context.Context, id int64) (bool, error)
	SoftDelete(ctx context.Context, id int64) (int64, error)
	AuthorID(ctx context.Context, courseID int64) (int64, error)
	CountByAuthor(ctx context.Context, authorID int64) (int, error)
	TitleAvailable(ctx context.Context, title string, excludeID int64) (bool, error)
}

// SubscriptionStore persists payments and votes.
type SubscriptionStore interface {
	Upsert(ctx context.Context, sub *model.Subscription) error
	Get(ctx context.Context, userID, courseID int64) (*model.Subscription, error)
	UpdateVote(ctx context.Context, userID, courseID int64, vote int) (int64, error)
	IsSubscribed(ctx context.Context, userID, courseID int64) (bool, error)
}

// CoverStore persists uploaded course covers.
type CoverStore interface {
	Persist(ctx context.Context, courseID int64, upload io.Reader) (string, error)
}

// PaymentGateway is the checkout provider.
type PaymentGateway interface {
	CreateOrderURL(ctx context.Context, order paypal.Order) (string, error)
	CaptureOrder(ctx context.Context, orderToken string) (*paypal.Capture, error)
}

// CourseProvider is the full course surface the HTTP layer consumes. The
// caching decorator implements the same interface.
type CourseProvider interface {
	ListCourses(ctx context.Context, search string, page int, orderBy string, ascending bool) (*model.CourseList, error)
	GetCourse(ctx context.Context, id int64) (*model.CourseDetail, error)
	GetMostRecentCourses(ctx context.Context) ([]*model.Course, error)
	GetBestRatingCourses(ctx context.Context) ([]*model.Course, error)
	CreateCourse(ctx context.Context, identity model.Identity, title string) (*model.Course, error)
	GetCourseForEditing(ctx context.Context, id int64) (*model.CourseEdit, error)
	EditCourse(ctx context.Context, edit model.CourseEdit, cover io.Reader) (*model.Course, error)
	DeleteCourse(ctx context.Context, id int64) error
	IsTitleAvailable(ctx context.Context, title string, excludeID int64) (bool, error)
	GetCourseAuthorID(ctx context.Context, courseID int64) (int64, error)
	GetCourseCountByAuthorID(ctx context.Context, authorID int64) (int, error)
	SendQuestionToCourseAuthor(ctx context.Context, identity model.Identity, courseID int64, question string) error
	Pay(ctx context.Context, courseID, userID int64, returnURL, cancelURL string) (string, error)
	CapturePayment(ctx context.Context, orderToken string) (*model.Subscription, error)
	SubscribeCourse(ctx context.Context, sub *model.Subscription) error
	GetSubscription(ctx context.Context, userID, courseID int64) (*model.Subscription, error)
	IsCourseSubscribed(ctx context.Context, userID, courseID int64) (bool, error)
	VoteCourse(ctx context.Context, userID, courseID int64, vote int) error
}

// CourseService implements the course catalog, authoring, payment and vote
// operations.
type CourseService struct {
	courses   CourseStore
	lessons   LessonStore
	subs      SubscriptionStore
	covers    CoverStore
	gateway   PaymentGateway
	mailer    email.Client
	sanitizer *bluemonday.Policy
	cfg       config.CoursesConfig
	logger    *zap.Logger
}

func NewCourseService(
	courses CourseStore,
	lessons LessonStore,
	subs SubscriptionStore,
	covers CoverStore,
	gateway PaymentGateway,
	mailer email.Client,
	cfg config.CoursesConfig,
	logger *zap.Logger,
) *CourseService {
	return &CourseService{
		courses:   courses,
		lessons:   lessons,
		subs:      subs,
		covers:    covers,
		gateway:   gateway,
		mailer:    mailer,
		sanitizer: bluemonday.StrictPolicy(),
		cfg:       cfg,
		logger:    logger,
	}
}

// ListCourses returns one catalog page. Out-of-range paging input is clamped
// and an order key outside the allow list falls back to the configured
// default, so the method never fails on bad query strings.
func (s *CourseService) ListCourses(ctx context.Context, search string, page int, orderBy string, ascending bool) (*model.CourseList, error) {
	if page < 1 {
		page = 1
	}
	orderBy, ascending = s.cfg.NormalizeOrder(orderBy, ascending)

	limit := s.cfg.PerPage
	offset := (page - 1) * limit

	courses, total, err := s.courses.List(ctx, search, repository.SortColumn(orderBy), ascending, limit, offset)
	if err != nil {
		return nil, err
	}
	return &model.CourseList{Results: courses, TotalCount: total}, nil
}

// GetCourse returns the course with its lessons in display order.
func (s *CourseService) GetCourse(ctx context.Context, id int64) (*model.CourseDetail, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	lessons, err := s.lessons.ListByCourseID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.CourseDetail{Course: *course, Lessons: lessons}, nil
}

// GetMostRecentCourses returns the newest courses for the landing page.
func (s *CourseService) GetMostRecentCourses(ctx context.Context) ([]*model.Course, error) {
	courses, _, err := s.courses.List(ctx, "", repository.SortByID, false, s.cfg.InHome, 0)
	return courses, err
}

// GetBestRatingCourses returns the top-rated courses for the landing page.
func (s *CourseService) GetBestRatingCourses(ctx context.Context) ([]*model.Course, error) {
	courses, _, err := s.courses.List(ctx, "", repository.SortByRating, false, s.cfg.InHome, 0)
	return courses, err
}

// CreateCourse creates a draft course owned by the caller. The caller's
// claims must be complete; a duplicate title surfaces as
// apperror.ErrTitleUnavailable. When the author goes over the course limit a
// notification email is sent, but the creation itself still succeeds.
func (s *CourseService) CreateCourse(ctx context.Context, identity model.Identity, title string) (*model.Course, error) {
	if !identity.Complete() {
		return nil, fmt.Errorf("%w: incomplete claims for course creation", apperror.ErrUnknownUser)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", apperror.ErrInvalidInput)
	}

	id, err := s.courses.Create(ctx, title, identity.FullName, identity.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrConstraintViolation) {
			return nil, fmt.Errorf("%w: %q", apperror.ErrTitleUnavailable, title)
		}
		return nil, err
	}

	s.notifyCourseLimit(ctx, identity)

	return s.courses.GetByID(ctx, id)
}

// notifyCourseLimit emails the staff when an author exceeds the per-author
// course limit. Failures are logged, never propagated.
func (s *CourseService) notifyCourseLimit(ctx context.Context, identity model.Identity) {
	if s.cfg.NotificationEmail == "" {
		return
	}
	count, err := s.courses.CountByAuthor(ctx, identity.UserID)
	if err != nil {
		s.logger.Warn("Course limit check failed",
			zap.Int64("author_id", identity.UserID),
			zap.Error(err))
		return
	}
	if count <= s.cfg.MaxPerAuthor {
		return
	}

	subject := "Course limit exceeded"
	body := fmt.Sprintf("The author %s (id %d) now has %d courses, above the limit of %d.",
		html.EscapeString(identity.FullName), identity.UserID, count, s.cfg.MaxPerAuthor)
	if err := s.mailer.Send(ctx, s.cfg.NotificationEmail, "", subject, body); err != nil {
		s.logger.Warn("Course limit notification failed",
			zap.Int64("author_id", identity.UserID),
			zap.Error(err))
		return
	}
	s.logger.Info("Course limit notification sent",
		zap.Int64("author_id", identity.UserID),
		zap.Int("count", count))
}

// GetCourseForEditing loads the editable projection, row version included.
func (s *CourseService) GetCourseForEditing(ctx context.Context, id int64) (*model.CourseEdit, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.CourseEdit{
		ID:           course.ID,
		Title:        course.Title,
		Description:  course.Description,
		ImagePath:    course.ImagePath,
		Email:        course.Email,
		FullPrice:    course.FullPrice,
		CurrentPrice: course.CurrentPrice,
		RowVersion:   course.RowVersion,
		Rating:       course.Rating,
	}, nil
}

// EditCourse applies an edit guarded by the row version the editor read.
// cover, when non-nil, replaces the course image before the update. A zero
// affected count is disambiguated into not-found vs concurrency conflict by
// re-checking existence.
func (s *CourseService) EditCourse(ctx context.Context, edit model.CourseEdit, cover io.Reader) (*model.Course, error) {
	if strings.TrimSpace(edit.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", apperror.ErrInvalidInput)
	}
	if err := model.ValidatePricePair(edit.FullPrice, edit.CurrentPrice); err != nil {
		return nil, err
	}

	var imagePath *string
	if cover != nil {
		path, err := s.covers.Persist(ctx, edit.ID, cover)
		if err != nil {
			return nil, err
		}
		imagePath = &path
	}

	affected, err := s.courses.Update(ctx, edit, imagePath)
	if err != nil {
		if errors.Is(err, apperror.ErrConstraintViolation) {
			return nil, fmt.Errorf("%w: %q", apperror.ErrTitleUnavailable, edit.Title)
		}
		return nil, err
	}
	if affected == 0 {
		exists, err := s.courses.Exists(ctx, edit.ID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("%w: course %d", apperror.ErrNotFound, edit.ID)
		}
		return nil, fmt.Errorf("%w: course %d", apperror.ErrOptimisticConcurrency, edit.ID)
	}

	return s.courses.GetByID(ctx, edit.ID)
}

// DeleteCourse soft-deletes the course, keeping its subscriptions.
func (s *CourseService) DeleteCourse(ctx context.Context, id int64) error {
	affected, err := s.courses.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: course %d", apperror.ErrNotFound, id)
	}
	return nil
}

// IsTitleAvailable checks titles case-insensitively among live courses,
// ignoring the course identified by excludeID.
func (s *CourseService) IsTitleAvailable(ctx context.Context, title string, excludeID int64) (bool, error) {
	return s.courses.TitleAvailable(ctx, title, excludeID)
}

func (s *CourseService) GetCourseAuthorID(ctx context.Context, courseID int64) (int64, error) {
	return s.courses.AuthorID(ctx, courseID)
}

func (s *CourseService) GetCourseCountByAuthorID(ctx context.Context, authorID int64) (int, error) {
	return s.courses.CountByAuthor(ctx, authorID)
}

// SendQuestionToCourseAuthor relays a student question to the author's
// contact address with reply-to set to the student. The question is stripped
// of any HTML before it is embedded in the message.
func (s *CourseService) SendQuestionToCourseAuthor(ctx context.Context, identity model.Identity, courseID int64, question string) error {
	if !identity.Complete() {
		return fmt.Errorf("%w: incomplete claims for sending a question", apperror.ErrUnknownUser)
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return err
	}

	clean := strings.TrimSpace(s.sanitizer.Sanitize(question))
	if clean == "" {
		return fmt.Errorf("%w: question is empty", apperror.ErrInvalidInput)
	}

	subject := fmt.Sprintf("Question about the course %q", course.Title)
	body := fmt.Sprintf("<p>%s (%s) asks:</p><p>%s</p>",
		html.EscapeString(identity.FullName), html.EscapeString(identity.Email), clean)

	if err := s.mailer.Send(ctx, course.Email, identity.Email, subject, body); err != nil {
		return fmt.Errorf("%w: question to author of course %d: %w", apperror.ErrSendFailure, courseID, err)
	}

	s.logger.Info("Question relayed to author",
		zap.Int64("course_id", courseID),
		zap.Int64("user_id", identity.UserID))
	return nil
}

// Pay starts a checkout for the course's current price and returns the URL
// the buyer must visit to approve the payment.
func (s *CourseService) Pay(ctx context.Context, courseID, userID int64, returnURL, cancelURL string) (string, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return "", err
	}

	return s.gateway.CreateOrderURL(ctx, paypal.Order{
		CourseID:    courseID,
		UserID:      userID,
		Description: course.Title,
		Price:       course.CurrentPrice,
		ReturnURL:   returnURL,
		CancelURL:   cancelURL,
	})
}

// CapturePayment settles an approved order and records the subscription.
func (s *CourseService) CapturePayment(ctx context.Context, orderToken string) (*model.Subscription, error) {
	capture, err := s.gateway.CaptureOrder(ctx, orderToken)
	if err != nil {
		return nil, err
	}

	sub := &model.Subscription{
		UserID:        capture.UserID,
		CourseID:      capture.CourseID,
		PaymentDate:   capture.PaymentDate,
		PaymentType:   capture.PaymentType,
		Paid:          capture.Paid,
		TransactionID: capture.TransactionID,
	}
	if err := s.SubscribeCourse(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// SubscribeCourse records a paid subscription. The transaction is logged
// before the write so a captured payment is traceable even when persistence
// fails.
func (s *CourseService) SubscribeCourse(ctx context.Context, sub *model.Subscription) error {
	s.logger.Info("Recording subscription",
		zap.Int64("user_id", sub.UserID),
		zap.Int64("course_id", sub.CourseID),
		zap.String("transaction_id", sub.TransactionID),
		zap.String("paid", sub.Paid.String()))
	return s.subs.Upsert(ctx, sub)
}

func (s *CourseService) GetSubscription(ctx context.Context, userID, courseID int64) (*model.Subscription, error) {
	return s.subs.Get(ctx, userID, courseID)
}

func (s *CourseService) IsCourseSubscribed(ctx context.Context, userID, courseID int64) (bool, error) {
	return s.subs.IsSubscribed(ctx, userID, courseID)
}

// VoteCourse stores a 1..5 vote on the caller's own subscription. Voting
// without a subscription fails with apperror.ErrSubscriptionNotFound.
func (s *CourseService) VoteCourse(ctx context.Context, userID, courseID int64, vote int) error {
	if vote < 1 || vote > 5 {
		return fmt.Errorf("%w: %d is outside 1..5", apperror.ErrInvalidVote, vote)
	}

	affected, err := s.subs.UpdateVote(ctx, userID, courseID, vote)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: course %d, user %d", apperror.ErrSubscriptionNotFound, courseID, userID)
	}

	s.logger.Info("Vote recorded",
		zap.Int64("course_id", courseID),
		zap.Int64("user_id", userID),
		zap.Int("vote", vote))
	return nil
}

package app

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"gopher-classifieds/internal/model"
	"gopher-classifieds/internal/repository"
)

const (
	TitleMaxLength    = 100
	ContactMaxLength  = 50
	LocationMaxLength = 100
	PhoneMaxLength    = 20
	WeixinMaxLength   = 50
)

// ReviewNotifier tells moderators about new postings.
type ReviewNotifier interface {
	PublishReview(ctx context.Context, notice model.ReviewNotice) error
}

type SubmissionService struct {
	postingRepo *repository.PostingRepository
	notifier    ReviewNotifier
	now         func() time.Time
}

// SubmitInput holds the submitted form fields as typed by the user.
type SubmitInput struct {
	Title    string      `form:"title" json:"title" validate:"required,max=100"`
	Type     ChoiceValue `form:"type" json:"type" validate:"required"`
	Contact  string      `form:"contact" json:"contact" validate:"max=50"`
	Location string      `form:"location" json:"location" validate:"max=100"`
	Phone    string      `form:"phone" json:"phone" validate:"max=20"`
	Weixin   string      `form:"weixin" json:"weixin" validate:"max=50"`
}

// Normalize trims surrounding whitespace from every field.
func (in SubmitInput) Normalize() SubmitInput {
	return SubmitInput{
		Title:    strings.TrimSpace(in.Title),
		Type:     ChoiceValue(strings.TrimSpace(string(in.Type))),
		Contact:  strings.TrimSpace(in.Contact),
		Location: strings.TrimSpace(in.Location),
		Phone:    strings.TrimSpace(in.Phone),
		Weixin:   strings.TrimSpace(in.Weixin),
	}
}

// notifier may be nil.
func NewSubmissionService(postingRepo *repository.PostingRepository, notifier ReviewNotifier) *SubmissionService {
	return &SubmissionService{
		postingRepo: postingRepo,
		notifier:    notifier,
		now:         time.Now,
	}
}

// Submit validates the form and stores a pending posting owned by userID.
// Field problems come back as ValidationErrors and nothing is written.
func (s *SubmissionService) Submit(ctx context.Context, userID uint, input SubmitInput) (*model.Posting, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	input = input.Normalize()
	verrs := validateStruct(input)
	postingType, ok := model.ParsePostingType(string(input.Type))
	if input.Type != "" && !ok {
		if verrs == nil {
			verrs = ValidationErrors{}
		}
		verrs["type"] = "select a valid choice"
	}
	if len(verrs) > 0 {
		return nil, verrs
	}

	posting := &model.Posting{
		Title:     input.Title,
		Type:      postingType,
		Contact:   input.Contact,
		Location:  input.Location,
		Phone:     input.Phone,
		Weixin:    input.Weixin,
		Status:    model.PostingStatusPending,
		Timestamp: s.now(),
		OwnerID:   userID,
	}
	if err := s.postingRepo.Create(ctx, posting); err != nil {
		return nil, err
	}

	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "posting_id": posting.ID})
	logCtx.Info("posting submitted for review")

	if s.notifier != nil {
		notice := model.ReviewNotice{
			PostingID:   posting.ID,
			Title:       posting.Title,
			Type:        posting.Type.String(),
			OwnerID:     userID,
			SubmittedAt: posting.Timestamp,
		}
		if err := s.notifier.PublishReview(ctx, notice); err != nil {
			logCtx.WithError(err).Warn("publish review notice failed")
		}
	}
	return posting, nil
}

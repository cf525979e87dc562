package app_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopher-classifieds/internal/app"
	"gopher-classifieds/internal/model"
)

type recordingNotifier struct {
	mu      sync.Mutex
	notices []model.ReviewNotice
	err     error
}

func (n *recordingNotifier) PublishReview(_ context.Context, notice model.ReviewNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return n.err
}

func countPostings(t *testing.T, f *fixture) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.Posting{}).Count(&n).Error)
	return n
}

func TestSubmit_PersistsPendingPosting(t *testing.T) {
	f := newFixture(t)
	notifier := &recordingNotifier{}
	svc := app.NewSubmissionService(f.postings, notifier)

	posting, err := svc.Submit(context.Background(), f.owner.ID, app.SubmitInput{
		Title:    "  Used bike  ",
		Type:     "0",
		Location: "Campus",
		Phone:    "123456",
	})
	require.NoError(t, err)

	assert.NotZero(t, posting.ID)
	assert.Equal(t, "Used bike", posting.Title)
	assert.Equal(t, model.PostingTypeOffer, posting.Type)
	assert.Equal(t, model.PostingStatusPending, posting.Status)
	assert.Equal(t, f.owner.ID, posting.OwnerID)
	assert.False(t, posting.Timestamp.IsZero())

	stored, err := f.postings.GetByID(context.Background(), posting.ID)
	require.NoError(t, err)
	assert.False(t, stored.Visible())

	require.Len(t, notifier.notices, 1)
	assert.Equal(t, posting.ID, notifier.notices[0].PostingID)
	assert.Equal(t, "offer", notifier.notices[0].Type)
}

func TestSubmit_ValidationErrorsPersistNothing(t *testing.T) {
	f := newFixture(t)
	svc := app.NewSubmissionService(f.postings, nil)

	cases := []struct {
		name   string
		input  app.SubmitInput
		fields []string
	}{
		{"missing title and type", app.SubmitInput{}, []string{"title", "type"}},
		{"blank title", app.SubmitInput{Title: "   ", Type: "1"}, []string{"title"}},
		{"unknown type", app.SubmitInput{Title: "x", Type: "9"}, []string{"type"}},
		{"title too long", app.SubmitInput{Title: strings.Repeat("t", 101), Type: "1"}, []string{"title"}},
		{"phone too long", app.SubmitInput{Title: "x", Type: "1", Phone: strings.Repeat("1", 21)}, []string{"phone"}},
		{"several", app.SubmitInput{Title: "x", Type: "1", Contact: strings.Repeat("c", 51), Weixin: strings.Repeat("w", 51)}, []string{"contact", "weixin"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), f.owner.ID, tc.input)
			verrs, ok := app.AsValidationErrors(err)
			require.True(t, ok, "expected validation errors, got %v", err)
			assert.Len(t, verrs, len(tc.fields))
			for _, field := range tc.fields {
				assert.Contains(t, verrs, field)
			}
		})
	}
	assert.Equal(t, int64(0), countPostings(t, f))
}

func TestSubmit_MultibyteLengthCountsCharacters(t *testing.T) {
	f := newFixture(t)
	svc := app.NewSubmissionService(f.postings, nil)

	_, err := svc.Submit(context.Background(), f.owner.ID, app.SubmitInput{
		Title: strings.Repeat("车", 100),
		Type:  "want",
	})
	assert.NoError(t, err)
}

func TestSubmit_RequiresUser(t *testing.T) {
	f := newFixture(t)
	svc := app.NewSubmissionService(f.postings, nil)

	_, err := svc.Submit(context.Background(), 0, app.SubmitInput{Title: "x", Type: "0"})
	assert.ErrorIs(t, err, app.ErrInvalidInput)
}

func TestSubmit_NotifierFailureDoesNotFailSubmission(t *testing.T) {
	f := newFixture(t)
	svc := app.NewSubmissionService(f.postings, &recordingNotifier{err: errors.New("broker down")})

	posting, err := svc.Submit(context.Background(), f.owner.ID, app.SubmitInput{Title: "x", Type: "0"})
	require.NoError(t, err)
	assert.NotZero(t, posting.ID)
	assert.Equal(t, int64(1), countPostings(t, f))
}

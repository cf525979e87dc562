package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopher-classifieds/internal/model"
	"gopher-classifieds/internal/repository"
	"gopher-classifieds/internal/repository/repotest"
)

type failingUpdater struct{}

func (failingUpdater) UpdateStatus(context.Context, uint, int) (bool, error) {
	return false, errors.New("db gone")
}

func TestHandle_AppliesDecision(t *testing.T) {
	db := repotest.NewDB(t)
	users := repository.NewUserRepository(db)
	postings := repository.NewPostingRepository(db)
	ctx := context.Background()

	owner := &model.User{Username: "owner", PasswordHash: "x"}
	require.NoError(t, users.Create(ctx, owner))
	posting := &model.Posting{Title: "lamp", OwnerID: owner.ID}
	require.NoError(t, postings.Create(ctx, posting))

	logger, _ := test.NewNullLogger()
	w := NewModerationWorker(nil, postings, "q", logger)

	require.NoError(t, w.Handle(ctx, []byte(`{"posting_id":`+itoa(posting.ID)+`,"status":1}`)))

	stored, err := postings.GetByID(ctx, posting.ID)
	require.NoError(t, err)
	assert.True(t, stored.Visible())
}

func TestHandle_RejectsMalformed(t *testing.T) {
	logger, _ := test.NewNullLogger()
	w := NewModerationWorker(nil, failingUpdater{}, "q", logger)
	ctx := context.Background()

	for _, body := range []string{`not json`, `{"posting_id":0,"status":1}`, `{"posting_id":3,"status":9}`} {
		err := w.Handle(ctx, []byte(body))
		assert.True(t, errors.Is(err, errInvalidDecision), body)
	}
}

func TestHandle_StoreErrorIsNotInvalid(t *testing.T) {
	logger, _ := test.NewNullLogger()
	w := NewModerationWorker(nil, failingUpdater{}, "q", logger)

	err := w.Handle(context.Background(), []byte(`{"posting_id":3,"status":1}`))
	require.Error(t, err)
	assert.False(t, errors.Is(err, errInvalidDecision))
}

func itoa(n uint) string {
	return fmt.Sprint(n)
}

package app

import (
	"context"
	"math"
	"strings"

	"gopher-classifieds/internal/model"
	"gopher-classifieds/internal/pagination"
	"gopher-classifieds/internal/repository"
)

const DefaultPageSize = 15

type ListingService struct {
	postingRepo *repository.PostingRepository
	pageSize    int
	maxPageSize int
	windowSize  int
}

type ListingOptions struct {
	PageSize    int
	MaxPageSize int
	WindowSize  int
}

// ListInput carries the raw request values. Category is the unparsed "c"
// parameter and Search the unparsed "q" parameter.
type ListInput struct {
	Category string
	Search   string
	Page     int
	PageSize int
}

type ListResult struct {
	Postings   []model.Posting `json:"postings"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
	PageWindow []int           `json:"page_window"`
	HasPrev    bool            `json:"has_prev"`
	HasNext    bool            `json:"has_next"`
	Category   string          `json:"c"`
	Search     string          `json:"q"`
}

func NewListingService(postingRepo *repository.PostingRepository, opts ListingOptions) *ListingService {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.MaxPageSize < opts.PageSize {
		opts.MaxPageSize = opts.PageSize
	}
	if opts.WindowSize <= 0 {
		opts.WindowSize = pagination.DefaultWindowSize
	}
	return &ListingService{
		postingRepo: postingRepo,
		pageSize:    opts.PageSize,
		maxPageSize: opts.MaxPageSize,
		windowSize:  opts.WindowSize,
	}
}

// List returns one page of approved postings, newest first, narrowed by the
// optional category and title search. A page past the end is empty rather
// than an error, and an unknown category matches nothing.
func (s *ListingService) List(ctx context.Context, input ListInput) (*ListResult, error) {
	category := strings.TrimSpace(input.Category)
	search := strings.TrimSpace(input.Search)

	page := input.Page
	if page < 1 {
		page = 1
	}
	size := input.PageSize
	if size <= 0 {
		size = s.pageSize
	}
	if size > s.maxPageSize {
		size = s.maxPageSize
	}

	result := &ListResult{
		Postings:   []model.Posting{},
		Page:       page,
		PageSize:   size,
		PageWindow: []int{},
		Category:   category,
		Search:     search,
	}

	q := repository.NewPostingQuery().WithStatus(model.PostingStatusApproved)
	if category != "" {
		postingType, ok := model.ParsePostingType(category)
		if !ok {
			return result, nil
		}
		q = q.WithType(postingType)
	}
	if search != "" {
		q = q.WithTitleContains(search)
	}
	// pages far past the end must not wrap the offset back to the start
	offset := math.MaxInt
	if page-1 <= math.MaxInt/size {
		offset = (page - 1) * size
	}
	q = q.NewestFirst().Slice(offset, size)

	postings, total, err := s.postingRepo.Find(ctx, q)
	if err != nil {
		return nil, err
	}

	result.Postings = postings
	result.Total = total
	result.TotalPages = pagination.TotalPages(total, size)
	result.PageWindow = pagination.PageWindowSize(result.TotalPages, page, s.windowSize)
	result.HasPrev = page > 1
	result.HasNext = page < result.TotalPages
	return result, nil
}

// Search lists approved postings by title only, ignoring category.
func (s *ListingService) Search(ctx context.Context, search string, page int) (*ListResult, error) {
	return s.List(ctx, ListInput{Search: search, Page: page})
}

// Get returns a posting by id whatever its moderation status.
func (s *ListingService) Get(ctx context.Context, id uint) (*model.Posting, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	posting, err := s.postingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if posting == nil {
		return nil, ErrNotFound
	}
	return posting, nil
}

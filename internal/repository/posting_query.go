package repository

import (
	"strings"

	"gorm.io/gorm"

	"gopher-classifieds/internal/model"
)

type predicate struct {
	clause string
	args   []interface{}
}

// PostingQuery describes one listing lookup: the conjunction of its
// predicates, an ordering and a page slice. It is an immutable value; every
// builder method returns a modified copy, and nothing touches the database
// until PostingRepository.Find evaluates it.
type PostingQuery struct {
	predicates []predicate
	order      string
	offset     int
	limit      int
}

func NewPostingQuery() PostingQuery {
	return PostingQuery{}
}

func (q PostingQuery) where(clause string, args ...interface{}) PostingQuery {
	next := make([]predicate, len(q.predicates), len(q.predicates)+1)
	copy(next, q.predicates)
	q.predicates = append(next, predicate{clause: clause, args: args})
	return q
}

func (q PostingQuery) WithStatus(status int) PostingQuery {
	return q.where("status = ?", status)
}

func (q PostingQuery) WithType(t model.PostingType) PostingQuery {
	return q.where("type = ?", t)
}

// WithTitleContains adds a case-insensitive substring match on the title.
// LIKE wildcards in text are matched literally. Both sides are folded by the
// database's LOWER so they always agree; MySQL and Postgres fold accented
// letters, SQLite folds ASCII only.
func (q PostingQuery) WithTitleContains(text string) PostingQuery {
	pattern := "%" + escapeLike(text) + "%"
	return q.where("LOWER(title) LIKE LOWER(?) ESCAPE '!'", pattern)
}

// NewestFirst orders by timestamp descending; id breaks ties so paging is stable.
func (q PostingQuery) NewestFirst() PostingQuery {
	q.order = "timestamp DESC, id DESC"
	return q
}

func (q PostingQuery) Slice(offset, limit int) PostingQuery {
	q.offset = offset
	q.limit = limit
	return q
}

func (q PostingQuery) Offset() int { return q.offset }

func (q PostingQuery) Limit() int { return q.limit }

func (q PostingQuery) filter(db *gorm.DB) *gorm.DB {
	for _, p := range q.predicates {
		db = db.Where(p.clause, p.args...)
	}
	return db
}

func (q PostingQuery) page(db *gorm.DB) *gorm.DB {
	if q.order != "" {
		db = db.Order(q.order)
	}
	if q.offset > 0 {
		db = db.Offset(q.offset)
	}
	if q.limit > 0 {
		db = db.Limit(q.limit)
	}
	return db
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

package model

import (
	"strconv"
	"strings"
	"time"
)

// PostingType is the category of a posting.
type PostingType int

const (
	PostingTypeOffer PostingType = 0
	PostingTypeWant  PostingType = 1
)

var postingTypeNames = map[PostingType]string{
	PostingTypeOffer: "offer",
	PostingTypeWant:  "want",
}

func (t PostingType) Valid() bool {
	_, ok := postingTypeNames[t]
	return ok
}

func (t PostingType) String() string {
	if name, ok := postingTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// PostingTypes lists every known type in ascending order.
func PostingTypes() []PostingType {
	return []PostingType{PostingTypeOffer, PostingTypeWant}
}

// ParsePostingType accepts the numeric form used in query strings ("0", "1")
// as well as the names ("offer", "want").
func ParsePostingType(raw string) (PostingType, bool) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if n, err := strconv.Atoi(raw); err == nil {
		t := PostingType(n)
		return t, t.Valid()
	}
	for t, name := range postingTypeNames {
		if name == raw {
			return t, true
		}
	}
	return 0, false
}

const (
	// PostingStatusPending is assigned on submission; moderation decides the rest.
	PostingStatusPending  = 0
	PostingStatusApproved = 1
	PostingStatusRejected = 2
)

type Posting struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	Title     string      `gorm:"size:100;not null" json:"title"`
	Type      PostingType `gorm:"not null;index:idx_postings_status_type_time,priority:2" json:"type"`
	Contact   string      `gorm:"size:50" json:"contact"`
	Location  string      `gorm:"size:100" json:"location"`
	Phone     string      `gorm:"size:20" json:"phone"`
	Weixin    string      `gorm:"size:50" json:"weixin"`
	Status    int         `gorm:"not null;default:0;index:idx_postings_status_type_time,priority:1" json:"status"`
	Timestamp time.Time   `gorm:"not null;autoCreateTime;index:idx_postings_status_type_time,priority:3" json:"timestamp"`
	OwnerID   uint        `gorm:"not null;index" json:"owner_id"`
	Owner     *User       `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

// Visible reports whether the posting may appear in public listings.
func (p *Posting) Visible() bool {
	return p.Status == PostingStatusApproved
}

// Models lists every table the application migrates.
func Models() []interface{} {
	return []interface{}{&User{}, &Posting{}}
}

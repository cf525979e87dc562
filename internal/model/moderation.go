package model

import "time"

// ReviewNotice announces a freshly submitted posting to moderators.
type ReviewNotice struct {
	PostingID   uint      `json:"posting_id"`
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	OwnerID     uint      `json:"owner_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// ModerationDecision is produced by moderators and applied to a posting.
type ModerationDecision struct {
	PostingID uint `json:"posting_id"`
	Status    int  `json:"status"`
}

func (d ModerationDecision) Valid() bool {
	if d.PostingID == 0 {
		return false
	}
	switch d.Status {
	case PostingStatusPending, PostingStatusApproved, PostingStatusRejected:
		return true
	}
	return false
}

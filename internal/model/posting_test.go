package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePostingType(t *testing.T) {
	cases := []struct {
		raw  string
		want PostingType
		ok   bool
	}{
		{"0", PostingTypeOffer, true},
		{"1", PostingTypeWant, true},
		{" want ", PostingTypeWant, true},
		{"OFFER", PostingTypeOffer, true},
		{"2", PostingType(2), false},
		{"-1", PostingType(-1), false},
		{"sell", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParsePostingType(tc.raw)
		assert.Equal(t, tc.ok, ok, tc.raw)
		if tc.ok {
			assert.Equal(t, tc.want, got, tc.raw)
		}
	}
}

func TestPostingVisible(t *testing.T) {
	assert.True(t, (&Posting{Status: PostingStatusApproved}).Visible())
	assert.False(t, (&Posting{Status: PostingStatusPending}).Visible())
	assert.False(t, (&Posting{Status: PostingStatusRejected}).Visible())
}

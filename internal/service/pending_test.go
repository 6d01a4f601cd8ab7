package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPendingMemberRoundTrip(t *testing.T) {
	member := PendingMember("2abc", "2024/01/01/2abc.png")

	id, objectKey := SplitPendingMember(member)
	assert.Equal(t, "2abc", id)
	assert.Equal(t, "2024/01/01/2abc.png", objectKey)
}

func TestSplitPendingMemberWithoutKey(t *testing.T) {
	id, objectKey := SplitPendingMember("2abc")
	assert.Equal(t, "2abc", id)
	assert.Empty(t, objectKey)
}

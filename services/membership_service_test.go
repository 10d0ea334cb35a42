package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateMembershipLocksUserRow(t *testing.T) {
	// Two concurrent submits for the same user must not both pass the
	// pending/active check. The user lookup inside the transaction takes a
	// row lock so the second submit waits and then sees the first insert.
	assert.True(t, strings.HasSuffix(lockUserQuery, "FOR UPDATE"))
}

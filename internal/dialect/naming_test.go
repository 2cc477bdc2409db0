package dialect

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstraintName(t *testing.T) {
	assert.Equal(t, "fk_posts_author_id", ConstraintName("posts", "author_id", 63))
	assert.Equal(t, "fk_posts_author_id", ConstraintName("posts", "author_id", 0))

	long := ConstraintName(strings.Repeat("t", 50), strings.Repeat("c", 50), 63)
	assert.Len(t, long, 63)
	assert.True(t, strings.HasPrefix(long, "fk_ttt"))
	assert.Equal(t, long, ConstraintName(strings.Repeat("t", 50), strings.Repeat("c", 50), 63))
	assert.NotEqual(t, long, ConstraintName(strings.Repeat("t", 50), strings.Repeat("c", 51), 63))
}

func TestNeedsQuoting(t *testing.T) {
	bare := regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
	assert.False(t, NeedsQuoting("users", bare))
	assert.True(t, NeedsQuoting("select", bare))
	assert.True(t, NeedsQuoting("Users", bare))
	assert.True(t, IsReserved("Primary"))
	assert.False(t, IsReserved("email"))
}

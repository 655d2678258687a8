package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocialSanitize(t *testing.T) {
	s := Social{
		"twitter":  "https://twitter.com/alice",
		"myspace":  "https://myspace.com/alice",
		"youtube":  "",
		"linkedin": "https://linkedin.com/in/alice",
	}

	assert.Equal(t, Social{
		"twitter":  "https://twitter.com/alice",
		"linkedin": "https://linkedin.com/in/alice",
	}, s.Sanitize())
}

func TestSocialScanValue(t *testing.T) {
	original := Social{"twitter": "https://twitter.com/alice"}

	value, err := original.Value()
	require.NoError(t, err)

	var scanned Social
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, original, scanned)

	var empty Social
	require.NoError(t, empty.Scan(nil))
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	assert.Error(t, empty.Scan(42))
}

func TestPostHelpers(t *testing.T) {
	post := &Post{
		Likes:    []Like{{UserID: "u2"}, {UserID: "u1"}},
		Comments: []Comment{{ID: "c2", Text: "second"}, {ID: "c1", Text: "first"}},
	}

	assert.True(t, post.LikedBy("u1"))
	assert.False(t, post.LikedBy("u3"))

	c := post.FindComment("c1")
	require.NotNil(t, c)
	assert.Equal(t, "first", c.Text)
	assert.Nil(t, post.FindComment("missing"))
}

package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishedRecently(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		pub  time.Time
		want bool
	}{
		{"now", now, true},
		{"half a day ago", now.Add(-12 * time.Hour), true},
		{"exactly one day ago", now.Add(-RecentWindow), true},
		{"two days ago", now.Add(-48 * time.Hour), false},
		{"tomorrow", now.Add(24 * time.Hour), false},
		{"one second ahead", now.Add(time.Second), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, publishedRecently(tc.pub, now))
		})
	}
}

func TestIsRecentOnModels(t *testing.T) {
	now := time.Now()
	c := &Channel{PubDate: now.Add(-time.Minute)}
	th := &Thread{PubDate: now.Add(-2 * 24 * time.Hour)}
	cm := &Comment{PubDate: now.Add(2 * 24 * time.Hour)}

	assert.True(t, c.IsRecent())
	assert.False(t, th.IsRecent())
	assert.False(t, cm.IsRecent())
}

func TestStringForms(t *testing.T) {
	assert.Equal(t, "threadtest", Thread{ThreadName: "threadtest"}.String())
	assert.Equal(t, "test text :)", Comment{Text: "test text :)"}.String())
	assert.Equal(t, "general", Channel{ChannelName: "general"}.String())
	assert.Equal(t, "owner", UserSettings{User: &User{Username: "owner"}}.String())
	assert.Equal(t, "", UserSettings{}.String())
}

func TestChannelValidate(t *testing.T) {
	assert.NoError(t, (&Channel{ChannelName: "Test-channel_123"}).Validate())

	for _, name := range []string{"", "has space", "slash/name", string(make([]byte, MaxChannelNameLen+1))} {
		err := (&Channel{ChannelName: name}).Validate()
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, "name %q", name)
		assert.Equal(t, []string{"channel_name"}, ve.FieldNames())
	}

	long := &Channel{ChannelName: "general", Description: strings.Repeat("é", MaxChannelDescriptionLen+1)}
	var ve *ValidationError
	require.ErrorAs(t, long.Validate(), &ve)
	assert.Equal(t, []string{"description"}, ve.FieldNames())
	long.Description = strings.Repeat("é", MaxChannelDescriptionLen)
	assert.NoError(t, long.Validate())
}

func TestThreadAndCommentValidate(t *testing.T) {
	assert.NoError(t, (&Thread{ThreadName: "a"}).Validate())
	assert.Error(t, (&Thread{}).Validate())
	assert.NoError(t, (&Comment{Text: "hi"}).Validate())

	var ve *ValidationError
	require.ErrorAs(t, (&Comment{}).Validate(), &ve)
	assert.Equal(t, []string{"text"}, ve.FieldNames())
}

func TestUniqueTogetherError(t *testing.T) {
	err := NewUniqueTogetherError("taken", "thread", "comment_id")
	assert.Equal(t, []string{"comment_id", "thread"}, err.FieldNames())
	assert.Contains(t, err.Error(), "comment_id: taken")
}

func TestStringListScanValue(t *testing.T) {
	var l StringList
	require.NoError(t, l.Scan(`["alice","bob"]`))
	assert.Equal(t, StringList{"alice", "bob"}, l)

	require.NoError(t, l.Scan(nil))
	assert.Empty(t, l)

	require.NoError(t, l.Scan([]byte("")))
	assert.Empty(t, l)

	assert.Error(t, l.Scan(42))

	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = StringList{"x"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["x"]`, v)
}

func TestStringListHelpers(t *testing.T) {
	l := StringList{"Alice", "bob"}
	assert.True(t, l.Contains("Alice"))
	assert.False(t, l.Contains("alice"))
	assert.False(t, l.Contains("carol"))
	assert.Equal(t, StringList{"bob"}, l.Without("Alice"))
	assert.Equal(t, l, l.Without("ALICE"))
	assert.Equal(t, StringList{"Alice", "bob", "carol"}, l.With("carol"))
	assert.Equal(t, l, l.With("bob"))
	assert.Equal(t, StringList{"Alice", "bob"}, l, "original must not be mutated")
}

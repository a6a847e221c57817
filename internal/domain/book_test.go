package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketDuration(t *testing.T) {
	tests := []struct {
		minutes int
		want    DurationCategory
	}{
		{-5, DurationUnknown},
		{0, DurationUnknown},
		{1, DurationShort},
		{119, DurationShort},
		{120, DurationShort},
		{121, DurationMedium},
		{300, DurationMedium},
		{480, DurationMedium},
		{481, DurationLong},
		{2000, DurationLong},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BucketDuration(tt.minutes), "minutes=%d", tt.minutes)
	}
}

func TestValidDurationCategory(t *testing.T) {
	assert.True(t, ValidDurationCategory("short"))
	assert.True(t, ValidDurationCategory("medium"))
	assert.True(t, ValidDurationCategory("long"))
	assert.False(t, ValidDurationCategory("epic"))
	assert.False(t, ValidDurationCategory(""))
	assert.False(t, ValidDurationCategory("Short"))
}

func TestDurationBuckets_Contiguous(t *testing.T) {
	buckets := DurationBuckets()
	require.Len(t, buckets, 3)

	for i := 1; i < len(buckets); i++ {
		assert.Equal(t, buckets[i-1].MaxMinutes+1, buckets[i].MinMinutes)
	}
	assert.Zero(t, buckets[len(buckets)-1].MaxMinutes, "last bucket is open-ended")
}

func TestNormalize_DerivesCategory(t *testing.T) {
	b := Book{Title: "Short Stories", Author: "Various", Duration: 90}
	b.Normalize()
	assert.Equal(t, DurationShort, b.DurationCategory)

	b.Duration = 481
	b.Normalize()
	assert.Equal(t, DurationLong, b.DurationCategory)
}

func TestNormalize_TagsStartWithGenre(t *testing.T) {
	b := Book{
		Title:  "The Moonstone",
		Author: "Wilkie Collins",
		Genre:  "Mystery",
		Tags:   []string{"victorian", "Mystery", "classic"},
	}
	b.Normalize()

	assert.Equal(t, []string{"Mystery", "victorian", "classic"}, b.Tags)
}

func TestNormalize_EmptyTagsInitializedFromGenre(t *testing.T) {
	b := Book{Title: "Dracula", Author: "Bram Stoker", Genre: "Horror"}
	b.Normalize()
	assert.Equal(t, []string{"Horror"}, b.Tags)
}

func TestNormalize_DedupesTags(t *testing.T) {
	b := Book{
		Title:  "Collected Poems",
		Author: "Anonymous",
		Genre:  "Poetry",
		Tags:   []string{" poetry ", "Poetry", "Epics"},
	}
	b.Normalize()
	assert.Equal(t, []string{"Poetry", "Epics"}, b.Tags)
}

func TestNormalize_Idempotent(t *testing.T) {
	b := Book{
		Title:    "  A Study in Scarlet ",
		Author:   "Arthur Conan Doyle",
		Genre:    "Mystery",
		Tags:     []string{"sherlock", "mystery"},
		Duration: 300,
	}
	b.Normalize()
	once := b
	b.Normalize()
	assert.Equal(t, once, b)
}

func TestNormalize_SearchText(t *testing.T) {
	b := Book{
		Title:  "Les Misérables",
		Author: "Victor Hugo",
		Genre:  "Historical Fiction",
	}
	b.Normalize()

	assert.Contains(t, b.SearchText, "les miserables")
	assert.Contains(t, b.SearchText, "victor hugo")
	assert.Contains(t, b.SearchText, "historical fiction")
}

func TestNormalize_Defaults(t *testing.T) {
	b := Book{Title: "Untagged", Author: "Nobody", Genre: "  "}
	b.Normalize()
	assert.Equal(t, DefaultGenre, b.Genre)
	assert.Equal(t, []string{DefaultGenre}, b.Tags)
	assert.Equal(t, DefaultLanguage, b.Language)
}

func TestNormalize_SearchTextIncludesDescription(t *testing.T) {
	b := Book{
		Title:       "A Pride of Lions",
		Author:      "Somebody Else",
		Description: "A safari memoir, not the Austen novel.",
	}
	b.Normalize()
	assert.Contains(t, b.SearchText, "austen novel")
}

func TestUserProfile_StripsPasswordHash(t *testing.T) {
	u := User{
		ID:           "64f1a2b3c4d5e6f708192a3b",
		Email:        "reader@example.com",
		PasswordHash: "$argon2id$...",
		Username:     "Reader",
	}
	p := u.Profile("/uploads/avatars/reader.jpg")

	assert.Equal(t, u.ID, p.ID)
	assert.Equal(t, "/uploads/avatars/reader.jpg", p.AvatarURL)
}

package librivox

import (
	"strconv"
	"strings"
)

// ParseTotalTime converts a feed runtime like "10:35:14" or "47:30" to whole
// minutes, rounding seconds up. Returns 0 for blank or malformed values.
func ParseTotalTime(s string) int {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}

	nums := make([]int, 0, 3)
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0
		}
		nums = append(nums, n)
	}

	var seconds int
	if len(nums) == 3 {
		seconds = nums[0]*3600 + nums[1]*60 + nums[2]
	} else {
		seconds = nums[0]*60 + nums[1]
	}
	return (seconds + 59) / 60
}

// ParsePlaytime converts a track playtime in seconds (the feed serializes it
// as a string) to whole minutes, rounding up.
func ParsePlaytime(s string) int {
	seconds, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || seconds <= 0 {
		return 0
	}
	return (seconds + 59) / 60
}

// ParseYear converts a copyright year string to an int, 0 when unknown.
func ParseYear(s string) int {
	year, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || year <= 0 {
		return 0
	}
	return year
}

// Name joins an author entry into a display name.
func (a Author) Name() string {
	return strings.TrimSpace(strings.TrimSpace(a.FirstName) + " " + strings.TrimSpace(a.LastName))
}

// PrimaryAuthor returns the display name of the first author, or "Unknown"
// when the feed lists none.
func (b Audiobook) PrimaryAuthor() string {
	for _, a := range b.Authors {
		if name := a.Name(); name != "" {
			return name
		}
	}
	return "Unknown"
}

// GenreNames returns the genre names of the audiobook.
func (b Audiobook) GenreNames() []string {
	names := make([]string, 0, len(b.Genres))
	for _, g := range b.Genres {
		if name := strings.TrimSpace(g.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// CoverURL derives an archive.org cover image URL from the catalog page URL,
// matching what the LibriVox site itself links to. Empty when the book has no
// catalog page.
func (b Audiobook) CoverURL() string {
	if b.URLLibriVox == "" {
		return ""
	}
	return strings.Replace(b.URLLibriVox, "https://librivox.org", "https://archive.org/services/img", 1)
}

// Sections parses the section count, 0 when the feed omits it.
func (b Audiobook) Sections() int {
	n, err := strconv.Atoi(strings.TrimSpace(b.NumSections))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

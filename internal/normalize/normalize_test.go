package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Pride and Prejudice", "pride and prejudice"},
		{"Brontë", "bronte"},
		{"ÉMILE ZOLA", "emile zola"},
		{"", ""},
		{"already lower", "already lower"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Fold(tt.input), "input %q", tt.input)
	}
}

func TestSearchText_DropsEmptyParts(t *testing.T) {
	got := SearchText("Dracula", "", "Bram Stoker", "  ", "Horror")
	assert.Equal(t, "dracula bram stoker horror", got)
}

func TestSearchText_Empty(t *testing.T) {
	assert.Equal(t, "", SearchText())
	assert.Equal(t, "", SearchText("", "  "))
}

func TestContainsFold(t *testing.T) {
	assert.True(t, ContainsFold("Pride and Prejudice", "pride"))
	assert.True(t, ContainsFold("Jane Austen", "AUSTEN"))
	assert.True(t, ContainsFold("Charlotte Brontë", "bronte"))
	assert.False(t, ContainsFold("Moby Dick", "pride"))
	assert.True(t, ContainsFold("anything", ""))
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinTags(t *testing.T) {
	assert.Equal(t, "cloud|data|ml", JoinTags([]string{"ml", "", "data", "cloud", "ml"}))
	assert.Equal(t, "", JoinTags(nil))
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"cloud", "data", "ml"}, SplitTags("ml|data||cloud"))
	assert.Nil(t, SplitTags(""))
}

func TestTags_RoundTrip(t *testing.T) {
	values := []string{"python", "machine-learning", "model-deployment"}
	assert.Equal(t, NormalizeTags(values), SplitTags(JoinTags(values)))
}

package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type link struct {
	URL string `json:"url" validate:"required,url"`
}

type sample struct {
	Title  string `json:"title" validate:"required,min=2"`
	Status string `json:"status,omitempty" validate:"omitempty,oneof=draft published"`
	Links  []link `json:"links" validate:"dive"`
	Secret string `json:"-" validate:"omitempty,len=4"`
}

func TestValidateStruct(t *testing.T) {
	require.NoError(t, ValidateStruct(sample{Title: "ok"}))
	require.NoError(t, ValidateStruct(&sample{Title: "ok", Links: []link{{URL: "https://go.dev"}}}))

	err := ValidateStruct(sample{})
	require.Error(t, err)
	assert.Equal(t, "title is required", err.Error())

	err = ValidateStruct(sample{Title: "x", Status: "gone", Links: []link{{URL: "nope"}}, Secret: "abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title must be at least 2")
	assert.Contains(t, err.Error(), "status must be one of [draft published]")
	assert.Contains(t, err.Error(), "links[0].url must be a valid url")
	assert.Contains(t, err.Error(), `failed "len" validation`)
}

func TestClock(t *testing.T) {
	fixed := time.UnixMilli(1700000000123)
	clock := Clock(func() time.Time { return fixed })

	assert.Equal(t, int64(1700000000123), clock.NowMillis())
	assert.Equal(t, int64(1700000000123), EpochMillis(fixed))

	var unset Clock
	assert.Greater(t, unset.NowMillis(), int64(0))
}

package bookmark

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRecord(t *testing.T) {
	rec := NewRecord(Group{ID: "g1", Title: "Tools", CreatedAt: 1700000000000})

	assert.Equal(t, "BOOKMARKGROUP#g1", rec.PK)
	assert.Equal(t, "BOOKMARKGROUP#1700000000000#g1", rec.SK)
	assert.NotNil(t, rec.Items)
	assert.Equal(t, "g1", IDFromPartitionKey(rec.PK))
}

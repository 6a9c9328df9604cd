package ports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunFiltersPage(t *testing.T) {
	tests := []struct {
		name          string
		filters       RunFilters
		limit, offset int
	}{
		{"defaults", RunFilters{}, DefaultRunLimit, 0},
		{"explicit", RunFilters{Limit: 10, Offset: 20}, 10, 20},
		{"negative values", RunFilters{Limit: -1, Offset: -7}, DefaultRunLimit, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := tt.filters.Page()
			assert.Equal(t, tt.limit, limit)
			assert.Equal(t, tt.offset, offset)
		})
	}
}

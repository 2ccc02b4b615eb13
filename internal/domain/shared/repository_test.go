package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Paging(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		offset int
		limit  int
	}{
		{"defaults", Filter{}, 0, 20},
		{"second page", Filter{Page: 2, PageSize: 10}, 10, 10},
		{"clamped", Filter{Page: 3, PageSize: 500}, 200, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.offset, tt.filter.Offset())
			assert.Equal(t, tt.limit, tt.filter.Limit())
		})
	}
}

func TestEndOfDay(t *testing.T) {
	assert.Nil(t, EndOfDay(nil))

	day := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	end := EndOfDay(&day)
	assert.Equal(t, time.Date(2024, 3, 31, 23, 59, 59, 999999999, time.UTC), *end)

	noon := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, noon, *EndOfDay(&noon))
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated([]int{1, 2}, 41, 2, 20)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 2, p.Page)
}

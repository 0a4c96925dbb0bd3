package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagePagesRoundsUp(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		limit int
		pages int
	}{
		{"empty", 0, 10, 0},
		{"exact multiple", 20, 10, 2},
		{"partial final page", 25, 10, 3},
		{"single short page", 3, 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := NewPage([]int{}, 1, tt.limit, tt.total)
			assert.Equal(t, tt.pages, page.Pagination.Pages)
			assert.Equal(t, tt.total, page.Pagination.Total)
		})
	}
}

func TestNewPageNeverReturnsNilItems(t *testing.T) {
	page := NewPage[string](nil, 1, 10, 0)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestNormalizePageInput(t *testing.T) {
	page, limit := NormalizePageInput(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, defaultPageLimit, limit)

	page, limit = NormalizePageInput(-3, 1000)
	assert.Equal(t, 1, page)
	assert.Equal(t, maxPageLimit, limit)

	page, limit = NormalizePageInput(4, 25)
	assert.Equal(t, 4, page)
	assert.Equal(t, 25, limit)
}

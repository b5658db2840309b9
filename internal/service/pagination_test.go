package service

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPage(t *testing.T) {
	intPtr := func(i int) *int { return &i }

	tests := []struct {
		name     string
		total    int
		page     int
		next     *int
		previous *int
	}{
		{"single page", 3, 1, nil, nil},
		{"first of many", 20, 1, intPtr(2), nil},
		{"middle", 20, 2, intPtr(3), intPtr(1)},
		{"exact last", 16, 2, nil, intPtr(1)},
		{"page below one", 20, 0, intPtr(2), nil},
		{"beyond range", 4, 3, nil, intPtr(2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPage[int](nil, tt.total, tt.page, ProductPageSize)
			assert.Equal(t, tt.total, p.Count)
			assert.Equal(t, tt.next, p.Next)
			assert.Equal(t, tt.previous, p.Previous)
			assert.NotNil(t, p.Results)
		})
	}
}

func TestOffsetOf(t *testing.T) {
	assert.Equal(t, 0, offsetOf(-3, 5))
	assert.Equal(t, 0, offsetOf(1, 5))
	assert.Equal(t, 10, offsetOf(3, 5))
}

func TestMapPage(t *testing.T) {
	next := 2
	p := &Page[int]{Count: 9, Next: &next, Results: []int{1, 2}}

	out := MapPage(p, strconv.Itoa)

	assert.Equal(t, 9, out.Count)
	assert.Equal(t, &next, out.Next)
	assert.Nil(t, out.Previous)
	assert.Equal(t, []string{"1", "2"}, out.Results)
}

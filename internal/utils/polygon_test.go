package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimplifyPolygon(t *testing.T) {
	tests := []struct {
		name           string
		points         []Point
		epsilon        float64
		expectedMinLen int
		expectedMaxLen int
	}{
		{
			name:           "empty",
			points:         []Point{},
			epsilon:        1.0,
			expectedMinLen: 0,
			expectedMaxLen: 0,
		},
		{
			name:           "triangle untouched",
			points:         []Point{{0, 0}, {10, 0}, {5, 10}},
			epsilon:        1.0,
			expectedMinLen: 3,
			expectedMaxLen: 3,
		},
		{
			name: "staircase boundary collapses to corners",
			points: []Point{
				{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0},
				{4, 1}, {4, 2}, {4, 3}, {4, 4},
				{3, 4}, {2, 4}, {1, 4}, {0, 4},
				{0, 3}, {0, 2}, {0, 1},
			},
			epsilon:        0.5,
			expectedMinLen: 4,
			expectedMaxLen: 5,
		},
		{
			name:           "zero epsilon is identity",
			points:         []Point{{0, 0}, {1, 0.1}, {2, 0}, {3, 0.1}},
			epsilon:        0,
			expectedMinLen: 4,
			expectedMaxLen: 4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := SimplifyPolygon(tt.points, tt.epsilon)
			assert.GreaterOrEqual(t, len(out), tt.expectedMinLen)
			assert.LessOrEqual(t, len(out), tt.expectedMaxLen)
			if len(tt.points) > 0 {
				require.NotEmpty(t, out)
				assert.Equal(t, tt.points[0], out[0])
				assert.Equal(t, tt.points[len(tt.points)-1], out[len(out)-1])
			}
		})
	}
}

func TestPerpendicularDistance(t *testing.T) {
	assert.InDelta(t, 3.0, perpendicularDistance(Point{5, 3}, Point{0, 0}, Point{10, 0}), 1e-9)
	assert.InDelta(t, 5.0, perpendicularDistance(Point{3, 4}, Point{0, 0}, Point{0, 0}), 1e-9)
	assert.InDelta(t, 3.0, perpendicularDistance(Point{20, 3}, Point{0, 0}, Point{10, 0}), 1e-9, "measures to the line, not the segment")
}

package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewSnapshot_ComputesTotals(t *testing.T) {
	lines := []CartLine{
		{ProductID: 1, UnitPrice: decimal.NewFromFloat(19.99), Quantity: 2},
		{ProductID: 2, UnitPrice: decimal.NewFromFloat(0.01), Quantity: 3},
	}

	s := NewSnapshot(lines)

	assert.Equal(t, 5, s.TotalCount)
	assert.Equal(t, "40.01", s.TotalPrice.StringFixed(2))
}

func TestNewSnapshot_CopiesLines(t *testing.T) {
	lines := []CartLine{{ProductID: 1, UnitPrice: decimal.NewFromInt(1), Quantity: 1}}

	s := NewSnapshot(lines)
	lines[0].Quantity = 99

	assert.Equal(t, 1, s.Lines[0].Quantity, "snapshot must not alias the caller's slice")
}

func TestSnapshot_Line(t *testing.T) {
	s := NewSnapshot([]CartLine{{ProductID: 7, Quantity: 2}})

	line, ok := s.Line(7)
	assert.True(t, ok)
	assert.Equal(t, 2, line.Quantity)

	_, ok = s.Line(8)
	assert.False(t, ok)
}

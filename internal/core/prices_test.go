package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPriceTable(t *testing.T) {
	pt, err := NewPriceTable([]PriceItem{
		{Task: " dishes ", Amount: 50},
		{Task: "laundry", Amount: 80},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"dishes", "laundry"}, pt.Tasks())
	assert.Equal(t, 2, pt.Len())

	amt, ok := pt.Price("dishes")
	assert.True(t, ok)
	assert.Equal(t, int64(50), amt)

	_, ok = pt.Price("vacuum")
	assert.False(t, ok)
}

func TestNewPriceTableRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		items []PriceItem
		want  error
	}{
		{"empty", nil, ErrEmptyPriceList},
		{"blank label", []PriceItem{{Task: " ", Amount: 10}}, ErrEmptyTask},
		{"zero amount", []PriceItem{{Task: "a", Amount: 0}}, ErrInvalidAmount},
		{"negative amount", []PriceItem{{Task: "a", Amount: -5}}, ErrInvalidAmount},
		{"duplicate", []PriceItem{{Task: "a", Amount: 1}, {Task: "a ", Amount: 2}}, ErrDuplicateTask},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPriceTable(tt.items)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPriceTableItemsIsACopy(t *testing.T) {
	pt := DefaultPriceTable()
	items := pt.Items()
	items[0].Amount = 9999

	amt, ok := pt.Price(items[0].Task)
	require.True(t, ok)
	assert.NotEqual(t, int64(9999), amt)
}

func TestDefaultPriceTable(t *testing.T) {
	pt := DefaultPriceTable()
	assert.Equal(t, 5, pt.Len())
	amt, ok := pt.Price("Room cleaning")
	assert.True(t, ok)
	assert.Equal(t, int64(150), amt)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"50", 50, false},
		{" 80 ", 80, false},
		{"50.0", 50, false},
		{"1,200", 1200, false},
		{"", 0, true},
		{"abc", 0, true},
		{"12.5", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

package dashboard

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestStats_CollectionRate(t *testing.T) {
	s := Stats{TotalCollected: decimal.NewFromInt(750), TotalOutstanding: decimal.NewFromInt(250), TotalExpenses: decimal.NewFromInt(100)}
	assert.Equal(t, "75", s.CollectionRate().String())
	assert.Equal(t, "650", s.Net().String())

	assert.True(t, Stats{}.CollectionRate().IsZero())
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortByPriority(t *testing.T) {
	salesmen := []*Salesman{
		{ID: "3", Name: "Carol", Priority: 2},
		{ID: "2", Name: "Bob", Priority: 1},
		{ID: "1", Name: "Alice", Priority: 1},
	}

	SortByPriority(salesmen)

	assert.Equal(t, "1", salesmen[0].ID)
	assert.Equal(t, "2", salesmen[1].ID)
	assert.Equal(t, "3", salesmen[2].ID)
}

func TestActiveOnly(t *testing.T) {
	salesmen := []*Salesman{
		{ID: "1", Status: SalesmanActive},
		{ID: "2", Status: SalesmanInactive},
		{ID: "3", Status: SalesmanActive},
	}

	active := ActiveOnly(salesmen)

	assert.Len(t, active, 2)
	assert.Equal(t, "1", active[0].ID)
	assert.Equal(t, "3", active[1].ID)
}

package campus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/challan/core"
)

func TestCampus_School(t *testing.T) {
	conf := core.SchoolConfig{Name: "Default School", Phone: "042-111"}

	s := Campus{Name: "North Campus", Address: "Main Road"}.School(conf)
	assert.Equal(t, "North Campus", s.Name)
	assert.Equal(t, "Main Road", s.Address)
	assert.Equal(t, "042-111", s.Phone)

	s = Campus{}.School(conf)
	assert.Equal(t, "Default School", s.Name)
}

func TestService_Get_EmptyID(t *testing.T) {
	svc := NewService(nil)
	_, err := svc.Get(context.Background(), " ")
	assert.ErrorIs(t, err, ErrNotFound)
}

package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHookRegistry_RunsInOrderAndStopsOnError(t *testing.T) {
	r := NewHookRegistry[*[]string]()
	r.OnAfterCreate(func(ctx context.Context, seen *[]string) error {
		*seen = append(*seen, "first")
		return nil
	})
	r.OnAfterCreate(func(ctx context.Context, seen *[]string) error {
		*seen = append(*seen, "second")
		return errors.New("stop")
	})
	r.OnAfterCreate(func(ctx context.Context, seen *[]string) error {
		*seen = append(*seen, "third")
		return nil
	})

	var seen []string
	err := r.RunAfterCreate(context.Background(), &seen)

	assert.EqualError(t, err, "stop")
	assert.Equal(t, []string{"first", "second"}, seen)
	assert.NoError(t, r.RunAfterUpdate(context.Background(), &seen))
}

func TestListFilter_Normalize(t *testing.T) {
	f := ListFilter{Limit: 10000, Offset: -3}.Normalize()
	assert.Equal(t, MaxListLimit, f.Limit)
	assert.Equal(t, 0, f.Offset)
	assert.Equal(t, 50, ListFilter{}.Normalize().Limit)
}

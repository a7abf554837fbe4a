package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todolists/internal/service"
	"todolists/internal/testutil"
)

func TestParseTaskRef(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		want     TaskRef
		consumed int
	}{
		{"combined", []string{"a1"}, TaskRef{Letter: 'a', TaskNum: 1}, 1},
		{"combined multi digit", []string{"b12"}, TaskRef{Letter: 'b', TaskNum: 12}, 1},
		{"separated", []string{"c", "3"}, TaskRef{Letter: 'c', TaskNum: 3}, 2},
		{"last letter", []string{"z99"}, TaskRef{Letter: 'z', TaskNum: 99}, 1},
		{"trailing args ignored", []string{"a1", "extra"}, TaskRef{Letter: 'a', TaskNum: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, n, err := ParseTaskRef(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ref)
			assert.Equal(t, tt.consumed, n)
		})
	}
}

func TestParseTaskRef_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		required bool
	}{
		{"no args", nil, true},
		{"letter only", []string{"a"}, true},
		{"digits only", []string{"1"}, false},
		{"uppercase", []string{"A1"}, false},
		{"zero", []string{"a0"}, false},
		{"letter then word", []string{"a", "b"}, false},
		{"mixed suffix", []string{"a1x"}, false},
		{"unicode digits", []string{"a١"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseTaskRef(tt.args)
			require.Error(t, err)
			if tt.required {
				assert.ErrorIs(t, err, ErrTaskRefRequired)
			} else {
				assert.Contains(t, err.Error(), "invalid task reference")
			}
		})
	}
}

func TestResolveTaskRef(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.Seed("Groceries", service.Task{Name: "Milk"}, service.Task{Name: "Eggs"})
	svc.Seed("Chores", service.Task{Name: "Dishes"})

	list, task, err := ResolveTaskRef(svc, TaskRef{Letter: 'a', TaskNum: 2})
	require.NoError(t, err)
	assert.Equal(t, "Groceries", list.Name)
	assert.Equal(t, "Eggs", task.Name)

	_, task, err = ResolveTaskRef(svc, TaskRef{Letter: 'b', TaskNum: 1})
	require.NoError(t, err)
	assert.Equal(t, "Dishes", task.Name)

	_, _, err = ResolveTaskRef(svc, TaskRef{Letter: 'b', TaskNum: 2})
	assert.ErrorIs(t, err, service.ErrTaskNotFound)

	_, _, err = ResolveTaskRef(svc, TaskRef{Letter: 'c', TaskNum: 1})
	assert.ErrorIs(t, err, service.ErrListNotFound)
}

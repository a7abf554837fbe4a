package exitcode_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"todolists/internal/backend/fluree"
	"todolists/internal/exitcode"
	"todolists/internal/service"
)

func TestFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitcode.Success},
		{"task not found", fmt.Errorf("x: %w", service.ErrTaskNotFound), exitcode.UserError},
		{"list not found", service.ErrListNotFound, exitcode.UserError},
		{"ambiguous", service.ErrAmbiguousList, exitcode.UserError},
		{"invalid draft", service.ErrInvalidDraft, exitcode.UserError},
		{"unauthorized", &fluree.StatusError{Op: "query", StatusCode: 401, Kind: fluree.ErrRemoteError}, exitcode.AuthError},
		{"unavailable", fluree.ErrRemoteUnavailable, exitcode.BackendError},
		{"rejected", &fluree.StatusError{Op: "transact", StatusCode: 400, Kind: fluree.ErrTransactionRejected}, exitcode.BackendError},
		{"other", errors.New("boom"), exitcode.BackendError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitcode.For(tt.err))
		})
	}
}

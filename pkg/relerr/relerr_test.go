package relerr_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/sorrel/pkg/relerr"
)

func TestIsKind(t *testing.T) {
	err := relerr.NewInvalidKind("invoice")
	assert.True(t, relerr.IsRelationError(err))
	assert.True(t, relerr.IsKind(err, relerr.KindInvalidKind))
	assert.False(t, relerr.IsKind(err, relerr.KindNotFound))
	assert.False(t, relerr.IsKind(errors.New("plain"), relerr.KindInvalidKind))
}

func TestToHTTPError_StatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{relerr.NewInvalidKind("invoice"), http.StatusBadRequest},
		{relerr.NewEntityNotFound("audit", "a-1"), http.StatusUnprocessableEntity},
		{relerr.NewCrossTenantAccess("r-1"), http.StatusForbidden},
		{relerr.NewDuplicateActiveRelation("audit", "a-1", "p-1", "auditor"), http.StatusConflict},
		{relerr.NewNotFound("r-1"), http.StatusNotFound},
	}

	for _, tc := range cases {
		httpErr := relerr.ToHTTPError(tc.err)
		require.True(t, httperror.IsHTTPError(httpErr), "expected HTTP error for %v", tc.err)
		assert.Equal(t, tc.status, httperror.GetStatusCode(httpErr))
	}
}

func TestToHTTPError_PassesThroughOtherErrors(t *testing.T) {
	plain := errors.New("storage exploded")
	assert.Equal(t, plain, relerr.ToHTTPError(plain))
}

func TestDuplicateActiveRelationMeta(t *testing.T) {
	err := relerr.NewDuplicateActiveRelation("meeting", "m-1", "p-1", "responsible")
	assert.Equal(t, "meeting", err.Meta["entity_kind"])
	assert.Equal(t, "m-1", err.Meta["entity_id"])
	assert.Equal(t, "p-1", err.Meta["person_id"])
	assert.Equal(t, "responsible", err.Meta["role"])
}

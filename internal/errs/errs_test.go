package errs_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/rcliao/recall/internal/errs"
	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, errs.Code(""), errs.CodeOf(nil))
	assert.Equal(t, errs.Code(""), errs.CodeOf(stderrors.New("plain")))
	assert.Equal(t, errs.CodeStoreKindInvalid, errs.CodeOf(errs.New(errs.CodeStoreKindInvalid, "bad")))
}

func TestWrapKeepsChain(t *testing.T) {
	sentinel := stderrors.New("root cause")
	mid := fmt.Errorf("mid: %w", sentinel)
	outer := errs.Wrap(mid, errs.CodeStoreIOFailure, "persist")

	assert.ErrorIs(t, outer, sentinel)
	assert.True(t, errs.HasCode(outer, errs.CodeStoreIOFailure))
	assert.Contains(t, outer.Error(), "persist")
	assert.Nil(t, errs.Wrap(nil, errs.CodeStoreIOFailure, "x"))
	assert.Nil(t, errs.Wrapf(nil, errs.CodeStoreIOFailure, "x"))
}

func TestFieldsOf(t *testing.T) {
	err := errs.New(errs.CodeStoreKindInvalid, "bad kind",
		errs.Field("", "dropped"),
		errs.Field("kind", "semantic"),
	)
	fields := errs.FieldsOf(err)
	assert.Equal(t, "semantic", fields["kind"])
	assert.NotContains(t, fields, "")
	assert.Nil(t, errs.FieldsOf(stderrors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code   errs.Code
		status int
	}{
		{errs.CodeStoreKindInvalid, http.StatusBadRequest},
		{errs.CodeStoreItemInvalid, http.StatusBadRequest},
		{errs.CodeConfigValidateInvalidValue, http.StatusBadRequest},
		{errs.CodeServerItemNotFound, http.StatusNotFound},
		{errs.CodePathOutsideRoot, http.StatusForbidden},
		{errs.CodeEmbedUpstreamFailure, http.StatusBadGateway},
		{errs.CodeStoreIOFailure, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.status, errs.HTTPStatus(errs.New(tt.code, "x")))
		})
	}
	assert.Equal(t, http.StatusInternalServerError, errs.HTTPStatus(stderrors.New("plain")))
}

package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/haierkeys/fast-asset-delivery/pkg/code"

	"github.com/stretchr/testify/assert"
)

func TestFromError(t *testing.T) {
	cause := errors.New("disk full")

	appErr := FromError(NewAppError(code.ErrorStorageUnavailable, cause))
	assert.Equal(t, http.StatusServiceUnavailable, appErr.StatusCode())
	assert.ErrorIs(t, appErr, cause)

	appErr = FromError(code.ErrorDownloadForbidden)
	assert.Equal(t, code.ErrorDownloadForbidden.Code(), appErr.Code)
	assert.Equal(t, http.StatusForbidden, appErr.StatusCode())

	appErr = FromError(cause)
	assert.Equal(t, code.ErrorServerInternal.Code(), appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.StatusCode())
	assert.True(t, IsAppError(appErr.WithTraceID("abc")))
}

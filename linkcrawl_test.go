package linkcrawl_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/linkcrawl"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := linkcrawl.Errorf(linkcrawl.ENOTFOUND, "crawl %q not found", "abc")

	assert.Equal(t, linkcrawl.ENOTFOUND, linkcrawl.ErrorCode(err))
	assert.Equal(t, "crawl \"abc\" not found", linkcrawl.ErrorMessage(err))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("loading: %w", linkcrawl.Errorf(linkcrawl.EINVALID, "bad domain"))

	assert.Equal(t, linkcrawl.EINVALID, linkcrawl.ErrorCode(err))
	assert.Equal(t, "bad domain", linkcrawl.ErrorMessage(err))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, linkcrawl.EINTERNAL, linkcrawl.ErrorCode(err))
	assert.Equal(t, "Internal error.", linkcrawl.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, linkcrawl.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, linkcrawl.ErrorMessage(nil))
}

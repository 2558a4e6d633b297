package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, NotFound, KindOf(New(NotFound, "gone")))
	assert.Equal(t, BadInput, KindOf(Newf(BadInput, "bad %s", "thing")))
	assert.Equal(t, Internal, KindOf(errors.New("plain")))
	assert.Equal(t, Internal, KindOf(nil))
}

func TestKindOfSurvivesWrapping(t *testing.T) {
	inner := New(DataUnavailable, "upstream down")
	outer := fmt.Errorf("query failed: %w", inner)
	assert.Equal(t, DataUnavailable, KindOf(outer))
}

func TestKindOfDeadline(t *testing.T) {
	assert.Equal(t, Timeout, KindOf(context.DeadlineExceeded))
	assert.Equal(t, Timeout, KindOf(fmt.Errorf("call: %w", context.DeadlineExceeded)))
}

func TestWrapPreservesChain(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(PushFailed, "push", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, PushFailed, KindOf(err))

	assert.Nil(t, Wrap(PushFailed, "push", nil))
}

func TestIs(t *testing.T) {
	err := New(Timeout, "too slow")
	assert.True(t, Is(err, Timeout))
	assert.False(t, Is(err, NotFound))
	assert.False(t, Is(nil, Internal))
}

func TestErrorMessageCarriesKind(t *testing.T) {
	err := Wrap(NotFound, "trip lookup", errors.New("no rows"))
	assert.Equal(t, "not-found: trip lookup: no rows", err.Error())
}

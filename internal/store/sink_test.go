package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"main/internal/model"
	"main/pkg/exception"
)

func TestUpsertRejectsMissingIdentifier(t *testing.T) {
	s := NewSink(nil)

	err := s.Upsert(t.Context(), model.CanonicalRecord{})
	require.ErrorIs(t, err, exception.ErrMissingIdentifier)
}

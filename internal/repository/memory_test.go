package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemory_PutContactMessage(t *testing.T) {
	m := NewMemory()
	msg := sampleMessage()

	require.NoError(t, m.PutContactMessage(context.Background(), msg))
	require.ErrorIs(t, m.PutContactMessage(context.Background(), msg), ErrDuplicateMessage)

	msg.ID = ""
	require.Error(t, m.PutContactMessage(context.Background(), msg))
	require.Len(t, m.Messages(), 1)
}

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolveDate(t *testing.T) {
	now := time.Date(2024, 2, 14, 12, 0, 0, 0, time.UTC)

	t.Run("empty is not an error", func(t *testing.T) {
		date, year, err := resolveDateAt("", now)
		require.NoError(t, err)
		require.Empty(t, date)
		require.Zero(t, year)
	})

	t.Run("iso passthrough", func(t *testing.T) {
		date, year, err := resolveDateAt("2023-02-11", now)
		require.NoError(t, err)
		require.Equal(t, "2023-02-11", date)
		require.Equal(t, 2023, year)
	})

	t.Run("natural language", func(t *testing.T) {
		date, year, err := resolveDateAt("last saturday", now)
		require.NoError(t, err)
		require.Equal(t, "2024-02-10", date)
		require.Equal(t, 2024, year)
	})

	t.Run("unrecognized", func(t *testing.T) {
		_, _, err := resolveDateAt("not a date at all", now)
		require.Error(t, err)
	})
}

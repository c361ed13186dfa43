package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalToUTC(t *testing.T) {
	t.Run("winter offset in US/Central", func(t *testing.T) {
		got, err := LocalToUTC("2022-12-01", "09:00", "US/Central")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2022, 12, 1, 15, 0, 0, 0, time.UTC), got)
	})

	t.Run("summer offset in US/Central", func(t *testing.T) {
		got, err := LocalToUTC("2022-07-01", "09:00", "US/Central")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2022, 7, 1, 14, 0, 0, 0, time.UTC), got)
	})

	t.Run("UTC passes through", func(t *testing.T) {
		got, err := LocalToUTC("2022-12-01", "09:00", "UTC")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2022, 12, 1, 9, 0, 0, 0, time.UTC), got)
	})

	t.Run("bad date string", func(t *testing.T) {
		_, err := LocalToUTC("12/01/2022", "09:00", "US/Central")
		assert.Error(t, err)
	})

	t.Run("bad time string", func(t *testing.T) {
		_, err := LocalToUTC("2022-12-01", "9am", "US/Central")
		assert.Error(t, err)
	})

	t.Run("unknown zone", func(t *testing.T) {
		_, err := LocalToUTC("2022-12-01", "09:00", "Mars/Olympus")
		assert.Error(t, err)
	})
}

func TestUTCToLocal(t *testing.T) {
	instant := time.Date(2022, 12, 1, 15, 0, 0, 0, time.UTC)

	t.Run("primary zone wins", func(t *testing.T) {
		date, clock := UTCToLocal(instant, "US/Central", "US/Eastern")
		assert.Equal(t, "2022-12-01", date)
		assert.Equal(t, "09:00", clock)
	})

	t.Run("fallback used when primary blank", func(t *testing.T) {
		date, clock := UTCToLocal(instant, "", "US/Eastern")
		assert.Equal(t, "2022-12-01", date)
		assert.Equal(t, "10:00", clock)
	})

	t.Run("unknown primary falls through to fallback", func(t *testing.T) {
		_, clock := UTCToLocal(instant, "Mars/Olympus", "US/Central")
		assert.Equal(t, "09:00", clock)
	})

	t.Run("UTC when both blank", func(t *testing.T) {
		date, clock := UTCToLocal(instant, "", "")
		assert.Equal(t, "2022-12-01", date)
		assert.Equal(t, "15:00", clock)
	})

	t.Run("date rolls over across midnight", func(t *testing.T) {
		late := time.Date(2022, 12, 1, 3, 30, 0, 0, time.UTC)
		date, clock := UTCToLocal(late, "US/Central", "")
		assert.Equal(t, "2022-11-30", date)
		assert.Equal(t, "21:30", clock)
	})
}

func TestOffsetHours(t *testing.T) {
	t.Run("CST is minus six", func(t *testing.T) {
		h, err := OffsetHours("US/Central", time.Date(2022, 12, 1, 12, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, -6, h)
	})

	t.Run("CDT is minus five", func(t *testing.T) {
		h, err := OffsetHours("US/Central", time.Date(2022, 7, 1, 12, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, -5, h)
	})

	t.Run("half-hour zone truncates toward zero", func(t *testing.T) {
		h, err := OffsetHours("Asia/Kolkata", time.Date(2022, 12, 1, 12, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, 5, h)
	})

	t.Run("unknown zone", func(t *testing.T) {
		_, err := OffsetHours("Mars/Olympus", time.Now())
		assert.Error(t, err)
	})
}

package helpers

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullStringConversions(t *testing.T) {
	assert.Nil(t, NullStringValue(sql.NullString{}))
	assert.Equal(t, "a.png", NullStringValue(GetContentNullString("a.png")))
	assert.False(t, GetContentNullString("").Valid)
	assert.False(t, AsNullString(nil).Valid)
	assert.Equal(t, sql.NullString{String: "b", Valid: true}, AsNullString([]byte("b")))
}

func TestAsInt64(t *testing.T) {
	for _, v := range []any{int64(7), int32(7), 7, "7", []byte("7")} {
		n, err := AsInt64(v)
		require.NoError(t, err)
		assert.Equal(t, int64(7), n)
	}
	_, err := AsInt64(3.5)
	assert.Error(t, err)
}

func TestAsTime(t *testing.T) {
	want := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	got, err := AsTime("2024-05-01 10:30:00")
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	got, err = AsTime(want)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = AsTime("yesterday")
	assert.Error(t, err)
}

package session

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRoomCodeShape(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := GenerateRoomCode()
		require.NoError(t, err)
		assert.Len(t, code, roomCodeLength)
		assert.True(t, ValidRoomCode(code), "generated %q", code)
		assert.Equal(t, strings.ToUpper(code), code)
	}
}

func TestNormalizeRoomCode(t *testing.T) {
	assert.Equal(t, "AB12CD", NormalizeRoomCode("ab12cd"))
	assert.Equal(t, "AB12CD", NormalizeRoomCode("  Ab12Cd "))
	assert.Equal(t, "", NormalizeRoomCode("   "))
}

func TestValidRoomCode(t *testing.T) {
	assert.True(t, ValidRoomCode("ABC123"))
	assert.True(t, ValidRoomCode("000000"))

	assert.False(t, ValidRoomCode(""))
	assert.False(t, ValidRoomCode("ABC12"))   // too short
	assert.False(t, ValidRoomCode("ABC1234")) // too long
	assert.False(t, ValidRoomCode("abc123"))  // lowercase is pre-normalized input
	assert.False(t, ValidRoomCode("AB-123"))
}

package charset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAllLatin1(t *testing.T) {
	t.Parallel()

	assert.True(t, IsAllLatin1("hello"))
	assert.True(t, IsAllLatin1("Àïîñòðîô"))
	assert.False(t, IsAllLatin1("日本語"))
}

func TestCouldBeWindows1251(t *testing.T) {
	t.Parallel()

	// "Àïîñòðîô" read as Latin-1 is the byte sequence below; reinterpreted
	// as Windows-1251 it decodes to "Апостроф".
	misread := "Àïîñòðîô"
	require.True(t, IsAllLatin1(misread))
	b := UTF8ToLatin1(misread)

	assert.True(t, CouldBeWindows1251(b))

	decoded, err := Windows1251ToUTF8(b)
	require.NoError(t, err)
	assert.Equal(t, "Апостроф", decoded)
}

func TestCouldBeWindows1251RejectsPlainAscii(t *testing.T) {
	t.Parallel()

	assert.False(t, CouldBeWindows1251([]byte("hello world")))
}

func TestCouldBeWindows1251RejectsNonCyrillicHighBytes(t *testing.T) {
	t.Parallel()

	// 0xA7 decodes to "§" under Windows-1251, not a Cyrillic letter.
	assert.False(t, CouldBeWindows1251([]byte{0xA7}))
	// 0x98 is unassigned in Windows-1251.
	assert.False(t, CouldBeWindows1251([]byte{0x98}))
}

package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/pocket/internal/encoding"
)

const header = "date;description;amount;type;category\n2024-03-01;Padaria São João;12,50;expense;food\n"

func readAll(t *testing.T, input []byte) (string, string) {
	t.Helper()

	r, charset, err := encoding.Detect(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got), charset
}

func TestDetect(t *testing.T) {
	latin1, err := charmap.Windows1252.NewEncoder().Bytes([]byte(header))
	require.NoError(t, err)

	utf16le, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(header))
	require.NoError(t, err)

	utf16be, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(header))
	require.NoError(t, err)

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "UTF8", input: []byte(header)},
		{name: "UTF8BOM", input: append([]byte{0xEF, 0xBB, 0xBF}, header...)},
		{name: "Windows1252", input: latin1},
		{name: "UTF16LE", input: utf16le},
		{name: "UTF16BE", input: utf16be},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := readAll(t, tt.input)
			assert.Equal(t, header, got)
		})
	}
}

func TestDetect_ReportsCharset(t *testing.T) {
	_, charset := readAll(t, []byte(header))
	assert.Equal(t, encoding.UTF8, charset)

	_, charset = readAll(t, append([]byte{0xFF, 0xFE}, 'a', 0))
	assert.Equal(t, encoding.UTF16LE, charset)
}

func TestDetect_LargeInput(t *testing.T) {
	input := strings.Repeat("2024-03-01;Café;1,00;expense;food\n", 500)

	got, _ := readAll(t, []byte(input))
	assert.Equal(t, input, got)
}

func TestDetect_Empty(t *testing.T) {
	got, charset := readAll(t, nil)
	assert.Empty(t, got)
	assert.Equal(t, encoding.UTF8, charset)
}

func TestNewUTF8Reader(t *testing.T) {
	r, err := encoding.NewUTF8Reader(strings.NewReader("ok"))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(got))
}

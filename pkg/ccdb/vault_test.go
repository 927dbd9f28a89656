package ccdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeVault(t *testing.T) {
	rows := [][]string{
		{"1.0", "2.0", "3.0"},
		{"4.0", "5.0", "6.0"},
	}
	assert.Equal(t, "1.0|2.0|3.0|4.0|5.0|6.0", EncodeVault(rows))
}

func TestEncodeVaultEmpty(t *testing.T) {
	assert.Equal(t, "", EncodeVault(nil))
	assert.Equal(t, "", EncodeVault([][]string{}))
}

func TestDecodeVault(t *testing.T) {
	rows := DecodeVault("1.0|2.0|3.0|4.0|5.0|6.0", 3)
	assert.Equal(t, [][]string{
		{"1.0", "2.0", "3.0"},
		{"4.0", "5.0", "6.0"},
	}, rows)
}

func TestDecodeVaultSingleColumn(t *testing.T) {
	rows := DecodeVault("a|b|c", 1)
	assert.Equal(t, [][]string{{"a"}, {"b"}, {"c"}}, rows)
}

func TestDecodeVaultPartialTrailingRow(t *testing.T) {
	rows := DecodeVault("1|2|3|4|5", 3)
	assert.Equal(t, [][]string{{"1", "2", "3"}, {"4", "5"}}, rows)
}

func TestDecodeVaultEmpty(t *testing.T) {
	assert.Nil(t, DecodeVault("", 3))
	assert.Nil(t, DecodeVault("1|2", 0))
}

func TestVaultRoundTrip(t *testing.T) {
	rows := [][]string{
		{"on", "off"},
		{"-1", "0.5"},
	}
	assert.Equal(t, rows, DecodeVault(EncodeVault(rows), 2))
}

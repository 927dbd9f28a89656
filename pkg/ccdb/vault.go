package ccdb

import "strings"

// VaultSeparator separates cells inside a constant set's vault blob.
// The vault is row-major: all cells of row 0, then row 1, and so on.
const VaultSeparator = "|"

// EncodeVault flattens rows of cells into a vault blob.
func EncodeVault(rows [][]string) string {
	var cells []string
	for _, row := range rows {
		cells = append(cells, row...)
	}
	return strings.Join(cells, VaultSeparator)
}

// DecodeVault splits a vault blob back into rows of columnCount cells.
// A trailing partial row is returned as-is rather than dropped.
func DecodeVault(vault string, columnCount int) [][]string {
	if vault == "" || columnCount <= 0 {
		return nil
	}
	cells := strings.Split(vault, VaultSeparator)
	var rows [][]string
	for start := 0; start < len(cells); start += columnCount {
		end := start + columnCount
		if end > len(cells) {
			end = len(cells)
		}
		rows = append(rows, cells[start:end])
	}
	return rows
}

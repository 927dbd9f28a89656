package provider

import "strings"

// likePattern translates a glob search pattern to a SQL LIKE pattern:
// '*' becomes '%', '?' becomes '_', and literal '%'/'_' are escaped
// with a backslash. Queries using the result must carry ESCAPE '\'.
func likePattern(glob string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`%`, `\%`,
		`_`, `\_`,
	)
	escaped := r.Replace(glob)
	escaped = strings.ReplaceAll(escaped, "*", "%")
	escaped = strings.ReplaceAll(escaped, "?", "_")
	return escaped
}

// limitClause renders LIMIT/OFFSET with the CCDB convention that zero
// means "unbounded" and "from the start" respectively. SQLite requires
// a LIMIT when OFFSET is present, so -1 stands in for "no limit".
func limitClause(limit, offset int) string {
	switch {
	case limit == 0 && offset == 0:
		return ""
	case limit == 0:
		return " LIMIT -1 OFFSET ?"
	case offset == 0:
		return " LIMIT ?"
	default:
		return " LIMIT ? OFFSET ?"
	}
}

// limitArgs returns the arguments matching limitClause.
func limitArgs(limit, offset int) []any {
	switch {
	case limit == 0 && offset == 0:
		return nil
	case limit == 0:
		return []any{offset}
	case offset == 0:
		return []any{limit}
	default:
		return []any{limit, offset}
	}
}

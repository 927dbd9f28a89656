// Package convert turns a legacy SVN-based calibration tree into CCDB
// records by walking an XML rules directory and issuing CLI commands
// per discovered directory, table and data file.
package convert

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// ColumnRule declares one column of a table rule.
type ColumnRule struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type,attr"`
}

// TableRule is one <type> element of a rule file: the table definition
// derived from the legacy tree.
type TableRule struct {
	Name      string       `xml:"name,attr"`
	Rows      int          `xml:"nrow,attr"`
	NameValue int          `xml:"namevalue,attr"`
	Comment   string       `xml:"comment"`
	Columns   []ColumnRule `xml:"column"`
}

// IsNameValue reports whether the table's data files use the legacy
// name-value format.
func (r *TableRule) IsNameValue() bool { return r.NameValue != 0 }

// ParseRuleFile reads every <type> element of a rule XML file,
// wherever it is nested.
func ParseRuleFile(path string) ([]TableRule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rule file: %w", err)
	}
	defer f.Close()
	return parseRules(f)
}

func parseRules(r io.Reader) ([]TableRule, error) {
	dec := xml.NewDecoder(r)
	var rules []TableRule
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse rule xml: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "type" {
			continue
		}
		var rule TableRule
		if err := dec.DecodeElement(&rule, &start); err != nil {
			return nil, fmt.Errorf("failed to decode type element: %w", err)
		}
		rule.Comment = sanitizeComment(rule.Comment)
		rules = append(rules, rule)
	}
	return rules, nil
}

// sanitizeComment flattens a rule comment to a single shell-safe line.
func sanitizeComment(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\r\n", `\n`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, `"`, "'")
	return s
}

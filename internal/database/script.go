package database

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ExecScript runs a multi-statement SQL script, one statement per ";" terminator.
// "--" line comments outside quotes are stripped. Semicolons inside string literals are not supported.
func ExecScript(ctx context.Context, db *gorm.DB, script string) error {
	lines := strings.Split(script, "\n")

	stripped := make([]string, 0, len(lines))
	for _, line := range lines {
		stripped = append(stripped, stripLineComment(line))
	}

	statements := strings.Split(strings.Join(stripped, "\n"), ";")
	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("%w: %v: when executing > %s", ErrStatement, err, stmt)
		}
	}
	return nil
}

// stripLineComment removes a trailing "--" comment, leaving quoted text intact.
func stripLineComment(line string) string {
	const comment = "--"
	var kept strings.Builder
	rest := line

	for len(rest) > 0 {
		dq := indexOr(rest, `"`, len(line)+1)
		sq := indexOr(rest, "'", len(line)+1)
		ci := indexOr(rest, comment, len(line)+1)

		var quote string
		var at int
		switch {
		case dq < sq && dq < ci:
			quote, at = `"`, dq
		case sq < dq && sq < ci:
			quote, at = "'", sq
		case ci < dq && ci < sq:
			kept.WriteString(rest[:ci])
			return kept.String()
		default:
			kept.WriteString(rest)
			return kept.String()
		}

		kept.WriteString(rest[:at+1])
		rest = rest[at+1:]

		end := strings.Index(rest, quote)
		if end < 0 {
			kept.WriteString(rest)
			return kept.String()
		}
		kept.WriteString(rest[:end+1])
		rest = rest[end+1:]
	}
	return kept.String()
}

func indexOr(s, substr string, missing int) int {
	if i := strings.Index(s, substr); i >= 0 {
		return i
	}
	return missing
}

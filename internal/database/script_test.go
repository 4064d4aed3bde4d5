package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripLineComment(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"SELECT 1; -- trailing", "SELECT 1; "},
		{"-- whole line", ""},
		{"INSERT INTO t VALUES ('a--b'); -- c", "INSERT INTO t VALUES ('a--b'); "},
		{`SELECT "x -- y" -- z`, `SELECT "x -- y" `},
		{"no comment", "no comment"},
		{"unterminated 'quote -- kept", "unterminated 'quote -- kept"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripLineComment(tt.line), tt.line)
	}
}

func TestExecScript(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()

	script := `
-- scratch table
CREATE TABLE scratch (
  id INTEGER PRIMARY KEY, -- key
  note TEXT
);
INSERT INTO scratch (id, note) VALUES (1, 'one -- not a comment');

INSERT INTO scratch (id, note) VALUES (2, 'two');
`
	require.NoError(t, ExecScript(ctx, d.DB(), script))

	var notes []string
	require.NoError(t, d.DB().Raw("SELECT note FROM scratch ORDER BY id").Scan(&notes).Error)
	assert.Equal(t, []string{"one -- not a comment", "two"}, notes)

	err := ExecScript(ctx, d.DB(), "INSERT INTO missing_table VALUES (1);")
	assert.ErrorIs(t, err, ErrStatement)
}

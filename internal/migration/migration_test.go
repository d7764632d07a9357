package migration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatementsAreIdempotent(t *testing.T) {
	r := NewRunner()
	for _, s := range r.steps() {
		assert.Contains(t, s.sql, "IF NOT EXISTS", s.name)
	}
	for _, idx := range r.indexes() {
		assert.True(t, strings.HasPrefix(idx, "CREATE INDEX IF NOT EXISTS"), idx)
	}
}

func TestStepsCoverEveryTable(t *testing.T) {
	steps := NewRunner().steps()
	assert.Len(t, steps, len(tables))
	for i, table := range tables {
		assert.Contains(t, steps[i].sql, "CREATE TABLE IF NOT EXISTS "+table+" ")
	}
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "1.0.0", NewRunner().Version())
}

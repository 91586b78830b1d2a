package models

import (
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	createTableRe = regexp.MustCompile(`(?i)CREATE TABLE (?:IF NOT EXISTS )?(\w+)`)
	varcharRe     = regexp.MustCompile(`(?i)^\s*(\w+) VARCHAR\((\d+)\)`)
	sizeTagRe     = regexp.MustCompile(`size:(\d+)`)
)

// varcharSizes extracts column byte limits per table from the migration DDL.
func varcharSizes(t *testing.T) map[string]map[string]int {
	t.Helper()
	ddl, err := os.ReadFile(filepath.Join("..", "..", "migration", "scripts", "000001_create_billing_tables.up.sql"))
	require.NoError(t, err)

	sizes := make(map[string]map[string]int)
	var table string
	for _, line := range strings.Split(string(ddl), "\n") {
		if m := createTableRe.FindStringSubmatch(line); m != nil {
			table = m[1]
			sizes[table] = make(map[string]int)
			continue
		}
		if table == "" {
			continue
		}
		if m := varcharRe.FindStringSubmatch(line); m != nil {
			n, err := strconv.Atoi(m[2])
			require.NoError(t, err)
			sizes[table][m[1]] = n
		}
	}
	return sizes
}

func columnName(field string) string {
	var b strings.Builder
	for i, r := range field {
		if i > 0 && r >= 'A' && r <= 'Z' {
			prev := field[i-1]
			if prev >= 'a' && prev <= 'z' || prev >= '0' && prev <= '9' {
				b.WriteByte('_')
			}
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// The SQL migration path and GORM auto-migration must produce the same string
// column limits, or a value written under one strategy can be truncated or
// rejected under the other.
func TestStringColumnSizesMatchMigration(t *testing.T) {
	ddlSizes := varcharSizes(t)
	require.NotEmpty(t, ddlSizes)

	for _, model := range []interface {
		TableName() string
	}{PlanModel{}, SubscriptionModel{}, TransitionLogModel{}} {
		table := model.TableName()
		columns, ok := ddlSizes[table]
		require.True(t, ok, "table %s missing from migration DDL", table)

		typ := reflect.TypeOf(model)
		for i := 0; i < typ.NumField(); i++ {
			field := typ.Field(i)
			m := sizeTagRe.FindStringSubmatch(field.Tag.Get("gorm"))
			if m == nil {
				continue
			}
			tagSize, err := strconv.Atoi(m[1])
			require.NoError(t, err)

			column := columnName(field.Name)
			ddlSize, ok := columns[column]
			require.True(t, ok, "%s.%s has a size tag but no VARCHAR in the DDL", table, column)
			assert.Equal(t, ddlSize, tagSize, "%s.%s size drifted between DDL and model tag", table, column)
		}
	}
}

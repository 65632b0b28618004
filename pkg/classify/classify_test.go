package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSQL(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Kind
	}{
		{"select", "SELECT * FROM users", Read},
		{"leading whitespace", "  select 1", Read},
		{"lowercase", "select id from t", Read},
		{"cte", "WITH x AS (SELECT 1) SELECT * FROM x", Read},
		{"show", "SHOW DATABASES", Read},
		{"describe", "DESCRIBE users", Read},
		{"explain", "EXPLAIN SELECT 1", Read},
		{"pragma", "PRAGMA table_info(users)", Read},
		{"insert", "INSERT INTO t (a) VALUES (1)", Write},
		{"update", "update t set a=1", Write},
		{"delete", "DELETE FROM t WHERE id = 1", Write},
		{"ddl", "CREATE TABLE t (id int)", Write},
		{"insert returning", "insert into t (a) values (1) returning a", Read},
		{"update returning", "UPDATE t SET a=1 RETURNING id", Read},
		{"returning in literal", "INSERT INTO log (msg) VALUES ('RETURNING soon')", Read},
		{"empty", "", Write},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SQL(tt.text))
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "read", Read.String())
	assert.Equal(t, "write", Write.String())
}

package store

import (
	"fmt"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql" // MySQL driver.
	_ "github.com/lib/pq"              // PostgreSQL driver.
	_ "modernc.org/sqlite"             // SQLite driver.
)

// dialect captures the differences between supported databases.
type dialect struct {
	name          string
	driver        string
	idColumn      string
	numbered      bool
	lastInsertID  bool
	createdAtType string
}

var dialects = map[string]dialect{
	"sqlite": {
		name:          "sqlite",
		driver:        "sqlite",
		idColumn:      "id INTEGER PRIMARY KEY AUTOINCREMENT",
		lastInsertID:  true,
		createdAtType: "TEXT",
	},
	"postgres": {
		name:          "postgres",
		driver:        "postgres",
		idColumn:      "id BIGSERIAL PRIMARY KEY",
		numbered:      true,
		createdAtType: "TEXT",
	},
	"mysql": {
		name:          "mysql",
		driver:        "mysql",
		idColumn:      "id BIGINT AUTO_INCREMENT PRIMARY KEY",
		lastInsertID:  true,
		createdAtType: "VARCHAR(40)",
	},
}

func lookupDialect(name string) (dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqlite", "sqlite3":
		return dialects["sqlite"], nil
	case "postgres", "postgresql":
		return dialects["postgres"], nil
	case "mysql":
		return dialects["mysql"], nil
	default:
		return dialect{}, fmt.Errorf("unsupported database driver %q (use sqlite, postgres or mysql)", name)
	}
}

// rebind converts ? placeholders to $1, $2, ... for numbered dialects.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d dialect) schema() []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS session_results (
			%s,
			poem TEXT NOT NULL,
			wpm INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			mistakes INTEGER NOT NULL,
			duration_sec INTEGER NOT NULL,
			created_at %s NOT NULL
		)`, d.idColumn, d.createdAtType),
	}
}

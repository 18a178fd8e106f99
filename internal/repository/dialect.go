package repository

import "fmt"

// Dialect holds the backend-specific SQL of the price store.
type Dialect struct {
	Name string
	// TxDDL is true when DROP/CREATE can run inside the insert transaction.
	TxDDL bool
	// Create returns the statements that create an empty price table.
	Create func(table string) []string
	// Swap atomically exchanges a fully loaded staging table with the live one.
	// Only used when TxDDL is false.
	Swap func(staging, table string) []string
}

// SQLiteDialect stores prices in a plain SQLite table with an (ind, date) index.
var SQLiteDialect = Dialect{
	Name:  "sqlite",
	TxDDL: true,
	Create: func(table string) []string {
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				ind       TEXT NOT NULL,
				date      TEXT NOT NULL,
				open      REAL NOT NULL,
				high      REAL NOT NULL,
				low       REAL NOT NULL,
				close     REAL NOT NULL,
				adj_close REAL NOT NULL
			)`, table),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_ind_date ON %s(ind, date)`, table, table),
		}
	},
}

// ClickHouseDialect stores prices in a MergeTree ordered by (ind, date).
var ClickHouseDialect = Dialect{
	Name:  "clickhouse",
	TxDDL: false,
	Create: func(table string) []string {
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				ind       LowCardinality(String),
				date      String,
				open      Float64,
				high      Float64,
				low       Float64,
				close     Float64,
				adj_close Float64
			) ENGINE = MergeTree ORDER BY (ind, date)`, table),
		}
	},
	Swap: func(staging, table string) []string {
		return []string{
			fmt.Sprintf(`EXCHANGE TABLES %s AND %s`, staging, table),
			fmt.Sprintf(`DROP TABLE IF EXISTS %s`, staging),
		}
	},
}

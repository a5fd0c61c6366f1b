package sqlite

// Schema DDL. Every table of a Store is kept in the one records table with
// the row encoded as a JSON object; the tables table keeps the names of
// tables that have no rows.
const (
	createTables = `CREATE TABLE IF NOT EXISTS tables (
    name TEXT PRIMARY KEY
);`

	createRecords = `CREATE TABLE IF NOT EXISTS records (
    table_name TEXT NOT NULL,
    id INTEGER NOT NULL,
    data TEXT NOT NULL,
    PRIMARY KEY (table_name, id),
    FOREIGN KEY (table_name) REFERENCES tables(name)
);`

	createRecordsIndex = `CREATE INDEX IF NOT EXISTS idx_records_table ON records(table_name);`
)

// schemaStatements lists the DDL in execution order.
var schemaStatements = []string{
	createTables,
	createRecords,
	createRecordsIndex,
}

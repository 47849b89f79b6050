package loader

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	schemaloader "github.com/usna78/dbix-class-schema-loader"
)

// SQLiteInspector reads schema metadata through sqlite_master and PRAGMAs.
type SQLiteInspector struct {
	baseInspector
}

// NewSQLiteInspector creates a new SQLite inspector.
func NewSQLiteInspector() *SQLiteInspector {
	return &SQLiteInspector{baseInspector: newBaseInspector(TypeSQLite)}
}

// ListSchemas returns the single schema SQLite exposes.
func (i *SQLiteInspector) ListSchemas(db *sql.DB) ([]string, error) {
	return []string{"main"}, nil
}

// Inspect reads every selected table into the shared schema model.
func (i *SQLiteInspector) Inspect(db *sql.DB, config InspectConfig) (*schemaloader.DatabaseSchema, error) {
	dbInfo, err := i.DatabaseInfo(db)
	if err != nil {
		return nil, err
	}

	schema := &schemaloader.DatabaseSchema{
		Name:         "main",
		DatabaseInfo: dbInfo,
	}

	names, err := i.tableNames(db)
	if err != nil {
		return nil, err
	}

	for _, name := range names {
		if !shouldIncludeTable(name, config) {
			continue
		}
		table, err := i.inspectTable(db, name)
		if err != nil {
			return nil, err
		}
		schema.Tables = append(schema.Tables, table)
	}

	if config.IncludeViews {
		views, err := i.inspectViews(db, config)
		if err != nil {
			return nil, err
		}
		schema.Views = views
	}

	return schema, nil
}

func (i *SQLiteInspector) tableNames(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResultScanFailed, err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (i *SQLiteInspector) inspectTable(db *sql.DB, tableName string) (*schemaloader.TableInfo, error) {
	table := &schemaloader.TableInfo{
		Name:   tableName,
		Schema: "main",
	}

	columns, pkColumns, err := i.inspectColumns(db, tableName)
	if err != nil {
		return nil, err
	}
	table.Columns = columns

	if len(pkColumns) > 0 {
		table.Constraints = append(table.Constraints, schemaloader.ConstraintInfo{
			Name:    tableName + "_pkey",
			Type:    schemaloader.ConstraintPrimaryKey,
			Columns: pkColumns,
		})
	}

	fks, err := i.inspectForeignKeys(db, tableName)
	if err != nil {
		return nil, err
	}
	table.Constraints = append(table.Constraints, fks...)

	indexes, uniques, err := i.inspectIndexes(db, tableName)
	if err != nil {
		return nil, err
	}
	table.Indexes = indexes
	table.Constraints = append(table.Constraints, uniques...)

	return table, nil
}

// inspectColumns reads PRAGMA table_info in declaration order. The pk column
// carries the 1-based position within the primary key, 0 for non-key columns.
func (i *SQLiteInspector) inspectColumns(db *sql.DB, tableName string) ([]*schemaloader.ColumnInfo, []string, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%q)", tableName))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	var columns []*schemaloader.ColumnInfo
	type pkEntry struct {
		name string
		pos  int
	}
	var pk []pkEntry

	for rows.Next() {
		var cid, notNull, pkPos int
		var name, dataType string
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultValue, &pkPos); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrResultScanFailed, err)
		}

		column := &schemaloader.ColumnInfo{
			Name:         name,
			DataType:     dataType,
			Nullable:     notNull == 0 && pkPos == 0,
			IsPrimaryKey: pkPos > 0,
		}
		if defaultValue.Valid {
			column.DefaultValue = defaultValue.String
		}
		if pkPos > 0 {
			pk = append(pk, pkEntry{name: name, pos: pkPos})
		}
		i.mapColumn(column)
		columns = append(columns, column)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	sort.Slice(pk, func(a, b int) bool { return pk[a].pos < pk[b].pos })
	pkColumns := make([]string, 0, len(pk))
	for _, entry := range pk {
		pkColumns = append(pkColumns, entry.name)
	}

	// An INTEGER single-column primary key is a rowid alias
	if len(pkColumns) == 1 {
		for _, column := range columns {
			if column.Name == pkColumns[0] && strings.EqualFold(column.DataType, "integer") {
				column.AutoIncrement = true
			}
		}
	}

	return columns, pkColumns, nil
}

// inspectForeignKeys groups PRAGMA foreign_key_list rows by constraint id.
func (i *SQLiteInspector) inspectForeignKeys(db *sql.DB, tableName string) ([]schemaloader.ConstraintInfo, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA foreign_key_list(%q)", tableName))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	byID := map[int]*schemaloader.ConstraintInfo{}
	var order []int
	for rows.Next() {
		var id, seq int
		var refTable, from string
		var to sql.NullString
		var onUpdate, onDelete, match string

		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResultScanFailed, err)
		}

		fk, ok := byID[id]
		if !ok {
			fk = &schemaloader.ConstraintInfo{
				Name:            fmt.Sprintf("%s_fk_%d", tableName, id),
				Type:            schemaloader.ConstraintForeignKey,
				ReferencedTable: refTable,
			}
			byID[id] = fk
			order = append(order, id)
		}
		fk.Columns = append(fk.Columns, from)
		if to.Valid {
			fk.ReferencedColumns = append(fk.ReferencedColumns, to.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Ints(order)
	constraints := make([]schemaloader.ConstraintInfo, 0, len(order))
	for _, id := range order {
		constraints = append(constraints, *byID[id])
	}
	return constraints, nil
}

// inspectIndexes reads index_list and index_info. Unique indexes created by
// UNIQUE table constraints (origin "u") also surface as constraints.
func (i *SQLiteInspector) inspectIndexes(db *sql.DB, tableName string) ([]schemaloader.IndexInfo, []schemaloader.ConstraintInfo, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA index_list(%q)", tableName))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	type indexEntry struct {
		name   string
		unique bool
		origin string
	}
	var entries []indexEntry
	for rows.Next() {
		var seq, unique, partial int
		var name, origin string

		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrResultScanFailed, err)
		}
		entries = append(entries, indexEntry{name: name, unique: unique == 1, origin: origin})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var indexes []schemaloader.IndexInfo
	var uniques []schemaloader.ConstraintInfo
	for _, entry := range entries {
		columns, err := i.indexColumns(db, entry.name)
		if err != nil {
			return nil, nil, err
		}

		if entry.unique && entry.origin == "u" {
			uniques = append(uniques, schemaloader.ConstraintInfo{
				Name:    entry.name,
				Type:    schemaloader.ConstraintUnique,
				Columns: columns,
			})
		}
		if strings.HasPrefix(entry.name, "sqlite_autoindex_") {
			continue
		}
		indexes = append(indexes, schemaloader.IndexInfo{
			Name:     entry.name,
			Columns:  columns,
			IsUnique: entry.unique,
			Type:     "btree",
		})
	}

	return indexes, uniques, nil
}

func (i *SQLiteInspector) indexColumns(db *sql.DB, indexName string) ([]string, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA index_info(%q)", indexName))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var seqno, cid int
		var name sql.NullString
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResultScanFailed, err)
		}
		if name.Valid {
			columns = append(columns, name.String)
		}
	}
	return columns, rows.Err()
}

func (i *SQLiteInspector) inspectViews(db *sql.DB, config InspectConfig) ([]*schemaloader.ViewInfo, error) {
	rows, err := db.Query(`SELECT name, sql FROM sqlite_master WHERE type='view' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	type viewEntry struct {
		name       string
		definition string
	}
	var entries []viewEntry
	for rows.Next() {
		var entry viewEntry
		if err := rows.Scan(&entry.name, &entry.definition); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResultScanFailed, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var views []*schemaloader.ViewInfo
	for _, entry := range entries {
		if !shouldIncludeTable(entry.name, config) {
			continue
		}
		columns, _, err := i.inspectColumns(db, entry.name)
		if err != nil {
			return nil, err
		}
		views = append(views, &schemaloader.ViewInfo{
			Name:       entry.name,
			Schema:     "main",
			Columns:    columns,
			Definition: entry.definition,
		})
	}
	return views, nil
}

// DatabaseInfo reports the SQLite library version.
func (i *SQLiteInspector) DatabaseInfo(db *sql.DB) (schemaloader.DatabaseInfo, error) {
	var version string
	if err := db.QueryRow("SELECT sqlite_version()").Scan(&version); err != nil {
		return schemaloader.DatabaseInfo{}, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return schemaloader.DatabaseInfo{
		Type:    TypeSQLite,
		Version: version,
		Name:    "main",
	}, nil
}

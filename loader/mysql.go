package loader

import (
	"database/sql"
	"fmt"
	"strings"

	schemaloader "github.com/usna78/dbix-class-schema-loader"
)

// MySQLInspector reads schema metadata through information_schema. MySQL
// treats each database as a schema, so the default scope is the database
// named in the DSN.
type MySQLInspector struct {
	baseInspector
}

// NewMySQLInspector creates a new MySQL inspector.
func NewMySQLInspector() *MySQLInspector {
	return &MySQLInspector{baseInspector: newBaseInspector(TypeMySQL)}
}

// ListSchemas returns every non-system database.
func (i *MySQLInspector) ListSchemas(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`
		SELECT SCHEMA_NAME
		FROM information_schema.SCHEMATA
		WHERE SCHEMA_NAME NOT IN ('information_schema', 'mysql', 'performance_schema', 'sys')
		ORDER BY SCHEMA_NAME
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	var schemas []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResultScanFailed, err)
		}
		schemas = append(schemas, name)
	}
	return schemas, rows.Err()
}

// Inspect reads every selected table across the selected schemas.
func (i *MySQLInspector) Inspect(db *sql.DB, config InspectConfig) (*schemaloader.DatabaseSchema, error) {
	dbInfo, err := i.DatabaseInfo(db)
	if err != nil {
		return nil, err
	}
	if dbInfo.Name == "" && len(config.Schemas) == 0 && !config.AllSchemas {
		return nil, fmt.Errorf("%w: no database selected", ErrSchemaNotFound)
	}

	schemas, err := resolveSchemas(db, i, config, []string{dbInfo.Name})
	if err != nil {
		return nil, err
	}

	result := &schemaloader.DatabaseSchema{
		Name:         dbInfo.Name,
		DatabaseInfo: dbInfo,
	}

	for _, schemaName := range schemas {
		tables, err := i.inspectTables(db, schemaName, config)
		if err != nil {
			return nil, err
		}
		result.Tables = append(result.Tables, tables...)

		if config.IncludeViews {
			views, err := i.inspectViews(db, schemaName, config)
			if err != nil {
				return nil, err
			}
			result.Views = append(result.Views, views...)
		}
	}

	return result, nil
}

func (i *MySQLInspector) inspectTables(db *sql.DB, schemaName string, config InspectConfig) ([]*schemaloader.TableInfo, error) {
	rows, err := db.Query(`
		SELECT TABLE_NAME, TABLE_COMMENT
		FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = ?
		AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME
	`, schemaName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	type tableEntry struct {
		name    string
		comment string
	}
	var entries []tableEntry
	for rows.Next() {
		var name string
		var comment sql.NullString
		if err := rows.Scan(&name, &comment); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResultScanFailed, err)
		}
		entries = append(entries, tableEntry{name: name, comment: comment.String})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var tables []*schemaloader.TableInfo
	for _, entry := range entries {
		if !shouldIncludeTable(entry.name, config) {
			continue
		}

		table := &schemaloader.TableInfo{
			Name:    entry.name,
			Schema:  schemaName,
			Comment: entry.comment,
		}

		table.Columns, err = i.inspectColumns(db, schemaName, entry.name)
		if err != nil {
			return nil, err
		}
		table.Constraints, err = i.inspectConstraints(db, schemaName, entry.name)
		if err != nil {
			return nil, err
		}
		table.Indexes, err = i.inspectIndexes(db, schemaName, entry.name)
		if err != nil {
			return nil, err
		}
		markPrimaryKeyColumns(table)

		tables = append(tables, table)
	}
	return tables, nil
}

// inspectColumns reads COLUMN_TYPE rather than DATA_TYPE so spellings like
// tinyint(1) and bigint unsigned reach the type mapper intact.
func (i *MySQLInspector) inspectColumns(db *sql.DB, schemaName, tableName string) ([]*schemaloader.ColumnInfo, error) {
	rows, err := db.Query(`
		SELECT
			COLUMN_NAME,
			COLUMN_TYPE,
			IS_NULLABLE,
			COLUMN_DEFAULT,
			EXTRA,
			CHARACTER_MAXIMUM_LENGTH,
			NUMERIC_PRECISION,
			NUMERIC_SCALE,
			COLUMN_COMMENT
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = ?
		AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION
	`, schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	var columns []*schemaloader.ColumnInfo
	for rows.Next() {
		var name, columnType, isNullable string
		var defaultValue, extra, comment sql.NullString
		var maxLength, precision, scale sql.NullInt64

		if err := rows.Scan(&name, &columnType, &isNullable, &defaultValue, &extra, &maxLength, &precision, &scale, &comment); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResultScanFailed, err)
		}

		column := &schemaloader.ColumnInfo{
			Name:          name,
			DataType:      columnType,
			Nullable:      isNullable == "YES",
			DefaultValue:  defaultValue.String,
			Comment:       comment.String,
			AutoIncrement: strings.Contains(strings.ToLower(extra.String), "auto_increment"),
		}
		if maxLength.Valid {
			v := int(maxLength.Int64)
			column.MaxLength = &v
		}
		if precision.Valid {
			v := int(precision.Int64)
			column.Precision = &v
		}
		if scale.Valid {
			v := int(scale.Int64)
			column.Scale = &v
		}
		i.mapColumn(column)
		columns = append(columns, column)
	}
	return columns, rows.Err()
}

func (i *MySQLInspector) inspectConstraints(db *sql.DB, schemaName, tableName string) ([]schemaloader.ConstraintInfo, error) {
	rows, err := db.Query(`
		SELECT
			tc.CONSTRAINT_NAME,
			tc.CONSTRAINT_TYPE,
			kcu.COLUMN_NAME,
			kcu.REFERENCED_TABLE_NAME,
			kcu.REFERENCED_COLUMN_NAME
		FROM information_schema.TABLE_CONSTRAINTS tc
		LEFT JOIN information_schema.KEY_COLUMN_USAGE kcu
			ON tc.CONSTRAINT_NAME = kcu.CONSTRAINT_NAME
			AND tc.TABLE_SCHEMA = kcu.TABLE_SCHEMA
			AND tc.TABLE_NAME = kcu.TABLE_NAME
		WHERE tc.TABLE_SCHEMA = ?
		AND tc.TABLE_NAME = ?
		ORDER BY tc.CONSTRAINT_NAME, kcu.ORDINAL_POSITION
	`, schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	byName := map[string]*schemaloader.ConstraintInfo{}
	var order []string
	for rows.Next() {
		var name, constraintType string
		var columnName, refTable, refColumn sql.NullString

		if err := rows.Scan(&name, &constraintType, &columnName, &refTable, &refColumn); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResultScanFailed, err)
		}

		constraint, ok := byName[name]
		if !ok {
			constraint = &schemaloader.ConstraintInfo{
				Name:            name,
				Type:            normalizeConstraintType(constraintType),
				ReferencedTable: refTable.String,
			}
			byName[name] = constraint
			order = append(order, name)
		}
		if columnName.Valid {
			constraint.Columns = append(constraint.Columns, columnName.String)
		}
		if refColumn.Valid {
			constraint.ReferencedColumns = append(constraint.ReferencedColumns, refColumn.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	constraints := make([]schemaloader.ConstraintInfo, 0, len(order))
	for _, name := range order {
		constraints = append(constraints, *byName[name])
	}
	return constraints, nil
}

func (i *MySQLInspector) inspectIndexes(db *sql.DB, schemaName, tableName string) ([]schemaloader.IndexInfo, error) {
	rows, err := db.Query(`
		SELECT INDEX_NAME, NON_UNIQUE, COLUMN_NAME, INDEX_TYPE
		FROM information_schema.STATISTICS
		WHERE TABLE_SCHEMA = ?
		AND TABLE_NAME = ?
		ORDER BY INDEX_NAME, SEQ_IN_INDEX
	`, schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	byName := map[string]*schemaloader.IndexInfo{}
	var order []string
	for rows.Next() {
		var name, columnName, indexType string
		var nonUnique int

		if err := rows.Scan(&name, &nonUnique, &columnName, &indexType); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResultScanFailed, err)
		}
		// The primary key is reported as a constraint already.
		if name == "PRIMARY" {
			continue
		}

		index, ok := byName[name]
		if !ok {
			index = &schemaloader.IndexInfo{
				Name:     name,
				IsUnique: nonUnique == 0,
				Type:     strings.ToLower(indexType),
			}
			byName[name] = index
			order = append(order, name)
		}
		index.Columns = append(index.Columns, columnName)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	indexes := make([]schemaloader.IndexInfo, 0, len(order))
	for _, name := range order {
		indexes = append(indexes, *byName[name])
	}
	return indexes, nil
}

func (i *MySQLInspector) inspectViews(db *sql.DB, schemaName string, config InspectConfig) ([]*schemaloader.ViewInfo, error) {
	rows, err := db.Query(`
		SELECT TABLE_NAME, COALESCE(VIEW_DEFINITION, '')
		FROM information_schema.VIEWS
		WHERE TABLE_SCHEMA = ?
		ORDER BY TABLE_NAME
	`, schemaName)
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
		columns, err := i.inspectColumns(db, schemaName, entry.name)
		if err != nil {
			return nil, err
		}
		views = append(views, &schemaloader.ViewInfo{
			Name:       entry.name,
			Schema:     schemaName,
			Columns:    columns,
			Definition: entry.definition,
		})
	}
	return views, nil
}

// DatabaseInfo reports the server version, the current database and its
// default character set.
func (i *MySQLInspector) DatabaseInfo(db *sql.DB) (schemaloader.DatabaseInfo, error) {
	var version string
	var name, charset sql.NullString
	if err := db.QueryRow(`SELECT VERSION(), DATABASE(), @@character_set_database`).Scan(&version, &name, &charset); err != nil {
		return schemaloader.DatabaseInfo{}, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return schemaloader.DatabaseInfo{
		Type:    TypeMySQL,
		Version: version,
		Name:    name.String,
		Charset: charset.String,
	}, nil
}

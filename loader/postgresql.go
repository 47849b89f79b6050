package loader

import (
	"database/sql"
	"fmt"
	"strings"

	schemaloader "github.com/usna78/dbix-class-schema-loader"
)

// PostgreSQLInspector reads schema metadata through information_schema and
// the pg_catalog tables.
type PostgreSQLInspector struct {
	baseInspector
}

// NewPostgreSQLInspector creates a new PostgreSQL inspector.
func NewPostgreSQLInspector() *PostgreSQLInspector {
	return &PostgreSQLInspector{baseInspector: newBaseInspector(TypePostgreSQL)}
}

// ListSchemas returns every non-system schema.
func (i *PostgreSQLInspector) ListSchemas(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`
		SELECT schema_name
		FROM information_schema.schemata
		WHERE schema_name NOT IN ('information_schema', 'pg_catalog', 'pg_toast')
		AND schema_name NOT LIKE 'pg_temp_%'
		AND schema_name NOT LIKE 'pg_toast_temp_%'
		ORDER BY schema_name
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
func (i *PostgreSQLInspector) Inspect(db *sql.DB, config InspectConfig) (*schemaloader.DatabaseSchema, error) {
	dbInfo, err := i.DatabaseInfo(db)
	if err != nil {
		return nil, err
	}

	schemas, err := resolveSchemas(db, i, config, []string{"public"})
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

func (i *PostgreSQLInspector) inspectTables(db *sql.DB, schemaName string, config InspectConfig) ([]*schemaloader.TableInfo, error) {
	rows, err := db.Query(`
		SELECT t.table_name, obj_description(c.oid, 'pg_class') AS comment
		FROM information_schema.tables t
		LEFT JOIN pg_catalog.pg_class c
			ON c.relname = t.table_name
			AND c.relnamespace = (SELECT oid FROM pg_catalog.pg_namespace WHERE nspname = t.table_schema)
		WHERE t.table_schema = $1
		AND t.table_type = 'BASE TABLE'
		ORDER BY t.table_name
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

func (i *PostgreSQLInspector) inspectColumns(db *sql.DB, schemaName, tableName string) ([]*schemaloader.ColumnInfo, error) {
	rows, err := db.Query(`
		SELECT
			col.column_name,
			col.data_type,
			col.is_nullable,
			col.column_default,
			col.is_identity,
			col.character_maximum_length,
			col.numeric_precision,
			col.numeric_scale,
			col_description(c.oid, col.ordinal_position) AS comment
		FROM information_schema.columns col
		LEFT JOIN pg_catalog.pg_class c
			ON c.relname = col.table_name
			AND c.relnamespace = (SELECT oid FROM pg_catalog.pg_namespace WHERE nspname = col.table_schema)
		WHERE col.table_schema = $1
		AND col.table_name = $2
		ORDER BY col.ordinal_position
	`, schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	var columns []*schemaloader.ColumnInfo
	for rows.Next() {
		var name, dataType, isNullable, isIdentity string
		var defaultValue, comment sql.NullString
		var maxLength, precision, scale sql.NullInt64

		if err := rows.Scan(&name, &dataType, &isNullable, &defaultValue, &isIdentity, &maxLength, &precision, &scale, &comment); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResultScanFailed, err)
		}

		column := &schemaloader.ColumnInfo{
			Name:         name,
			DataType:     dataType,
			Nullable:     isNullable == "YES",
			DefaultValue: defaultValue.String,
			Comment:      comment.String,
		}
		if isIdentity == "YES" || strings.HasPrefix(defaultValue.String, "nextval(") {
			column.AutoIncrement = true
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

// inspectConstraints reads primary key, unique and check constraints with
// one query and foreign keys with a second one that resolves the referenced
// side in key order.
func (i *PostgreSQLInspector) inspectConstraints(db *sql.DB, schemaName, tableName string) ([]schemaloader.ConstraintInfo, error) {
	rows, err := db.Query(`
		SELECT
			tc.constraint_name,
			tc.constraint_type,
			string_agg(kcu.column_name, ',' ORDER BY kcu.ordinal_position) AS columns
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.table_schema = $1
		AND tc.table_name = $2
		AND tc.constraint_type IN ('PRIMARY KEY', 'UNIQUE')
		GROUP BY tc.constraint_name, tc.constraint_type
		ORDER BY tc.constraint_name
	`, schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	var constraints []schemaloader.ConstraintInfo
	for rows.Next() {
		var name, constraintType, columns string
		if err := rows.Scan(&name, &constraintType, &columns); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResultScanFailed, err)
		}
		constraints = append(constraints, schemaloader.ConstraintInfo{
			Name:    name,
			Type:    normalizeConstraintType(constraintType),
			Columns: splitColumnList(columns),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	fks, err := i.inspectForeignKeys(db, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	return append(constraints, fks...), nil
}

func (i *PostgreSQLInspector) inspectForeignKeys(db *sql.DB, schemaName, tableName string) ([]schemaloader.ConstraintInfo, error) {
	rows, err := db.Query(`
		SELECT
			rc.constraint_name,
			kcu.column_name,
			kcu2.table_name AS referenced_table,
			kcu2.column_name AS referenced_column
		FROM information_schema.referential_constraints rc
		JOIN information_schema.key_column_usage kcu
			ON kcu.constraint_name = rc.constraint_name
			AND kcu.constraint_schema = rc.constraint_schema
		JOIN information_schema.key_column_usage kcu2
			ON kcu2.constraint_name = rc.unique_constraint_name
			AND kcu2.constraint_schema = rc.unique_constraint_schema
			AND kcu2.ordinal_position = kcu.position_in_unique_constraint
		WHERE kcu.table_schema = $1
		AND kcu.table_name = $2
		ORDER BY rc.constraint_name, kcu.ordinal_position
	`, schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	byName := map[string]*schemaloader.ConstraintInfo{}
	var order []string
	for rows.Next() {
		var name, column, refTable, refColumn string
		if err := rows.Scan(&name, &column, &refTable, &refColumn); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResultScanFailed, err)
		}
		fk, ok := byName[name]
		if !ok {
			fk = &schemaloader.ConstraintInfo{
				Name:            name,
				Type:            schemaloader.ConstraintForeignKey,
				ReferencedTable: refTable,
			}
			byName[name] = fk
			order = append(order, name)
		}
		fk.Columns = append(fk.Columns, column)
		fk.ReferencedColumns = append(fk.ReferencedColumns, refColumn)
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

func (i *PostgreSQLInspector) inspectIndexes(db *sql.DB, schemaName, tableName string) ([]schemaloader.IndexInfo, error) {
	rows, err := db.Query(`
		SELECT
			i.relname AS index_name,
			string_agg(a.attname, ',' ORDER BY a.attnum) AS columns,
			ix.indisunique AS is_unique,
			am.amname AS index_type
		FROM pg_class t
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_index ix ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_am am ON i.relam = am.oid
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		WHERE n.nspname = $1
		AND t.relname = $2
		AND NOT ix.indisprimary
		GROUP BY i.relname, ix.indisunique, am.amname
		ORDER BY i.relname
	`, schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	var indexes []schemaloader.IndexInfo
	for rows.Next() {
		var name, columns, indexType string
		var isUnique bool
		if err := rows.Scan(&name, &columns, &isUnique, &indexType); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResultScanFailed, err)
		}
		indexes = append(indexes, schemaloader.IndexInfo{
			Name:     name,
			Columns:  splitColumnList(columns),
			IsUnique: isUnique,
			Type:     indexType,
		})
	}
	return indexes, rows.Err()
}

func (i *PostgreSQLInspector) inspectViews(db *sql.DB, schemaName string, config InspectConfig) ([]*schemaloader.ViewInfo, error) {
	rows, err := db.Query(`
		SELECT table_name, COALESCE(view_definition, '')
		FROM information_schema.views
		WHERE table_schema = $1
		ORDER BY table_name
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

// DatabaseInfo reports the server version and current database name.
func (i *PostgreSQLInspector) DatabaseInfo(db *sql.DB) (schemaloader.DatabaseInfo, error) {
	var version, name string
	if err := db.QueryRow(`SELECT version(), current_database()`).Scan(&version, &name); err != nil {
		return schemaloader.DatabaseInfo{}, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return schemaloader.DatabaseInfo{
		Type:    TypePostgreSQL,
		Version: version,
		Name:    name,
	}, nil
}

// splitColumnList splits a string_agg column list into trimmed names.
func splitColumnList(columns string) []string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}

// normalizeConstraintType maps SQL constraint type spellings to the shared
// constants.
func normalizeConstraintType(constraintType string) string {
	switch strings.ToUpper(strings.TrimSpace(constraintType)) {
	case "PRIMARY KEY":
		return schemaloader.ConstraintPrimaryKey
	case "FOREIGN KEY":
		return schemaloader.ConstraintForeignKey
	case "UNIQUE":
		return schemaloader.ConstraintUnique
	case "CHECK":
		return schemaloader.ConstraintCheck
	default:
		return strings.ToUpper(strings.TrimSpace(constraintType))
	}
}

// markPrimaryKeyColumns sets IsPrimaryKey on columns named by the table's
// primary key constraint.
func markPrimaryKeyColumns(table *schemaloader.TableInfo) {
	for _, name := range table.PrimaryKey() {
		if col := table.Column(name); col != nil {
			col.IsPrimaryKey = true
		}
	}
}

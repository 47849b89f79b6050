package schemaloader

// Constraint type values reported by the inspectors.
const (
	ConstraintPrimaryKey = "PRIMARY_KEY"
	ConstraintForeignKey = "FOREIGN_KEY"
	ConstraintUnique     = "UNIQUE"
	ConstraintCheck      = "CHECK"
)

// Relationship kinds inferred from foreign key constraints.
const (
	RelBelongsTo = "belongs_to"
	RelHasMany   = "has_many"
	RelHasOne    = "has_one"
)

// ColumnInfo is a unified column definition shared by all inspectors.
type ColumnInfo struct {
	Name          string `json:"name" yaml:"name"`                   // Column name
	DataType      string `json:"dataType" yaml:"dataType"`           // Raw database type
	GoType        string `json:"goType" yaml:"goType"`               // Mapped Go type
	Nullable      bool   `json:"nullable" yaml:"nullable"`           // Is nullable
	DefaultValue  string `json:"defaultValue" yaml:"defaultValue"`   // Default value (optional)
	Comment       string `json:"comment" yaml:"comment"`             // Comment (optional)
	IsPrimaryKey  bool   `json:"isPrimaryKey" yaml:"isPrimaryKey"`   // Is primary key
	AutoIncrement bool   `json:"autoIncrement" yaml:"autoIncrement"` // Serial / auto_increment
	MaxLength     *int   `json:"maxLength" yaml:"maxLength"`         // For string types (optional)
	Precision     *int   `json:"precision" yaml:"precision"`         // For numeric types (optional)
	Scale         *int   `json:"scale" yaml:"scale"`                 // For numeric types (optional)
}

// TableInfo is a unified table definition. Columns keep database order so
// generated struct fields line up with the table definition.
type TableInfo struct {
	Name          string           `json:"name" yaml:"name"`
	Schema        string           `json:"schema" yaml:"schema"` // Schema name (optional)
	Columns       []*ColumnInfo    `json:"columns" yaml:"columns"`
	Constraints   []ConstraintInfo `json:"constraints" yaml:"constraints"`
	Indexes       []IndexInfo      `json:"indexes" yaml:"indexes"`
	Relationships []Relationship   `json:"relationships" yaml:"relationships"`
	Comment       string           `json:"comment" yaml:"comment"` // Table comment (optional)
}

// Column returns the named column, or nil when the table has no such column.
func (t *TableInfo) Column(name string) *ColumnInfo {
	for _, col := range t.Columns {
		if col.Name == name {
			return col
		}
	}
	return nil
}

// PrimaryKey returns the primary key column names in constraint order.
func (t *TableInfo) PrimaryKey() []string {
	for _, c := range t.Constraints {
		if c.Type == ConstraintPrimaryKey {
			return c.Columns
		}
	}
	return nil
}

// HasUniqueOn reports whether cols are exactly covered by a unique
// constraint or a unique index.
func (t *TableInfo) HasUniqueOn(cols []string) bool {
	for _, c := range t.Constraints {
		if (c.Type == ConstraintUnique || c.Type == ConstraintPrimaryKey) && sameColumns(c.Columns, cols) {
			return true
		}
	}
	for _, idx := range t.Indexes {
		if idx.IsUnique && sameColumns(idx.Columns, cols) {
			return true
		}
	}
	return false
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Relationship is an association derived from a foreign key constraint.
type Relationship struct {
	Kind           string   `json:"kind" yaml:"kind"` // belongs_to, has_many, has_one
	Accessor       string   `json:"accessor" yaml:"accessor"`
	LocalColumns   []string `json:"localColumns" yaml:"localColumns"`
	ForeignTable   string   `json:"foreignTable" yaml:"foreignTable"`
	ForeignColumns []string `json:"foreignColumns" yaml:"foreignColumns"`
}

// DatabaseSchema is the full introspection result handed to the generator.
type DatabaseSchema struct {
	Name         string       `json:"name" yaml:"name"` // Schema/database name
	Tables       []*TableInfo `json:"tables" yaml:"tables"`
	Views        []*ViewInfo  `json:"views" yaml:"views"` // Views (optional)
	DatabaseInfo DatabaseInfo `json:"databaseInfo" yaml:"databaseInfo"`
}

type ConstraintInfo struct {
	Name              string   `json:"name" yaml:"name"`
	Type              string   `json:"type" yaml:"type"` // PRIMARY_KEY, FOREIGN_KEY, UNIQUE, CHECK
	Columns           []string `json:"columns" yaml:"columns"`
	ReferencedTable   string   `json:"referencedTable" yaml:"referencedTable"`
	ReferencedColumns []string `json:"referencedColumns" yaml:"referencedColumns"`
	Definition        string   `json:"definition" yaml:"definition"`
}

type IndexInfo struct {
	Name     string   `json:"name" yaml:"name"`
	Columns  []string `json:"columns" yaml:"columns"`
	IsUnique bool     `json:"isUnique" yaml:"isUnique"`
	Type     string   `json:"type" yaml:"type"`
}

// ViewInfo describes a database view. Views dump as read-only result types
// when the include_views option is set.
type ViewInfo struct {
	Name       string        `json:"name" yaml:"name"`
	Schema     string        `json:"schema" yaml:"schema"`
	Columns    []*ColumnInfo `json:"columns" yaml:"columns"`
	Definition string        `json:"definition" yaml:"definition"`
	Comment    string        `json:"comment" yaml:"comment"`
}

type DatabaseInfo struct {
	Type    string `json:"type" yaml:"type"`
	Version string `json:"version" yaml:"version"`
	Name    string `json:"name" yaml:"name"`
	Charset string `json:"charset" yaml:"charset"`
}

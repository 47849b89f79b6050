package loader

import (
	"fmt"
	"strings"

	schemaloader "github.com/usna78/dbix-class-schema-loader"
)

// RelationshipBuilder derives relationships from foreign key constraints:
// a belongs_to on the referencing table, and a has_many on the referenced
// table, downgraded to has_one when the foreign key columns carry a unique
// constraint.
type RelationshipBuilder struct {
	namer *Namer
}

// NewRelationshipBuilder creates a builder using namer for accessor names.
func NewRelationshipBuilder(namer *Namer) *RelationshipBuilder {
	return &RelationshipBuilder{namer: namer}
}

// Build attaches relationships to every table in the schema. Foreign keys
// pointing at tables that were filtered out still produce a belongs_to but
// no reverse relationship.
func (b *RelationshipBuilder) Build(schema *schemaloader.DatabaseSchema) {
	tables := make(map[string]*schemaloader.TableInfo, len(schema.Tables))
	for _, table := range schema.Tables {
		tables[table.Name] = table
	}

	for _, table := range schema.Tables {
		for _, constraint := range table.Constraints {
			if constraint.Type != schemaloader.ConstraintForeignKey || constraint.ReferencedTable == "" {
				continue
			}

			table.Relationships = append(table.Relationships, schemaloader.Relationship{
				Kind:           schemaloader.RelBelongsTo,
				Accessor:       b.belongsToAccessor(constraint),
				LocalColumns:   constraint.Columns,
				ForeignTable:   constraint.ReferencedTable,
				ForeignColumns: constraint.ReferencedColumns,
			})

			referenced, ok := tables[constraint.ReferencedTable]
			if !ok {
				continue
			}
			kind := schemaloader.RelHasMany
			accessor := b.namer.Pluralize(b.namer.TableMoniker(table.Name))
			if table.HasUniqueOn(constraint.Columns) {
				kind = schemaloader.RelHasOne
				accessor = b.namer.TableMoniker(table.Name)
			}
			referenced.Relationships = append(referenced.Relationships, schemaloader.Relationship{
				Kind:           kind,
				Accessor:       accessor,
				LocalColumns:   constraint.ReferencedColumns,
				ForeignTable:   table.Name,
				ForeignColumns: constraint.Columns,
			})
		}
	}

	for _, table := range schema.Tables {
		b.resolveAccessorCollisions(table)
	}
}

// belongsToAccessor names the relationship after the column stem when the
// foreign key is a single column ending in _id, and after the referenced
// table otherwise. user_id gives User, a composite key on artists gives
// Artist.
func (b *RelationshipBuilder) belongsToAccessor(constraint schemaloader.ConstraintInfo) string {
	if len(constraint.Columns) == 1 {
		if stem, ok := strings.CutSuffix(constraint.Columns[0], "_id"); ok && stem != "" {
			return b.namer.FieldName(stem)
		}
	}
	return b.namer.TableMoniker(constraint.ReferencedTable)
}

// resolveAccessorCollisions renames relationship accessors that collide
// with column fields, generated methods or each other. The first conflict
// gets a Rel suffix, further ones are numbered.
func (b *RelationshipBuilder) resolveAccessorCollisions(table *schemaloader.TableInfo) {
	used := map[string]bool{"TableName": true}
	for _, column := range table.Columns {
		used[b.namer.FieldName(column.Name)] = true
	}

	for i := range table.Relationships {
		rel := &table.Relationships[i]
		name := rel.Accessor
		if used[name] {
			name += "Rel"
		}
		for seq := 2; used[name]; seq++ {
			name = fmt.Sprintf("%sRel%d", rel.Accessor, seq)
		}
		rel.Accessor = name
		used[name] = true
	}
}

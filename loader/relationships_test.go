package loader

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	schemaloader "github.com/usna78/dbix-class-schema-loader"
)

func relTestColumns(names ...string) []*schemaloader.ColumnInfo {
	columns := make([]*schemaloader.ColumnInfo, len(names))
	for i, name := range names {
		columns[i] = &schemaloader.ColumnInfo{Name: name, DataType: "integer", GoType: "int64"}
	}
	return columns
}

func TestRelationshipBuilder(t *testing.T) {
	builder := NewRelationshipBuilder(NewNamer("default", nil))

	t.Run("BelongsToAndHasMany", func(t *testing.T) {
		artists := &schemaloader.TableInfo{
			Name:    "artists",
			Columns: relTestColumns("id", "name"),
			Constraints: []schemaloader.ConstraintInfo{
				{Name: "artists_pkey", Type: schemaloader.ConstraintPrimaryKey, Columns: []string{"id"}},
			},
		}
		cds := &schemaloader.TableInfo{
			Name:    "cds",
			Columns: relTestColumns("id", "artist_id", "title"),
			Constraints: []schemaloader.ConstraintInfo{
				{Name: "cds_pkey", Type: schemaloader.ConstraintPrimaryKey, Columns: []string{"id"}},
				{
					Name:              "cds_artist_id_fkey",
					Type:              schemaloader.ConstraintForeignKey,
					Columns:           []string{"artist_id"},
					ReferencedTable:   "artists",
					ReferencedColumns: []string{"id"},
				},
			},
		}
		schema := &schemaloader.DatabaseSchema{Tables: []*schemaloader.TableInfo{artists, cds}}

		builder.Build(schema)

		assert.Equal(t, 1, len(cds.Relationships))
		assert.Equal(t, schemaloader.RelBelongsTo, cds.Relationships[0].Kind)
		assert.Equal(t, "Artist", cds.Relationships[0].Accessor)
		assert.Equal(t, "artists", cds.Relationships[0].ForeignTable)
		assert.Equal(t, []string{"artist_id"}, cds.Relationships[0].LocalColumns)

		assert.Equal(t, 1, len(artists.Relationships))
		assert.Equal(t, schemaloader.RelHasMany, artists.Relationships[0].Kind)
		assert.Equal(t, "Cds", artists.Relationships[0].Accessor)
		assert.Equal(t, "cds", artists.Relationships[0].ForeignTable)
	})

	t.Run("HasOneWhenForeignKeyIsUnique", func(t *testing.T) {
		users := &schemaloader.TableInfo{
			Name:    "users",
			Columns: relTestColumns("id"),
			Constraints: []schemaloader.ConstraintInfo{
				{Name: "users_pkey", Type: schemaloader.ConstraintPrimaryKey, Columns: []string{"id"}},
			},
		}
		profiles := &schemaloader.TableInfo{
			Name:    "profiles",
			Columns: relTestColumns("id", "user_id"),
			Constraints: []schemaloader.ConstraintInfo{
				{Name: "profiles_pkey", Type: schemaloader.ConstraintPrimaryKey, Columns: []string{"id"}},
				{Name: "profiles_user_id_key", Type: schemaloader.ConstraintUnique, Columns: []string{"user_id"}},
				{
					Name:              "profiles_user_id_fkey",
					Type:              schemaloader.ConstraintForeignKey,
					Columns:           []string{"user_id"},
					ReferencedTable:   "users",
					ReferencedColumns: []string{"id"},
				},
			},
		}
		schema := &schemaloader.DatabaseSchema{Tables: []*schemaloader.TableInfo{users, profiles}}

		builder.Build(schema)

		assert.Equal(t, 1, len(users.Relationships))
		assert.Equal(t, schemaloader.RelHasOne, users.Relationships[0].Kind)
		assert.Equal(t, "Profile", users.Relationships[0].Accessor)
	})

	t.Run("CompositeKeyNamesAfterReferencedTable", func(t *testing.T) {
		orders := &schemaloader.TableInfo{
			Name:    "orders",
			Columns: relTestColumns("region", "number"),
			Constraints: []schemaloader.ConstraintInfo{
				{Name: "orders_pkey", Type: schemaloader.ConstraintPrimaryKey, Columns: []string{"region", "number"}},
			},
		}
		shipments := &schemaloader.TableInfo{
			Name:    "shipments",
			Columns: relTestColumns("id", "order_region", "order_number"),
			Constraints: []schemaloader.ConstraintInfo{
				{
					Name:              "shipments_order_fkey",
					Type:              schemaloader.ConstraintForeignKey,
					Columns:           []string{"order_region", "order_number"},
					ReferencedTable:   "orders",
					ReferencedColumns: []string{"region", "number"},
				},
			},
		}
		schema := &schemaloader.DatabaseSchema{Tables: []*schemaloader.TableInfo{orders, shipments}}

		builder.Build(schema)

		assert.Equal(t, "Order", shipments.Relationships[0].Accessor)
	})

	t.Run("AccessorCollisionGetsRelSuffix", func(t *testing.T) {
		artists := &schemaloader.TableInfo{Name: "artists", Columns: relTestColumns("id")}
		cds := &schemaloader.TableInfo{
			Name:    "cds",
			Columns: relTestColumns("id", "artist_id", "artist"),
			Constraints: []schemaloader.ConstraintInfo{
				{
					Name:              "cds_artist_id_fkey",
					Type:              schemaloader.ConstraintForeignKey,
					Columns:           []string{"artist_id"},
					ReferencedTable:   "artists",
					ReferencedColumns: []string{"id"},
				},
			},
		}
		schema := &schemaloader.DatabaseSchema{Tables: []*schemaloader.TableInfo{artists, cds}}

		builder.Build(schema)

		// The artist column claims the Artist field name.
		assert.Equal(t, "ArtistRel", cds.Relationships[0].Accessor)
	})

	t.Run("SelfReferential", func(t *testing.T) {
		employees := &schemaloader.TableInfo{
			Name:    "employees",
			Columns: relTestColumns("id", "manager_id"),
			Constraints: []schemaloader.ConstraintInfo{
				{Name: "employees_pkey", Type: schemaloader.ConstraintPrimaryKey, Columns: []string{"id"}},
				{
					Name:              "employees_manager_id_fkey",
					Type:              schemaloader.ConstraintForeignKey,
					Columns:           []string{"manager_id"},
					ReferencedTable:   "employees",
					ReferencedColumns: []string{"id"},
				},
			},
		}
		schema := &schemaloader.DatabaseSchema{Tables: []*schemaloader.TableInfo{employees}}

		builder.Build(schema)

		assert.Equal(t, 2, len(employees.Relationships))
		assert.Equal(t, schemaloader.RelBelongsTo, employees.Relationships[0].Kind)
		assert.Equal(t, "Manager", employees.Relationships[0].Accessor)
		assert.Equal(t, schemaloader.RelHasMany, employees.Relationships[1].Kind)
		assert.Equal(t, "Employees", employees.Relationships[1].Accessor)
	})

	t.Run("ReferenceToFilteredTableKeepsBelongsTo", func(t *testing.T) {
		cds := &schemaloader.TableInfo{
			Name:    "cds",
			Columns: relTestColumns("id", "artist_id"),
			Constraints: []schemaloader.ConstraintInfo{
				{
					Name:              "cds_artist_id_fkey",
					Type:              schemaloader.ConstraintForeignKey,
					Columns:           []string{"artist_id"},
					ReferencedTable:   "artists",
					ReferencedColumns: []string{"id"},
				},
			},
		}
		schema := &schemaloader.DatabaseSchema{Tables: []*schemaloader.TableInfo{cds}}

		builder.Build(schema)

		assert.Equal(t, 1, len(cds.Relationships))
		assert.Equal(t, schemaloader.RelBelongsTo, cds.Relationships[0].Kind)
	})
}

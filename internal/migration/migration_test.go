package migration

import (
	"io/fs"
	"testing"
	"time"

	"github.com/smallbiznis/tourbill/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups, downs := 0, 0
	for _, e := range entries {
		name := e.Name()
		switch {
		case len(name) > 7 && name[len(name)-7:] == ".up.sql":
			ups++
		case len(name) > 9 && name[len(name)-9:] == ".down.sql":
			downs++
		}
	}
	assert.Equal(t, ups, downs)
	assert.Equal(t, 3, ups)
}

func TestAutoMigrateCreatesTables(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)

	require.NoError(t, AutoMigrate(conn))
	for _, table := range []string{"guides", "products", "visits", "visit_items"} {
		assert.True(t, conn.Migrator().HasTable(table), table)
	}
}

func TestAutoMigrateEnforcesVisitForeignKeys(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(conn))

	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, conn.Exec(
		`INSERT INTO guides (id, name, phone, active, created_at, updated_at) VALUES (1, 'Ana', '11', true, ?, ?)`,
		now, now,
	).Error)
	require.NoError(t, conn.Exec(
		`INSERT INTO products (id, name, price, category, category_slug, active, created_at, updated_at)
		 VALUES (10, 'Water', 5, '', '', true, ?, ?)`,
		now, now,
	).Error)
	require.NoError(t, conn.Exec(
		`INSERT INTO visits (id, guide_id, tourist_count, guide_fee, product_revenue_total, created_at, updated_at)
		 VALUES (100, 1, 2, 50, 10, ?, ?)`,
		now, now,
	).Error)
	require.NoError(t, conn.Exec(
		`INSERT INTO visit_items (id, visit_id, product_id, quantity, price_at_sale) VALUES (1000, 100, 10, 2, 5)`,
	).Error)

	err = conn.Exec(
		`INSERT INTO visit_items (id, visit_id, product_id, quantity, price_at_sale) VALUES (1001, 100, 99, 1, 5)`,
	).Error
	require.Error(t, err)
	assert.True(t, db.IsForeignKeyErr(err), err.Error())

	err = conn.Exec(
		`INSERT INTO visits (id, guide_id, tourist_count, guide_fee, product_revenue_total, created_at, updated_at)
		 VALUES (101, 7, 0, 0, 0, ?, ?)`,
		now, now,
	).Error
	require.Error(t, err)
	assert.True(t, db.IsForeignKeyErr(err), err.Error())

	require.NoError(t, conn.Exec(`DELETE FROM visits WHERE id = 100`).Error)
	var items int64
	require.NoError(t, conn.Table("visit_items").Count(&items).Error)
	assert.Zero(t, items)
}

func TestRunMigrationsRequiresHandle(t *testing.T) {
	assert.Error(t, RunMigrations(nil))
	assert.Error(t, AutoMigrate(nil))
}

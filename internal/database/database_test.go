package database

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"JobPortal-backend/internal/model"
)

var db *DBinstanceStruct

func TestMain(m *testing.M) {
	teardown, testDB, err := GetTestDB()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}
	db = testDB

	code := m.Run()

	if teardown != nil && teardown(context.Background()) != nil {
		log.Fatalf("could not teardown postgres container")
	}
	os.Exit(code)
}

func TestHealth(t *testing.T) {
	stats := db.Health()

	assert.Equal(t, "up", stats["status"])
	assert.NotContains(t, stats, "error")
	assert.Equal(t, "It's healthy", stats["message"])
}

func TestAdminCreatedOnce(t *testing.T) {
	require.NoError(t, db.createAdmin())

	var count int64
	require.NoError(t, db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, TestAdminEmail, TestAdminUser.Email)
}

func TestSeededPositions(t *testing.T) {
	var positions []model.Position
	require.NoError(t, db.Where("company_id = ?", TestCompany1.ID).Find(&positions).Error)
	assert.Len(t, positions, 2)
	assert.Equal(t, 1, TestPositionOpen1.Version)
}

func TestGetDsn(t *testing.T) {
	_, err := (&DBConfig{useConstr: true}).getDsn()
	assert.Error(t, err)

	_, err = (&DBConfig{Host: "localhost"}).getDsn()
	assert.Error(t, err)

	dsn, err := (&DBConfig{Host: "h", Port: "5432", User: "u", Password: "p", DBName: "d"}).getDsn()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", dsn)
}

func TestDropAllTablesAndClose(t *testing.T) {
	// Runs last in this file: it wipes the shared container.
	tdb, err := NewDBInstance(db.Config)
	require.NoError(t, err)

	require.NoError(t, tdb.DropAllTables(context.Background()))
	assert.False(t, tdb.Migrator().HasTable(&model.Application{}))

	assert.NoError(t, tdb.Close())
}

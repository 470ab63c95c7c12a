package database

import (
	"context"

	"JobPortal-backend/internal/config"
)

// ConfigFromSettings converts loaded settings into a DBConfig.
func ConfigFromSettings(s config.DBSettings, adminEmail, adminPassword string) *DBConfig {
	return &DBConfig{
		Host:          s.Host,
		Port:          s.Port,
		User:          s.User,
		Password:      s.Password,
		DBName:        s.Name,
		Constr:        s.ConnString,
		useConstr:     s.UseConnString,
		AdminEmail:    adminEmail,
		AdminPassword: adminPassword,
	}
}

const dropAllTablesSQL = `
DO $$
	DECLARE
		r RECORD;
	BEGIN
		FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public') LOOP
			EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
		END LOOP;
	END $$;
`

// DropAllTables drops every table in the public schema.
func (d *DBinstanceStruct) DropAllTables(ctx context.Context) error {
	return d.WithContext(ctx).Exec(dropAllTablesSQL).Error
}

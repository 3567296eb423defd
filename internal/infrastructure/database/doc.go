// Package database provides the SQLite store behind Gray Motion's run
// history.
//
// Open creates the database file (and its directory) with WAL mode and a
// busy timeout; Migrate applies the additive schema migrations embedded
// in the migrations package:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// All queries use parameterised statements and the database file is
// created with 0600 permissions.
package database

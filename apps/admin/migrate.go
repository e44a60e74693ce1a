package main

import (
	"errors"

	"github.com/sabaq/backend/storage/database"
)

var (
	migrateFunc = database.Migrate // mockable

	errNoDatabase = errors.New("migrations need a postgres database (DATABASE_ENGINE=postgres)")
)

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errNoDatabase
	}
	return migrateFunc(cli.db, args[0], args[1:]...)
}

package commands

import (
	"fmt"

	"git.home.luguber.info/inful/docpage/internal/build"
	ferrors "git.home.luguber.info/inful/docpage/internal/foundation/errors"
	"git.home.luguber.info/inful/docpage/internal/metadata"
)

// ImportSQLiteCmd implements the 'import-sqlite' command.
type ImportSQLiteCmd struct {
	Database string `arg:"" type:"path" help:"SQLite database to create or update"`
}

func (i *ImportSQLiteCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	store, err := build.LoadStore(ctx, cfg)
	if err != nil {
		return err
	}
	n, err := metadata.ImportSQLite(ctx, i.Database, store)
	if err != nil {
		return ferrors.StorageError("failed to import metadata").
			WithCause(err).
			WithContext("database", i.Database).
			Build()
	}
	_, _ = fmt.Fprintf(g.out(), "imported %d records from %s into %s\n", n, store.Source(), i.Database)
	return nil
}

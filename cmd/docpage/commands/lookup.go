package commands

import (
	"encoding/json"
	"fmt"

	"git.home.luguber.info/inful/docpage/internal/build"
	ferrors "git.home.luguber.info/inful/docpage/internal/foundation/errors"
	"git.home.luguber.info/inful/docpage/internal/metadata"
)

// LookupCmd implements the 'lookup' command. An identifier without a record
// exits with the not-found code.
type LookupCmd struct {
	Identifier string `arg:"" help:"Component identifier, e.g. src/components/card/Card.js"`
	Query      string `short:"q" help:"JSONPath evaluated against the record, e.g. $.props.*.type.name"`
}

func (l *LookupCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	id, err := metadata.ParseIdentifier(l.Identifier)
	if err != nil {
		return ferrors.ValidationError("invalid identifier").
			WithCause(err).
			WithContext("identifier", l.Identifier).
			Build()
	}

	ctx, cancel := commandContext()
	defer cancel()
	store, err := build.LoadStore(ctx, cfg)
	if err != nil {
		return err
	}

	rec, ok := store.Get(id)
	if !ok {
		return ferrors.NotFoundError("no metadata for identifier").
			WithContext("identifier", id.String()).
			WithContext("source", store.Source()).
			Build()
	}

	if l.Query == "" {
		return printJSON(g, json.RawMessage(rec.Raw()))
	}
	results, err := metadata.Query(rec, l.Query)
	if err != nil {
		return ferrors.ValidationError("invalid query").
			WithCause(err).
			WithContext("query", l.Query).
			Build()
	}
	for _, v := range results {
		if err := printJSON(g, v); err != nil {
			return err
		}
	}
	return nil
}

func printJSON(g *Global, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ferrors.InternalError("failed to encode output").WithCause(err).Build()
	}
	_, err = fmt.Fprintln(g.out(), string(data))
	return err
}

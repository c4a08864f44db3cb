package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sfhousing/parcel-enrich/internal/store"
)

// initStore opens and migrates the run-history database.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.NewSQLite(cfg.Store.SQLitePath)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

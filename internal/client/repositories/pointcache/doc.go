// Package pointcache keeps the last points the server returned in the
// client's SQLite store, so listings still work while the server is
// unreachable.
//
// # Data Model
//
// One row per point, mirroring models.Point column for column. created_at
// is stored as Unix milliseconds and listings are ordered newest first,
// the same order the server uses.
//
// Replace swaps out every cached row that matches a filter in a single
// transaction, so a listing for "selected" never drops cached
// "to_select" points.
//
// Typical Usage
//
//	repo := pointcache.NewSQLiteRepository(db)
//	_ = repo.Replace(ctx, filter, list)
//	cached, _ := repo.List(ctx, filter)
//	_ = repo.Upsert(ctx, point)
//	_ = repo.Delete(ctx, id)
package pointcache

// Package loader batches per-field row lookups within a request into a
// single IN query, resolved through the session layer.
package loader

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/graph-gophers/dataloader"

	"github.com/patisson/gqlpg/model"
	"github.com/patisson/gqlpg/session"
	"github.com/patisson/gqlpg/stmt"
)

type ctxKey string

const rowLoaderKey ctxKey = "rowLoader"

// Loader batches lookups of a model's rows by key-column value.
type Loader struct {
	Loader *dataloader.Loader
}

// New builds a loader that fetches rows of m whose key column matches
// the batched values, one statement per batch.
func New(sessions *session.Provider, m *model.Model, key model.Column) *Loader {
	// Postgres reports the bare column name in result metadata.
	resultName := key.SQL
	if i := strings.LastIndex(resultName, "."); i >= 0 {
		resultName = resultName[i+1:]
	}

	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		values := make([]any, len(keys))
		for i, k := range keys {
			values[i] = k.String()
		}

		st := stmt.NewFilter(stmt.Select(m)).In(key, values).Statement()

		rowsByKey := make(map[string]map[string]any, len(keys))
		err := sessions.WithSession(ctx, func(s *session.Session) error {
			rows, err := s.SelectMaps(ctx, st)
			if err != nil {
				return err
			}
			for _, row := range rows {
				rowsByKey[fmt.Sprint(row[resultName])] = row
			}
			return nil
		})
		if err != nil {
			results := make([]*dataloader.Result, len(keys))
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		// Results must line up with the requested keys.
		results := make([]*dataloader.Result, len(keys))
		for i, k := range keys {
			if row, ok := rowsByKey[k.String()]; ok {
				results[i] = &dataloader.Result{Data: row}
			} else {
				results[i] = &dataloader.Result{Data: nil}
			}
		}
		return results
	}

	return &Loader{Loader: dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(5*time.Millisecond))}
}

// Load fetches the row for one key value, batched with concurrent
// lookups in the same request. A missing row yields nil, not an error.
func (l *Loader) Load(ctx context.Context, key string) (map[string]any, error) {
	data, err := l.Loader.Load(ctx, dataloader.StringKey(key))()
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	row, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected loader result %T", data)
	}
	return row, nil
}

// Middleware attaches a fresh loader to each request so batching never
// crosses request boundaries.
func Middleware(sessions *session.Provider, m *model.Model, key model.Column) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), rowLoaderKey, New(sessions, m, key))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext retrieves the request's loader, if any.
func FromContext(ctx context.Context) *Loader {
	if l, ok := ctx.Value(rowLoaderKey).(*Loader); ok {
		return l
	}
	return nil
}

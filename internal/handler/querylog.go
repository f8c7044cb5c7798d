package handler

import (
	"context"

	"tramboard/internal/query"
)

// QueryLog receives the outcome of the query a request ran, for the
// request log line.
type QueryLog struct {
	Term string
	Stop string
	Kind query.Kind
	Ran  bool
}

type queryLogKey struct{}

// WithQueryLog returns a context whose handlers report their query into the
// returned QueryLog.
func WithQueryLog(ctx context.Context) (context.Context, *QueryLog) {
	l := &QueryLog{}
	return context.WithValue(ctx, queryLogKey{}, l), l
}

func logQuery(ctx context.Context, term string, res query.Result) {
	if l, ok := ctx.Value(queryLogKey{}).(*QueryLog); ok {
		*l = QueryLog{Term: term, Stop: res.Stop.Name, Kind: res.Kind, Ran: true}
	}
}

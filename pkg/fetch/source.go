// Package fetch produces post records for a hashtag query, either from the
// recent-search REST API or from previously captured JSON Lines files.
package fetch

import (
	"context"
	"strings"
	"time"

	"github.com/sanonone/hashgraph/pkg/post"
)

// Source produces the records matching a query.
// Implementations must return records with a non-empty Actor.
type Source interface {
	Fetch(ctx context.Context, q Query) ([]post.Record, error)
}

// Query describes one campaign search.
type Query struct {
	Terms []string  // Hashtags or keywords, OR-ed together
	Since time.Time // Zero means no lower bound
	Limit int       // Maximum records to return (<= 0 means one page)
	Lang  string    // Defaults to "en"
}

// FormQuery joins search terms into a single OR query.
func FormQuery(terms []string) string {
	return strings.Join(terms, " OR ")
}

// String renders the query in the upstream search syntax.
func (q Query) String() string {
	s := FormQuery(q.Terms)
	if len(q.Terms) > 1 {
		s = "(" + s + ")"
	}
	lang := q.Lang
	if lang == "" {
		lang = "en"
	}
	return s + " lang:" + lang
}

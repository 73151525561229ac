package fetch

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/sanonone/hashgraph/pkg/post"
)

// FileSource replays records captured as JSON Lines.
// Records are filtered by the query's terms (case-insensitive hashtag match)
// and Since, then truncated to Limit.
type FileSource struct {
	Path string
}

func (s FileSource) Fetch(ctx context.Context, q Query) ([]post.Record, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open record file: %w", err)
	}
	defer f.Close()

	all, err := post.ReadJSONL(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []post.Record
	for _, r := range all {
		if !q.matches(r) {
			continue
		}
		out = append(out, r)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

// matches reports whether a stored record would have been returned by q.
// A query without terms matches every record.
func (q Query) matches(r post.Record) bool {
	if !q.Since.IsZero() && !r.CreatedAt.IsZero() && r.CreatedAt.Before(q.Since) {
		return false
	}
	if len(q.Terms) == 0 {
		return true
	}
	return slices.ContainsFunc(q.Terms, func(term string) bool {
		term = strings.TrimPrefix(term, "#")
		return slices.ContainsFunc(r.Hashtags, func(h string) bool {
			return strings.EqualFold(strings.TrimPrefix(h, "#"), term)
		})
	})
}

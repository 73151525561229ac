package post

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// csvHeader keeps the column layout of the original dataset dumps.
var csvHeader = []string{
	"username", "created_at", "truncated",
	"description", "following", "followers",
	"totaltweets", "retweetcount", "text",
	"hashtags", "user_mention", "retweetScreenNames",
}

// listSeparator joins list columns inside a single CSV cell.
const listSeparator = "|"

// WriteCSV writes records using the dataset column layout.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		created := ""
		if !r.CreatedAt.IsZero() {
			created = r.CreatedAt.UTC().Format(time.RFC3339)
		}
		row := []string{
			r.Actor, created, strconv.FormatBool(r.Truncated),
			r.Description, strconv.Itoa(r.Following), strconv.Itoa(r.Followers),
			strconv.Itoa(r.TotalPosts), strconv.Itoa(r.ReshareCount), r.Text,
			strings.Join(r.Hashtags, listSeparator),
			strings.Join(r.MentionedActors, listSeparator),
			r.ResharedFromActor,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a file produced by WriteCSV.
// Malformed numeric or time cells are treated as zero values.
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if len(rows[0]) != len(csvHeader) {
		return nil, fmt.Errorf("unexpected csv header: %d columns, want %d", len(rows[0]), len(csvHeader))
	}

	out := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := Record{
			Actor:             row[0],
			Description:       row[3],
			Text:              row[8],
			Hashtags:          splitList(row[9]),
			MentionedActors:   splitList(row[10]),
			ResharedFromActor: row[11],
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, row[1])
		rec.Truncated, _ = strconv.ParseBool(row[2])
		rec.Following, _ = strconv.Atoi(row[4])
		rec.Followers, _ = strconv.Atoi(row[5])
		rec.TotalPosts, _ = strconv.Atoi(row[6])
		rec.ReshareCount, _ = strconv.Atoi(row[7])
		out = append(out, rec)
	}
	return out, nil
}

func splitList(cell string) []string {
	if cell == "" {
		return nil
	}
	return strings.Split(cell, listSeparator)
}

// WriteJSONByActor writes an indented JSON object keyed by actor.
// When an actor posted several times the last record wins.
func WriteJSONByActor(w io.Writer, records []Record) error {
	byActor := make(map[string]Record, len(records))
	for _, r := range records {
		byActor[r.Actor] = r
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(byActor)
}

// WriteJSONL writes one JSON record per line.
func WriteJSONL(w io.Writer, records []Record) error {
	enc := json.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// ReadJSONL reads records written one per line. Blank lines are skipped.
func ReadJSONL(r io.Reader) ([]Record, error) {
	var out []Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// QueryOptions holds parameters for section queries.
type QueryOptions struct {
	// Query matches section titles by substring, case-insensitively for
	// ASCII letters.
	Query string

	// RunID restricts results to one run.
	RunID string

	// Source restricts results to runs of one source path or URL.
	Source string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.RunID == "" && q.Source == ""
}

// Sections returns catalogued sections matching opts, newest run first and
// in document order within a run.
func (s *Store) Sections(ctx context.Context, opts QueryOptions) ([]Entry, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT s.run_id, r.source, s.position, s.title, s.level, s.start_page,
			s.end_page, s.pdf_path, s.markdown_path, s.words
		FROM sections s
		JOIN runs r ON r.id = s.run_id
		WHERE 1=1`)

	if opts.Query != "" {
		qb.WriteString(` AND s.title LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(opts.Query)+"%")
	}
	if opts.RunID != "" {
		qb.WriteString(` AND s.run_id = ?`)
		args = append(args, opts.RunID)
	}
	if opts.Source != "" {
		qb.WriteString(` AND r.source = ?`)
		args = append(args, opts.Source)
	}

	qb.WriteString(` ORDER BY r.created_at DESC, s.position LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			level   sql.NullInt64
			start   sql.NullInt64
			end     sql.NullInt64
			pdfPath sql.NullString
			mdPath  sql.NullString
			words   sql.NullInt64
		)
		if err := rows.Scan(
			&e.RunID, &e.Source, &e.Position, &e.Title, &level, &start,
			&end, &pdfPath, &mdPath, &words,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		e.Level = int(level.Int64)
		e.StartPage = int(start.Int64)
		e.EndPage = int(end.Int64)
		e.PDFPath = pdfPath.String
		e.MarkdownPath = mdPath.String
		e.Words = int(words.Int64)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

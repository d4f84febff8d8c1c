package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/galatea-comics/galatea/internal/db"
	"github.com/galatea-comics/galatea/internal/progress"
)

// Store persists a catalog in SQLite so a server can start from an imported
// snapshot instead of YAML files.
type Store struct {
	db *db.DB
}

// NewStore creates a new catalog store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// ImportRecord describes one completed import.
type ImportRecord struct {
	ID     string
	Source string
	Pages  int
	Panels int
}

// Import replaces the stored catalog with c inside a single transaction.
func (s *Store) Import(ctx context.Context, c *Catalog, source string, reporter progress.Reporter) (*ImportRecord, error) {
	if c.Len() == 0 {
		return nil, fmt.Errorf("refusing to import an empty catalog")
	}
	if reporter == nil {
		reporter = progress.Nop{}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_panels`); err != nil {
		return nil, fmt.Errorf("clearing panels: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_pages`); err != nil {
		return nil, fmt.Errorf("clearing pages: %w", err)
	}

	rec := &ImportRecord{ID: uuid.New().String(), Source: source}
	reporter.Start(c.Len())
	for i, page := range c.pages {
		number := i + 1
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO catalog_pages (number, title) VALUES (?, ?)`, number, page.Title,
		); err != nil {
			return nil, fmt.Errorf("inserting page %d: %w", number, err)
		}
		for pos, p := range page.Panels {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO catalog_panels (page_number, position, image, background, class_name, aspect_ratio, content, dialogue, speaker, narration)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				number, pos, p.Image, p.Background, p.ClassName, p.AspectRatio, p.Content, p.Dialogue, p.Speaker, p.Narration,
			); err != nil {
				return nil, fmt.Errorf("inserting page %d panel %d: %w", number, pos, err)
			}
			rec.Panels++
		}
		rec.Pages++
		reporter.Update(number, page.Title)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO catalog_imports (id, source, pages, panels) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.Source, rec.Pages, rec.Panels,
	); err != nil {
		return nil, fmt.Errorf("recording import: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing import: %w", err)
	}
	reporter.Finish()
	return rec, nil
}

// Load reads the stored catalog. Page numbers in the table must be
// contiguous from 1.
func (s *Store) Load(ctx context.Context) (*Catalog, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT number, title FROM catalog_pages ORDER BY number`)
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}
	var pages []Page
	for rows.Next() {
		var number int
		var p Page
		if err := rows.Scan(&number, &p.Title); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning page: %w", err)
		}
		if number != len(pages)+1 {
			rows.Close()
			return nil, fmt.Errorf("stored catalog has a gap before page %d", number)
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(pages) == 0 {
		return nil, fmt.Errorf("stored catalog is empty; run `galatea catalog import` first")
	}

	prows, err := s.db.QueryContext(ctx,
		`SELECT page_number, image, background, class_name, aspect_ratio, content, dialogue, speaker, narration
		 FROM catalog_panels ORDER BY page_number, position`)
	if err != nil {
		return nil, fmt.Errorf("listing panels: %w", err)
	}
	defer prows.Close()
	for prows.Next() {
		var number int
		var p Panel
		if err := prows.Scan(&number, &p.Image, &p.Background, &p.ClassName, &p.AspectRatio, &p.Content, &p.Dialogue, &p.Speaker, &p.Narration); err != nil {
			return nil, fmt.Errorf("scanning panel: %w", err)
		}
		pages[number-1].Panels = append(pages[number-1].Panels, p)
	}
	if err := prows.Err(); err != nil {
		return nil, err
	}
	return New(pages), nil
}

// LastImport returns the most recent import record, or nil if none exists.
func (s *Store) LastImport(ctx context.Context) (*ImportRecord, error) {
	var rec ImportRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT id, source, pages, panels FROM catalog_imports ORDER BY imported_at DESC, rowid DESC LIMIT 1`,
	).Scan(&rec.ID, &rec.Source, &rec.Pages, &rec.Panels)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading last import: %w", err)
	}
	return &rec, nil
}

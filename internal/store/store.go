// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists retrieved article tables to a SQLite database.
// It is an explicit export sink the caller opts into; retrieval paths
// never read from it.
// See docs/ARCHITECTURE.md § Store.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pubmed-engine/pkg/types"
)

// ErrNotFound is returned when no article with the requested PMID exists.
var ErrNotFound = errors.New("article not found")

// Store wraps the SQLite database holding exported search results.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS articles (
			pmid        TEXT PRIMARY KEY,
			title       TEXT NOT NULL DEFAULT '',
			abstract    TEXT NOT NULL DEFAULT '',
			authors     TEXT NOT NULL DEFAULT '[]',
			pub_date    TEXT NOT NULL DEFAULT '',
			mesh_terms  TEXT NOT NULL DEFAULT '[]',
			other_terms TEXT NOT NULL DEFAULT '[]',
			query       TEXT NOT NULL DEFAULT '',
			fetched_at  TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_articles_query ON articles(query);
	`)
	return err
}

// SaveTable upserts every row of the table, tagging each article with
// the query that retrieved it. Re-exporting a search replaces the rows
// for the PMIDs it contains.
func (s *Store) SaveTable(ctx context.Context, query string, t *types.ArticleTable) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO articles (pmid, title, abstract, authors, pub_date, mesh_terms, other_terms, query, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(pmid) DO UPDATE SET
			title = excluded.title,
			abstract = excluded.abstract,
			authors = excluded.authors,
			pub_date = excluded.pub_date,
			mesh_terms = excluded.mesh_terms,
			other_terms = excluded.other_terms,
			query = excluded.query,
			fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, a := range t.Rows {
		authors, err := json.Marshal(a.Authors)
		if err != nil {
			return fmt.Errorf("encoding authors for %s: %w", a.PMID, err)
		}
		mesh, err := json.Marshal(a.MeSHTerms)
		if err != nil {
			return fmt.Errorf("encoding MeSH terms for %s: %w", a.PMID, err)
		}
		other, err := json.Marshal(a.OtherTerms)
		if err != nil {
			return fmt.Errorf("encoding other terms for %s: %w", a.PMID, err)
		}

		if _, err := stmt.ExecContext(ctx, a.PMID, a.Title, a.Abstract, string(authors),
			a.PubDate, string(mesh), string(other), query, now); err != nil {
			return fmt.Errorf("inserting %s: %w", a.PMID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

// Count returns the number of stored articles.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting articles: %w", err)
	}
	return n, nil
}

// ByPMID loads a single stored article. Returns ErrNotFound when the
// PMID is absent.
func (s *Store) ByPMID(ctx context.Context, pmid string) (types.Article, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT pmid, title, abstract, authors, pub_date, mesh_terms, other_terms
		FROM articles WHERE pmid = ?
	`, pmid)

	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Article{}, fmt.Errorf("pmid %s: %w", pmid, ErrNotFound)
	}
	return a, err
}

// ByQuery loads all articles tagged with the given query, in PMID order.
func (s *Store) ByQuery(ctx context.Context, query string) (*types.ArticleTable, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pmid, title, abstract, authors, pub_date, mesh_terms, other_terms
		FROM articles WHERE query = ? ORDER BY pmid
	`, query)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	table := &types.ArticleTable{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		table.Append(a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating articles: %w", err)
	}
	return table, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(row scanner) (types.Article, error) {
	var a types.Article
	var authors, mesh, other string

	if err := row.Scan(&a.PMID, &a.Title, &a.Abstract, &authors, &a.PubDate, &mesh, &other); err != nil {
		return types.Article{}, err
	}

	if err := json.Unmarshal([]byte(authors), &a.Authors); err != nil {
		return types.Article{}, fmt.Errorf("decoding authors for %s: %w", a.PMID, err)
	}
	if err := json.Unmarshal([]byte(mesh), &a.MeSHTerms); err != nil {
		return types.Article{}, fmt.Errorf("decoding MeSH terms for %s: %w", a.PMID, err)
	}
	if err := json.Unmarshal([]byte(other), &a.OtherTerms); err != nil {
		return types.Article{}, fmt.Errorf("decoding other terms for %s: %w", a.PMID, err)
	}
	return a, nil
}

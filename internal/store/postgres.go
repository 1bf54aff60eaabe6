package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/lib/pq"
	"github.com/socialmock/apiserver/types"
)

const uniqueViolation = "23505"

// PostgresBackend stores documents as JSONB rows in the documents table.
// The schema is created by the migrate command.
type PostgresBackend struct {
	db *sql.DB
}

func NewPostgresBackend(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

func (p *PostgresBackend) List(ctx context.Context, collection string) ([]Document, error) {
	const query = `
		SELECT id, doc
		FROM documents
		WHERE collection = $1
		ORDER BY seq`
	rows, err := p.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		var doc Document
		var data []byte
		if err := rows.Scan(&doc.ID, &data); err != nil {
			return nil, err
		}
		doc.Data = data
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (p *PostgresBackend) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	const query = `SELECT doc FROM documents WHERE collection = $1 AND id = $2`
	var data []byte
	if err := p.db.QueryRowContext(ctx, query, collection, id).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (p *PostgresBackend) Insert(ctx context.Context, collection string, doc Document) error {
	const query = `INSERT INTO documents (collection, id, doc) VALUES ($1, $2, $3)`
	// lib/pq sends []byte as bytea, so JSONB goes over the wire as text.
	if _, err := p.db.ExecContext(ctx, query, collection, doc.ID, string(doc.Data)); err != nil {
		return mapPostgresError(err)
	}
	return nil
}

func (p *PostgresBackend) Replace(ctx context.Context, collection string, doc Document) error {
	const query = `UPDATE documents SET doc = $3 WHERE collection = $1 AND id = $2`
	result, err := p.db.ExecContext(ctx, query, collection, doc.ID, string(doc.Data))
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresBackend) Delete(ctx context.Context, collection, id string) error {
	const query = `DELETE FROM documents WHERE collection = $1 AND id = $2`
	result, err := p.db.ExecContext(ctx, query, collection, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Reset swaps the whole dataset inside one transaction.
func (p *PostgresBackend) Reset(ctx context.Context, data map[string][]Document) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO documents (collection, id, doc) VALUES ($1, $2, $3)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, name := range orderedCollections(data) {
		for _, doc := range data[name] {
			if _, err := stmt.ExecContext(ctx, name, doc.ID, string(doc.Data)); err != nil {
				return mapPostgresError(err)
			}
		}
	}

	return tx.Commit()
}

func (p *PostgresBackend) Close() error {
	return p.db.Close()
}

func mapPostgresError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrConflict
	}
	return err
}

// orderedCollections returns the known collections first, then any others.
func orderedCollections(data map[string][]Document) []string {
	names := make([]string, 0, len(data))
	seen := make(map[string]bool, len(data))
	for _, name := range types.Collections {
		if _, ok := data[name]; ok {
			names = append(names, name)
			seen[name] = true
		}
	}
	for name := range data {
		if !seen[name] {
			names = append(names, name)
		}
	}
	return names
}

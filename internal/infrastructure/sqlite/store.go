// Package sqlite is the SQLite-backed product repository. The engine's
// normalization and relevance rules are registered as SQL functions so that
// queries compare codes and text exactly the way the scorer does.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/logparts/backend/internal/domain"
	"github.com/logparts/backend/internal/matching"
	"github.com/mattn/go-sqlite3"
)

// DriverName is the database/sql driver with the catalog SQL functions installed
const DriverName = "sqlite3_logparts"

var registerOnce sync.Once

// registerDriver installs compact_code, fold and text_relevance on every connection
func registerDriver() {
	registerOnce.Do(func() {
		sql.Register(DriverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				if err := conn.RegisterFunc("compact_code", matching.CompactCode, true); err != nil {
					return err
				}
				if err := conn.RegisterFunc("fold", strings.ToLower, true); err != nil {
					return err
				}
				return conn.RegisterFunc("text_relevance", matching.TextRelevance, true)
			},
		})
	})
}

// Store implements domain.ProductRepository and domain.ProductWriter
type Store struct {
	db    *sql.DB
	debug bool
}

// NewStore opens (creating if needed) the catalog database at path
func NewStore(path string, debug bool) (*Store, error) {
	registerDriver()

	db, err := sql.Open(DriverName, path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	store := &Store{db: db, debug: debug}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return store, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sku TEXT NOT NULL UNIQUE,
		title TEXT,
		description TEXT,
		brand TEXT,
		category TEXT,
		image_urls TEXT,
		original_codes TEXT,
		base_price REAL
	);

	CREATE INDEX IF NOT EXISTS idx_products_title ON products(title);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the database handle
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Insert stores one product. A code that already exists yields ErrDuplicateProduct.
func (s *Store) Insert(ctx context.Context, product domain.ProductRecord) error {
	if strings.TrimSpace(product.Code) == "" {
		return fmt.Errorf("%w: product code is required", domain.ErrInvalidRequest)
	}

	row, err := toRow(product)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO products
			(sku, title, description, brand, category, image_urls, original_codes, base_price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		row.Code, row.Title, row.Description, row.Brand, row.Category,
		row.ImageURLs, row.OriginalCodes, row.BasePrice,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRepositoryFailure, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRepositoryFailure, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateProduct, row.Code)
	}
	return nil
}

// SearchCandidates fetches up to limit records for a search. Code searches match
// the raw code and alternate codes plus their compacted forms; text searches match
// a single term anywhere, or every significant word of a multi-word query.
func (s *Store) SearchCandidates(ctx context.Context, query domain.Query, limit int) ([]domain.ProductRecord, error) {
	if query.IsEmpty() || limit <= 0 {
		return []domain.ProductRecord{}, nil
	}

	if query.Type == domain.SearchTypeCode {
		return s.queryProducts(ctx, `
			SELECT `+productColumns+` FROM products
			WHERE instr(fold(sku), :term) > 0
			   OR instr(fold(COALESCE(original_codes, '')), :term) > 0
			   OR (:compact != '' AND (
			        instr(compact_code(sku), :compact) > 0
			     OR instr(compact_code(COALESCE(original_codes, '')), :compact) > 0))
			ORDER BY
				CASE
					WHEN fold(sku) = :term THEN 1
					WHEN instr(' ' || fold(COALESCE(original_codes, '')) || ' ', ' ' || :term || ' ') > 0 THEN 2
					WHEN instr(fold(sku), :term) > 0 THEN 3
					ELSE 4
				END,
				title, id
			LIMIT :limit`,
			sql.Named("term", query.Lower),
			sql.Named("compact", query.Compact),
			sql.Named("limit", limit),
		)
	}

	where, args := textSearchFilter(query)
	args = append(args,
		sql.Named("term", query.Lower),
		sql.Named("limit", limit),
	)
	return s.queryProducts(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE `+where+`
		ORDER BY text_relevance(:term, COALESCE(title, ''), COALESCE(description, '')) DESC, title, id
		LIMIT :limit`,
		args...,
	)
}

// textSearchFilter builds the WHERE clause for a text search. A multi-word query
// requires every significant word to appear in some field, or the whole term in
// the title or description.
func textSearchFilter(query domain.Query) (string, []interface{}) {
	anyField := func(param string) string {
		return fmt.Sprintf(`(instr(fold(COALESCE(title, '')), :%[1]s) > 0
			OR instr(fold(COALESCE(description, '')), :%[1]s) > 0
			OR instr(fold(sku), :%[1]s) > 0
			OR instr(fold(COALESCE(brand, '')), :%[1]s) > 0
			OR instr(fold(COALESCE(original_codes, '')), :%[1]s) > 0)`, param)
	}

	if len(query.Words) <= 1 {
		return anyField("term"), nil
	}

	fullTerm := `(instr(fold(COALESCE(title, '')), :term) > 0
		OR instr(fold(COALESCE(description, '')), :term) > 0)`

	words := matching.SignificantWords(query.Words)
	if len(words) == 0 {
		return fullTerm, nil
	}

	clauses := make([]string, 0, len(words))
	args := make([]interface{}, 0, len(words))
	for i, w := range words {
		param := fmt.Sprintf("word%d", i)
		clauses = append(clauses, anyField(param))
		args = append(args, sql.Named(param, w))
	}
	return "(" + strings.Join(clauses, " AND ") + ") OR " + fullTerm, args
}

// FindByCodes fetches records whose code equals any of codes, ignoring case
func (s *Store) FindByCodes(ctx context.Context, codes []string, limit int) ([]domain.ProductRecord, error) {
	if len(codes) == 0 || limit <= 0 {
		return []domain.ProductRecord{}, nil
	}

	placeholders := make([]string, 0, len(codes))
	args := make([]interface{}, 0, len(codes)+1)
	for _, c := range codes {
		placeholders = append(placeholders, "?")
		args = append(args, strings.ToLower(c))
	}
	args = append(args, limit)

	return s.queryProducts(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE fold(sku) IN (`+strings.Join(placeholders, ", ")+`)
		ORDER BY sku, id
		LIMIT ?`,
		args...,
	)
}

// FindPartial fetches records whose code, title or description contains term
func (s *Store) FindPartial(ctx context.Context, term string, limit int) ([]domain.ProductRecord, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" || limit <= 0 {
		return []domain.ProductRecord{}, nil
	}

	return s.queryProducts(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE instr(fold(sku), :term) > 0
		   OR instr(fold(COALESCE(title, '')), :term) > 0
		   OR instr(fold(COALESCE(description, '')), :term) > 0
		ORDER BY sku, id
		LIMIT :limit`,
		sql.Named("term", term),
		sql.Named("limit", limit),
	)
}

// FindComplete fetches records that have price, images and description and whose
// code or title contains term
func (s *Store) FindComplete(ctx context.Context, term string, limit int) ([]domain.ProductRecord, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" || limit <= 0 {
		return []domain.ProductRecord{}, nil
	}

	return s.queryProducts(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE base_price IS NOT NULL
		  AND COALESCE(image_urls, '') NOT IN ('', '[]')
		  AND COALESCE(description, '') != ''
		  AND (instr(fold(sku), :term) > 0 OR instr(fold(COALESCE(title, '')), :term) > 0)
		ORDER BY sku, id
		LIMIT :limit`,
		sql.Named("term", term),
		sql.Named("limit", limit),
	)
}

// DistinctCodes scans up to limit distinct non-empty codes in code order
func (s *Store) DistinctCodes(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return []string{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT sku FROM products WHERE sku != '' ORDER BY sku LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRepositoryFailure, err)
	}
	defer rows.Close()

	codes := []string{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrRepositoryFailure, err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRepositoryFailure, err)
	}
	return codes, nil
}

// List pages through the catalog in id order
func (s *Store) List(ctx context.Context, skip, limit int) ([]domain.ProductRecord, error) {
	if limit <= 0 {
		return []domain.ProductRecord{}, nil
	}
	if skip < 0 {
		skip = 0
	}

	return s.queryProducts(ctx, `
		SELECT `+productColumns+` FROM products
		ORDER BY id
		LIMIT ? OFFSET ?`,
		limit, skip,
	)
}

// GetByIDOrCode fetches one record whose id or exact code equals key
func (s *Store) GetByIDOrCode(ctx context.Context, key string) (*domain.ProductRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE CAST(id AS TEXT) = :key OR sku = :key
		ORDER BY CASE WHEN CAST(id AS TEXT) = :key THEN 0 ELSE 1 END, id
		LIMIT 1`,
		sql.Named("key", strings.TrimSpace(key)),
	)

	product, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRepositoryFailure, err)
	}
	return &product, nil
}

// PopularByCompleteness fetches records ordered by how many of price, images and
// description they carry, then by code
func (s *Store) PopularByCompleteness(ctx context.Context, limit int) ([]domain.ProductRecord, error) {
	if limit <= 0 {
		return []domain.ProductRecord{}, nil
	}

	return s.queryProducts(ctx, `
		SELECT `+productColumns+` FROM products
		ORDER BY
			(CASE WHEN base_price IS NOT NULL THEN 1 ELSE 0 END
			 + CASE WHEN COALESCE(image_urls, '') NOT IN ('', '[]') THEN 1 ELSE 0 END
			 + CASE WHEN COALESCE(description, '') != '' THEN 1 ELSE 0 END) DESC,
			sku
		LIMIT ?`,
		limit,
	)
}

func (s *Store) queryProducts(ctx context.Context, query string, args ...interface{}) ([]domain.ProductRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRepositoryFailure, err)
	}
	defer rows.Close()

	products := []domain.ProductRecord{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrRepositoryFailure, err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRepositoryFailure, err)
	}

	if s.debug {
		log.Printf("[SQLITE] fetched %d rows", len(products))
	}
	return products, nil
}

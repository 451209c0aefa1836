package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fwojciec/linkcrawl"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ linkcrawl.CrawlStore = (*CrawlStore)(nil)

// CrawlStore implements linkcrawl.CrawlStore using SQLite.
type CrawlStore struct {
	db *DB
}

// NewCrawlStore creates a new CrawlStore.
func NewCrawlStore(db *DB) *CrawlStore {
	return &CrawlStore{db: db}
}

// CreateCrawl stores a crawl with its URLs and visits in one transaction
// and assigns it a new ID.
func (s *CrawlStore) CreateCrawl(ctx context.Context, result *linkcrawl.CrawlResult) error {
	if err := result.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	id := uuid.New().String()
	var errMsg string
	if result.Err != nil {
		errMsg = result.Err.Error()
	}

	st := result.Stats
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO crawls (id, domain, root, started_at, finished_at, fetched, failed, discovered, enqueued, beyond_depth, bytes, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, result.Domain, result.Root, formatTime(result.StartedAt), formatTime(result.FinishedAt),
		st.Fetched, st.Failed, st.Discovered, st.Enqueued, st.BeyondDepth, st.Bytes, errMsg); err != nil {
		return fmt.Errorf("insert crawl: %w", err)
	}

	urlStmt, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO urls (crawl_id, url) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer urlStmt.Close()
	for _, u := range result.URLs {
		if _, err := urlStmt.ExecContext(ctx, id, u); err != nil {
			return fmt.Errorf("insert url: %w", err)
		}
	}

	visitStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO visits (crawl_id, seq, url, depth, status_code, bytes, content_hash, links, failure, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer visitStmt.Close()
	for i, v := range result.Visits {
		if _, err := visitStmt.ExecContext(ctx, id, i, v.URL, v.Depth, v.StatusCode, v.Bytes,
			v.ContentHash, v.Links, string(v.Failure), v.Error); err != nil {
			return fmt.Errorf("insert visit: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	result.ID = id
	return nil
}

// FindCrawlByID retrieves a crawl with its URLs and visits.
func (s *CrawlStore) FindCrawlByID(ctx context.Context, id string) (*linkcrawl.CrawlResult, error) {
	result, err := scanCrawl(s.db.QueryRowContext(ctx, `
		SELECT id, domain, root, started_at, finished_at, fetched, failed, discovered, enqueued, beyond_depth, bytes, error
		FROM crawls
		WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, linkcrawl.Errorf(linkcrawl.ENOTFOUND, "crawl not found")
	}
	if err != nil {
		return nil, err
	}

	if result.URLs, err = s.findURLs(ctx, id); err != nil {
		return nil, err
	}
	if result.Visits, err = s.findVisits(ctx, id); err != nil {
		return nil, err
	}
	for _, v := range result.Visits {
		if v.Failure != linkcrawl.FailureNone {
			if result.Stats.Failures == nil {
				result.Stats.Failures = make(map[linkcrawl.FailureKind]int)
			}
			result.Stats.Failures[v.Failure]++
		}
	}

	return result, nil
}

// FindCrawls retrieves crawls matching the filter, newest first.
func (s *CrawlStore) FindCrawls(ctx context.Context, filter linkcrawl.CrawlFilter) ([]*linkcrawl.CrawlResult, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT id, domain, root, started_at, finished_at, fetched, failed, discovered, enqueued, beyond_depth, bytes, error
		FROM crawls WHERE 1=1`)

	if filter.Root != nil {
		query.WriteString(" AND root = ?")
		args = append(args, *filter.Root)
	}

	query.WriteString(" ORDER BY started_at DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var crawls []*linkcrawl.CrawlResult
	for rows.Next() {
		result, err := scanCrawl(rows)
		if err != nil {
			return nil, err
		}
		crawls = append(crawls, result)
	}

	return crawls, rows.Err()
}

func (s *CrawlStore) findURLs(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT url FROM urls WHERE crawl_id = ? ORDER BY url", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

func (s *CrawlStore) findVisits(ctx context.Context, id string) ([]linkcrawl.Visit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT url, depth, status_code, bytes, content_hash, links, failure, error
		FROM visits
		WHERE crawl_id = ?
		ORDER BY seq
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visits []linkcrawl.Visit
	for rows.Next() {
		var v linkcrawl.Visit
		var failure string
		if err := rows.Scan(&v.URL, &v.Depth, &v.StatusCode, &v.Bytes, &v.ContentHash, &v.Links, &failure, &v.Error); err != nil {
			return nil, err
		}
		v.Failure = linkcrawl.FailureKind(failure)
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCrawl(row scanner) (*linkcrawl.CrawlResult, error) {
	var result linkcrawl.CrawlResult
	var startedAt, finishedAt, errMsg string

	st := &result.Stats
	if err := row.Scan(&result.ID, &result.Domain, &result.Root, &startedAt, &finishedAt,
		&st.Fetched, &st.Failed, &st.Discovered, &st.Enqueued, &st.BeyondDepth, &st.Bytes, &errMsg); err != nil {
		return nil, err
	}

	var err error
	if result.StartedAt, err = parseRFC3339(startedAt, "started_at"); err != nil {
		return nil, err
	}
	if result.FinishedAt, err = parseRFC3339(finishedAt, "finished_at"); err != nil {
		return nil, err
	}
	if errMsg != "" {
		result.Err = errors.New(errMsg)
	}

	return &result, nil
}

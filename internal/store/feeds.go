package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// UpsertFeed inserts a feed or returns the existing id for its URL. Name and
// slug are only filled in when currently unset; a previously stored name is
// never overwritten.
func (s *Store) UpsertFeed(ctx context.Context, url, name, slug string) (int64, error) {
	var (
		id          int64
		currentName sql.NullString
		currentSlug sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, name, slug FROM feeds WHERE url = ?`, url).
		Scan(&id, &currentName, &currentSlug)
	switch {
	case err == nil:
		newName := currentName.String
		if newName == "" {
			newName = name
		}
		newSlug := currentSlug.String
		if newSlug == "" {
			newSlug = slug
		}
		if _, err := s.db.ExecContext(ctx,
			`UPDATE feeds SET name = ?, slug = ? WHERE id = ?`,
			nullableString(newName), nullableString(newSlug), id,
		); err != nil {
			return 0, fmt.Errorf("update feed: %w", err)
		}
		return id, nil
	case errors.Is(err, sql.ErrNoRows):
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO feeds (url, name, slug, last_checked_at) VALUES (?, ?, ?, ?)`,
			url, nullableString(name), nullableString(slug), nowTimestamp(),
		)
		if err != nil {
			return 0, fmt.Errorf("insert feed: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("last insert id: %w", err)
		}
		return id, nil
	default:
		return 0, fmt.Errorf("select feed: %w", err)
	}
}

// FeedHTTPCache returns the stored conditional-GET validators for a feed URL.
// Unknown URLs return empty validators.
func (s *Store) FeedHTTPCache(ctx context.Context, url string) (etag, lastModified string, err error) {
	var e, lm sql.NullString
	err = s.db.QueryRowContext(ctx, `SELECT etag, last_modified FROM feeds WHERE url = ?`, url).Scan(&e, &lm)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("feed http cache: %w", err)
	}
	return e.String, lm.String, nil
}

// UpdateFeedHTTP stores new conditional-GET validators and refreshes the
// last-checked timestamp.
func (s *Store) UpdateFeedHTTP(ctx context.Context, feedID int64, etag, lastModified string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE feeds SET etag = ?, last_modified = ?, last_checked_at = ? WHERE id = ?`,
		nullableString(etag), nullableString(lastModified), nowTimestamp(), feedID,
	)
	if err != nil {
		return fmt.Errorf("update feed http: %w", err)
	}
	return nil
}

// GetFeedByID fetches a feed record.
func (s *Store) GetFeedByID(ctx context.Context, feedID int64) (*Feed, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, url, name, slug, etag, last_modified, last_checked_at FROM feeds WHERE id = ?`, feedID)
	feed, err := scanFeed(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("feed %d: %w", feedID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get feed: %w", err)
	}
	return feed, nil
}

// FeedsWithStats lists all feeds with aggregated episode counts, ordered by
// name. Used by front ends only.
func (s *Store) FeedsWithStats(ctx context.Context) ([]FeedStats, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT
            f.id, f.url, f.name, f.slug, f.etag, f.last_modified, f.last_checked_at,
            COUNT(CASE WHEN e.status = 'new' THEN 1 END),
            COUNT(CASE WHEN e.status = 'done' THEN 1 END),
            COUNT(e.id)
        FROM feeds f
        LEFT JOIN episodes e ON f.id = e.feed_id
        GROUP BY f.id
        ORDER BY f.name`)
	if err != nil {
		return nil, fmt.Errorf("feeds with stats: %w", err)
	}
	defer rows.Close()

	var feeds []FeedStats
	for rows.Next() {
		var (
			fs         FeedStats
			name       sql.NullString
			slug       sql.NullString
			etag       sql.NullString
			lastMod    sql.NullString
			checkedRaw sql.NullString
		)
		if err := rows.Scan(
			&fs.ID, &fs.URL, &name, &slug, &etag, &lastMod, &checkedRaw,
			&fs.NewCount, &fs.DoneCount, &fs.TotalCount,
		); err != nil {
			return nil, err
		}
		fs.Name = name.String
		fs.Slug = slug.String
		fs.ETag = etag.String
		fs.LastModified = lastMod.String
		if checked, err := parseTimeString(checkedRaw.String); err == nil {
			fs.LastCheckedAt = checked
		}
		feeds = append(feeds, fs)
	}
	return feeds, rows.Err()
}

func scanFeed(scanner interface{ Scan(dest ...any) error }) (*Feed, error) {
	var (
		feed       Feed
		name       sql.NullString
		slug       sql.NullString
		etag       sql.NullString
		lastMod    sql.NullString
		checkedRaw sql.NullString
	)
	if err := scanner.Scan(&feed.ID, &feed.URL, &name, &slug, &etag, &lastMod, &checkedRaw); err != nil {
		return nil, err
	}
	feed.Name = name.String
	feed.Slug = slug.String
	feed.ETag = etag.String
	feed.LastModified = lastMod.String
	if checked, err := parseTimeString(checkedRaw.String); err == nil {
		feed.LastCheckedAt = checked
	}
	return &feed, nil
}

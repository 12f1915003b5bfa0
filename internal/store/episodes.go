package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const episodeColumns = "id, feed_id, guid, audio_url, title, pub_date, episode_dir, audio_path, transcript_path, insights_path, status, error, first_seen_at, updated_at"

// NewEpisode carries the fields required to insert an episode record.
type NewEpisode struct {
	FeedID         int64
	GUID           string
	AudioURL       string
	Title          string
	PubDate        string
	EpisodeDir     string
	AudioPath      string
	TranscriptPath string
	InsightsPath   string
}

// FindEpisode looks up an episode by GUID first, falling back to audio URL.
// Returns nil when neither key matches.
func (s *Store) FindEpisode(ctx context.Context, feedID int64, guid, audioURL string) (*Episode, error) {
	if guid != "" {
		row := s.db.QueryRowContext(ctx,
			`SELECT `+episodeColumns+` FROM episodes WHERE feed_id = ? AND guid = ?`, feedID, guid)
		episode, err := scanEpisode(row)
		if err == nil {
			return episode, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("find episode by guid: %w", err)
		}
	}
	if audioURL != "" {
		row := s.db.QueryRowContext(ctx,
			`SELECT `+episodeColumns+` FROM episodes WHERE feed_id = ? AND audio_url = ?`, feedID, audioURL)
		episode, err := scanEpisode(row)
		if err == nil {
			return episode, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("find episode by audio url: %w", err)
		}
	}
	return nil, nil
}

// InsertEpisode inserts a new episode with status "new". A duplicate key
// (same feed and GUID, or same feed and audio URL) is a silent no-op; the
// existing episode's id is returned with inserted=false.
func (s *Store) InsertEpisode(ctx context.Context, ep NewEpisode) (int64, bool, error) {
	now := nowTimestamp()
	res, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO episodes (
            feed_id, guid, audio_url, title, pub_date, episode_dir,
            audio_path, transcript_path, insights_path, status, error,
            first_seen_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?, ?)`,
		ep.FeedID,
		nullableString(ep.GUID),
		nullableString(ep.AudioURL),
		ep.Title,
		nullableString(ep.PubDate),
		ep.EpisodeDir,
		ep.AudioPath,
		ep.TranscriptPath,
		ep.InsightsPath,
		StatusNew,
		now,
		now,
	)
	if err != nil {
		return 0, false, fmt.Errorf("insert episode: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		existing, err := s.FindEpisode(ctx, ep.FeedID, ep.GUID, ep.AudioURL)
		if err != nil {
			return 0, false, err
		}
		if existing == nil {
			return 0, false, fmt.Errorf("episode insert ignored but no existing row for feed %d", ep.FeedID)
		}
		return existing.ID, false, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("last insert id: %w", err)
	}
	return id, true, nil
}

// UpdateEpisodeStatus overwrites status, error, and the updated timestamp.
// Last writer wins; only one pipeline instance processes a given episode at
// a time by construction.
func (s *Store) UpdateEpisodeStatus(ctx context.Context, episodeID int64, status Status, errMessage string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE episodes SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		status, nullableString(errMessage), nowTimestamp(), episodeID,
	)
	if err != nil {
		return fmt.Errorf("update episode status: %w", err)
	}
	return nil
}

// GetEpisodeByID fetches an episode, returning ErrNotFound when absent.
func (s *Store) GetEpisodeByID(ctx context.Context, episodeID int64) (*Episode, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+episodeColumns+` FROM episodes WHERE id = ?`, episodeID)
	episode, err := scanEpisode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("episode %d: %w", episodeID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get episode: %w", err)
	}
	return episode, nil
}

// ListIncomplete returns a feed's episodes that still need pipeline work, in
// first-seen order. When maxNew is positive, at most maxNew episodes still
// in status "new" are admitted; episodes already in progress always pass.
func (s *Store) ListIncomplete(ctx context.Context, feedID int64, maxNew int) ([]*Episode, error) {
	statuses := IncompleteStatuses()
	args := make([]any, 0, len(statuses)+1)
	args = append(args, feedID)
	for _, status := range statuses {
		args = append(args, status)
	}

	query := `SELECT ` + episodeColumns + ` FROM episodes
        WHERE feed_id = ? AND status IN (` + makePlaceholders(len(statuses)) + `)
        ORDER BY first_seen_at ASC, id ASC`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list incomplete: %w", err)
	}
	defer rows.Close()

	var selected []*Episode
	newCount := 0
	for rows.Next() {
		episode, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		if episode.Status == StatusNew {
			if maxNew > 0 && newCount >= maxNew {
				continue
			}
			newCount++
		}
		selected = append(selected, episode)
	}
	return selected, rows.Err()
}

// EpisodesByFeed returns a page of a feed's episodes ordered by publish date
// descending (unknown dates last), then first-seen descending. A negative
// limit returns everything.
func (s *Store) EpisodesByFeed(ctx context.Context, feedID int64, offset, limit int) ([]*Episode, error) {
	query := `SELECT ` + episodeColumns + ` FROM episodes
        WHERE feed_id = ?
        ORDER BY (pub_date IS NULL) ASC, pub_date DESC, first_seen_at DESC, id DESC`
	args := []any{feedID}
	if limit >= 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("episodes by feed: %w", err)
	}
	defer rows.Close()

	var episodes []*Episode
	for rows.Next() {
		episode, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, episode)
	}
	return episodes, rows.Err()
}

// EpisodeCount returns the number of episodes tracked for a feed.
func (s *Store) EpisodeCount(ctx context.Context, feedID int64) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM episodes WHERE feed_id = ?`, feedID).Scan(&count); err != nil {
		return 0, fmt.Errorf("episode count: %w", err)
	}
	return count, nil
}

func scanEpisode(scanner interface{ Scan(dest ...any) error }) (*Episode, error) {
	var (
		episode        Episode
		guid           sql.NullString
		audioURL       sql.NullString
		title          sql.NullString
		pubDate        sql.NullString
		episodeDir     sql.NullString
		audioPath      sql.NullString
		transcriptPath sql.NullString
		insightsPath   sql.NullString
		statusStr      string
		errMessage     sql.NullString
		firstSeenRaw   sql.NullString
		updatedRaw     sql.NullString
	)

	if err := scanner.Scan(
		&episode.ID,
		&episode.FeedID,
		&guid,
		&audioURL,
		&title,
		&pubDate,
		&episodeDir,
		&audioPath,
		&transcriptPath,
		&insightsPath,
		&statusStr,
		&errMessage,
		&firstSeenRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	episode.GUID = guid.String
	episode.AudioURL = audioURL.String
	episode.Title = title.String
	episode.PubDate = pubDate.String
	episode.EpisodeDir = episodeDir.String
	episode.AudioPath = audioPath.String
	episode.TranscriptPath = transcriptPath.String
	episode.InsightsPath = insightsPath.String
	episode.Status = Status(statusStr)
	episode.ErrorMessage = errMessage.String
	if firstSeen, err := parseTimeString(firstSeenRaw.String); err == nil {
		episode.FirstSeenAt = firstSeen
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		episode.UpdatedAt = updated
	}
	return &episode, nil
}

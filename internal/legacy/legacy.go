// Package legacy reads memories from the earlier SQLite-backed
// agent-memory database so they can be imported into a collection.
package legacy

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/url"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rcliao/recall/internal/errs"
	"github.com/rcliao/recall/internal/model"
)

// kindMap translates the old memory kinds to collection kinds.
var kindMap = map[string]model.Kind{
	"semantic":   model.KindFact,
	"procedural": model.KindDoc,
	"episodic":   model.KindNote,
}

// Source is recorded on each imported item to trace it back to the old row.
type Source struct {
	NS      string `json:"ns"`
	Key     string `json:"key"`
	Version int    `json:"version"`
}

// latestQuery returns the newest live version of every ns+key.
const latestQuery = `
	SELECT m.id, m.ns, m.key, m.content, m.kind, m.tags, m.version,
	       m.created_at, m.meta, m.expires_at
	FROM memories m
	INNER JOIN (
		SELECT ns, key, MAX(version) AS max_ver
		FROM memories WHERE deleted_at IS NULL
		GROUP BY ns, key
	) latest ON m.ns = latest.ns AND m.key = latest.key AND m.version = latest.max_ver
	WHERE m.deleted_at IS NULL
	ORDER BY m.created_at ASC, m.id ASC`

// ReadItems opens the database at path read-only and converts its latest
// live memories into items, oldest first.
func ReadItems(ctx context.Context, path string) ([]model.Item, error) {
	dsn := "file:" + (&url.URL{Path: path}).EscapedPath() + "?mode=ro"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errs.Wrapf(err, errs.CodeLegacyReadFailure, "open legacy db %s", path)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, errs.Wrapf(err, errs.CodeLegacyReadFailure, "open legacy db %s", path)
	}

	rows, err := db.QueryContext(ctx, latestQuery)
	if err != nil {
		return nil, errs.Wrapf(err, errs.CodeLegacyReadFailure, "query legacy db %s", path)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, errs.Wrap(err, errs.CodeLegacyReadFailure, "scan legacy row")
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(err, errs.CodeLegacyReadFailure, "iterate legacy rows")
	}
	return items, nil
}

func scanItem(rows *sql.Rows) (model.Item, error) {
	var (
		id, ns, key, content, kind, createdAt string
		version                               int
		tagsJSON, meta, expiresAt             sql.NullString
	)
	if err := rows.Scan(&id, &ns, &key, &content, &kind, &tagsJSON, &version, &createdAt, &meta, &expiresAt); err != nil {
		return model.Item{}, err
	}

	it := model.Item{
		ID:        id,
		Kind:      MapKind(kind),
		Text:      content,
		CreatedAt: convertTime(createdAt),
		Tags:      []string{},
	}
	if tagsJSON.Valid && tagsJSON.String != "" {
		var tags []string
		if json.Unmarshal([]byte(tagsJSON.String), &tags) == nil && tags != nil {
			it.Tags = tags
		}
	}
	if expiresAt.Valid && expiresAt.String != "" {
		it.ExpiresAt = convertTime(expiresAt.String)
	}
	if meta.Valid && meta.String != "" {
		if json.Valid([]byte(meta.String)) {
			it.Meta = json.RawMessage(meta.String)
		} else {
			quoted, _ := json.Marshal(meta.String)
			it.Meta = quoted
		}
	}
	src, err := json.Marshal(Source{NS: ns, Key: key, Version: version})
	if err != nil {
		return model.Item{}, err
	}
	it.Source = src
	return it, nil
}

// MapKind translates an old kind; unknown kinds become notes.
func MapKind(kind string) model.Kind {
	if k, ok := kindMap[kind]; ok {
		return k
	}
	return model.KindNote
}

// convertTime rewrites an RFC 3339 timestamp in the collection's layout so
// expiry comparisons stay lexical. Unparseable values pass through.
func convertTime(s string) string {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return s
	}
	return model.Now(t)
}

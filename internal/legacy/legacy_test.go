package legacy

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/recall/internal/errs"
	"github.com/rcliao/recall/internal/model"
)

const legacySchema = `
CREATE TABLE memories (
	id          TEXT PRIMARY KEY,
	ns          TEXT NOT NULL,
	key         TEXT NOT NULL,
	content     TEXT NOT NULL,
	kind        TEXT NOT NULL DEFAULT 'semantic',
	tags        TEXT,
	version     INTEGER NOT NULL DEFAULT 1,
	supersedes  TEXT,
	created_at  TEXT NOT NULL,
	deleted_at  TEXT,
	priority    TEXT NOT NULL DEFAULT 'normal',
	access_count INTEGER NOT NULL DEFAULT 0,
	last_accessed_at TEXT,
	meta        TEXT,
	expires_at  TEXT
);`

func newLegacyDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memory.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(legacySchema)
	require.NoError(t, err)

	insert := `INSERT INTO memories (id, ns, key, content, kind, tags, version, created_at, deleted_at, meta, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	rows := [][]any{
		{"01A", "proj", "db", "Use SQLite", "semantic", `["db"]`, 1, "2024-01-01T00:00:00Z", nil, nil, nil},
		{"01B", "proj", "db", "Use Postgres", "semantic", `["db","prod"]`, 2, "2024-02-01T00:00:00Z", nil, `{"by":"sam"}`, nil},
		{"01C", "proj", "howto", "Run make deploy", "procedural", nil, 1, "2024-01-15T00:00:00Z", nil, "not json", nil},
		{"01D", "proj", "gone", "Deleted fact", "semantic", nil, 1, "2024-01-10T00:00:00Z", "2024-01-11T00:00:00Z", nil, nil},
		{"01E", "chat", "standup", "Met with team", "episodic", nil, 1, "2024-03-01T00:00:00Z", nil, nil, "2024-03-08T00:00:00Z"},
		{"01F", "chat", "odd", "Odd kind", "weird", nil, 1, "2024-03-02T00:00:00Z", nil, nil, nil},
	}
	for _, r := range rows {
		_, err := db.Exec(insert, r...)
		require.NoError(t, err)
	}
	return path
}

func TestReadItems(t *testing.T) {
	items, err := ReadItems(context.Background(), newLegacyDB(t))
	require.NoError(t, err)

	var got []string
	for _, it := range items {
		got = append(got, it.ID)
	}
	assert.Equal(t, []string{"01C", "01B", "01E", "01F"}, got)

	byID := map[string]model.Item{}
	for _, it := range items {
		byID[it.ID] = it
	}

	pg := byID["01B"]
	assert.Equal(t, model.KindFact, pg.Kind)
	assert.Equal(t, "Use Postgres", pg.Text)
	assert.Equal(t, []string{"db", "prod"}, pg.Tags)
	assert.Equal(t, "2024-02-01T00:00:00.000Z", pg.CreatedAt)
	assert.JSONEq(t, `{"by":"sam"}`, string(pg.Meta))
	assert.JSONEq(t, `{"ns":"proj","key":"db","version":2}`, string(pg.Source))

	howto := byID["01C"]
	assert.Equal(t, model.KindDoc, howto.Kind)
	assert.Equal(t, `"not json"`, string(howto.Meta))
	assert.Equal(t, []string{}, howto.Tags)

	standup := byID["01E"]
	assert.Equal(t, model.KindNote, standup.Kind)
	assert.Equal(t, "2024-03-08T00:00:00.000Z", standup.ExpiresAt)

	assert.Equal(t, model.KindNote, byID["01F"].Kind)
}

func TestReadItems_MissingFile(t *testing.T) {
	_, err := ReadItems(context.Background(), filepath.Join(t.TempDir(), "absent.db"))
	require.Error(t, err)
	assert.True(t, errs.HasCode(err, errs.CodeLegacyReadFailure))
}

func TestMapKind(t *testing.T) {
	tests := map[string]model.Kind{
		"semantic":   model.KindFact,
		"procedural": model.KindDoc,
		"episodic":   model.KindNote,
		"":           model.KindNote,
		"fact":       model.KindNote,
	}
	for in, want := range tests {
		assert.Equal(t, want, MapKind(in), in)
	}
}

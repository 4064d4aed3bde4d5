package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/localnerve/tuskfish/internal/config"
	"github.com/localnerve/tuskfish/internal/criteria"
	"github.com/localnerve/tuskfish/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLinks = models.Links{SiteURL: "https://tuskfish.example/"}

func newTestDatabase(t *testing.T) *Database {
	t.Helper()

	cfg := &config.Config{
		DBType:     "sqlite",
		DBDatabase: filepath.Join(t.TempDir(), "tuskfish.db"),
	}
	db, err := Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, AutoMigrate(db))

	d, err := New(db)
	require.NoError(t, err)
	return d
}

func insertArticle(t *testing.T, d *Database, title, date string, online int64) int64 {
	t.Helper()

	article := &models.Article{Content: models.Content{
		Type:         models.TypeArticle,
		Title:        title,
		Teaser:       `<a href="https://tuskfish.example/?id=1">home</a>`,
		Date:         date,
		Language:     "en",
		OnlineStatus: online,
		InFeed:       1,
	}}
	id, err := d.Insert(context.Background(), "content", article.Persistable(testLinks))
	require.NoError(t, err)
	require.Positive(t, id)
	return id
}

func TestSelectOnlineSortedByDate(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()

	for i := 1; i <= 15; i++ {
		online := int64(1)
		if i%3 == 0 {
			online = 0
		}
		insertArticle(t, d, fmt.Sprintf("Article %d", i), fmt.Sprintf("2026-01-%02d", i), online)
	}

	c := criteria.New()
	item, err := criteria.Eq("onlineStatus", 1)
	require.NoError(t, err)
	c.Add(item)
	require.NoError(t, c.SetSort("date"))
	c.SetOrder("DESC")
	require.NoError(t, c.SetLimit(5))

	result, err := d.Select(ctx, "content", c, nil)
	require.NoError(t, err)

	entities, err := result.AllEntities(models.NewRegistry(), "content", testLinks)
	require.NoError(t, err)
	require.Len(t, entities, 5)

	previous := "9999-99-99"
	for _, entity := range entities {
		article, ok := entity.(*models.Article)
		require.True(t, ok)
		assert.Equal(t, int64(1), article.OnlineStatus)
		assert.Less(t, article.Date, previous)
		assert.Contains(t, article.Teaser, "https://tuskfish.example/?id=1")
		previous = article.Date
	}
	assert.Equal(t, "2026-01-14", entities[0].(*models.Article).Date)

	total, err := d.SelectCount(ctx, "content", c)
	require.NoError(t, err)
	assert.Equal(t, int64(10), total)
}

func TestInsertStoresPlaceholder(t *testing.T) {
	d := newTestDatabase(t)
	id := insertArticle(t, d, "Links", "2026-02-01", 1)

	c := criteria.New()
	item, err := criteria.Eq("id", id)
	require.NoError(t, err)
	c.Add(item)

	result, err := d.Select(context.Background(), "content", c, []string{"teaser"})
	require.NoError(t, err)
	defer result.Close()

	require.True(t, result.Next())
	row, err := result.FetchAssoc()
	require.NoError(t, err)
	assert.Equal(t, `<a href="TFISH_LINK?id=1">home</a>`, row["teaser"])
	assert.False(t, result.Next())
	assert.NoError(t, result.Err())
}

func TestUpdateAndDeleteMissingRow(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()
	id := insertArticle(t, d, "Original", "2026-03-01", 1)

	require.NoError(t, d.Update(ctx, "content", id, map[string]any{"title": "Changed"}))
	// unchanged values still count as a match
	require.NoError(t, d.Update(ctx, "content", id, map[string]any{"title": "Changed"}))

	err := d.Update(ctx, "content", id+100, map[string]any{"title": "Nobody"})
	assert.ErrorIs(t, err, ErrNoRows)

	require.NoError(t, d.Delete(ctx, "content", id))
	assert.ErrorIs(t, d.Delete(ctx, "content", id), ErrNoRows)
}

func TestIdentifierAllowList(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()

	_, err := d.Select(ctx, "content; DROP TABLE user", nil, nil)
	assert.ErrorIs(t, err, criteria.ErrInvalidColumn)

	_, err = d.Select(ctx, "widgets", nil, nil)
	assert.ErrorIs(t, err, ErrUnknownTable)

	_, err = d.Select(ctx, "content", nil, []string{"title", "passwordHash"})
	assert.ErrorIs(t, err, ErrUnknownColumn)

	c := criteria.New()
	item, err := criteria.Eq("adminEmail", "x")
	require.NoError(t, err)
	c.Add(item)
	_, err = d.SelectCount(ctx, "content", c)
	assert.ErrorIs(t, err, ErrUnknownColumn)

	assert.ErrorIs(t, d.ToggleBoolean(ctx, 1, "content", "nope"), ErrUnknownColumn)
	_, err = d.Insert(ctx, "content", map[string]any{"title": "x", "bogus": 1})
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestConcurrentToggleLosesNoUpdates(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()

	for _, n := range []int{6, 7} {
		id := insertArticle(t, d, "Toggle", "2026-04-01", 1)

		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- d.ToggleBoolean(ctx, id, "content", "onlineStatus")
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		c := criteria.New()
		item, err := criteria.Eq("id", id)
		require.NoError(t, err)
		c.Add(item)
		result, err := d.Select(ctx, "content", c, []string{"onlineStatus"})
		require.NoError(t, err)
		values, err := result.Int64Column()
		require.NoError(t, err)
		require.Len(t, values, 1)
		assert.Equal(t, int64(1^(n%2)), values[0], "n=%d", n)
	}

	assert.ErrorIs(t, d.ToggleBoolean(ctx, 9999, "content", "onlineStatus"), ErrNoRows)
}

func TestUpdateCounter(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()
	id := insertArticle(t, d, "Counted", "2026-05-01", 1)

	for i := 0; i < 3; i++ {
		require.NoError(t, d.UpdateCounter(ctx, id, "content", "counter"))
	}

	c := criteria.New()
	item, err := criteria.Eq("id", id)
	require.NoError(t, err)
	c.Add(item)
	result, err := d.Select(ctx, "content", c, []string{"counter"})
	require.NoError(t, err)
	values, err := result.Int64Column()
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, values)
}

func TestUpdateAllAndDeleteAll(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()
	for i := 1; i <= 4; i++ {
		insertArticle(t, d, "Bulk", fmt.Sprintf("2026-06-0%d", i), 1)
	}

	c := criteria.New()
	item, err := criteria.NewItem("date", "2026-06-03", criteria.OpLt)
	require.NoError(t, err)
	c.Add(item)

	n, err := d.UpdateAll(ctx, "content", map[string]any{"onlineStatus": 0}, c)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = d.DeleteAll(ctx, "content", criteria.New())
	assert.ErrorIs(t, err, criteria.ErrInvalidArgument)

	n, err = d.DeleteAll(ctx, "content", c)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	total, err := d.SelectCount(ctx, "content", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestTagFilter(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()
	first := insertArticle(t, d, "Tagged", "2026-07-01", 1)
	insertArticle(t, d, "Untagged", "2026-07-02", 1)

	_, err := d.Insert(ctx, "taglink", map[string]any{
		"tagId": int64(9), "contentType": models.TypeArticle, "contentId": first,
		"language": "en", "module": models.ModuleContent,
	})
	require.NoError(t, err)

	c := criteria.New()
	require.NoError(t, c.SetTag([]int64{9}))
	c.SetTagModule(models.ModuleContent)

	result, err := d.Select(ctx, "content", c, []string{"id"})
	require.NoError(t, err)
	ids, err := result.Int64Column()
	require.NoError(t, err)
	assert.Equal(t, []int64{first}, ids)

	c.SetTagModule(models.ModuleExperts)
	total, err := d.SelectCount(ctx, "content", c)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSelectDistinct(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()
	insertArticle(t, d, "Same", "2026-08-01", 1)
	insertArticle(t, d, "Same", "2026-08-02", 1)

	c := criteria.New()
	require.NoError(t, c.SetSort("title"))
	result, err := d.SelectDistinct(ctx, "content", c, []string{"title"})
	require.NoError(t, err)
	rows, err := result.AllAssoc()
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{{"title": "Same"}}, rows)

	_, err = d.SelectDistinct(ctx, "content", c, nil)
	assert.ErrorIs(t, err, criteria.ErrInvalidArgument)
}

func TestPreparedStatement(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()
	insertArticle(t, d, "Dugong survey", "2026-09-01", 1)
	insertArticle(t, d, "Turtle survey", "2026-09-02", 1)
	insertArticle(t, d, "Reef notes", "2026-09-03", 0)

	stmt, err := d.PreparedStatement(ctx, `SELECT "title" FROM "content" WHERE "title" LIKE ? AND "onlineStatus" = ? ORDER BY "title"`)
	require.NoError(t, err)

	result, err := stmt.Query("%survey%", 1)
	require.NoError(t, err)
	rows, err := result.AllAssoc()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Dugong survey", rows[0]["title"])

	// the cached statement is reused with new bindings
	result, err = stmt.Query("Reef%", 0)
	require.NoError(t, err)
	rows, err = result.AllAssoc()
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	update, err := d.PreparedStatement(ctx, `UPDATE "content" SET "counter" = "counter" + ? WHERE "onlineStatus" = ?`)
	require.NoError(t, err)
	n, err := update.Exec(5, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	bad, err := d.PreparedStatement(ctx, `SELECT * FROM "missing_table" WHERE "id" = ?`)
	require.NoError(t, err)
	_, err = bad.Query(1)
	assert.ErrorIs(t, err, ErrStatement)

	_, err = d.PreparedStatement(ctx, "   ")
	assert.ErrorIs(t, err, ErrStatement)
}

func TestExecuteTransactionRollsBack(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := d.ExecuteTransaction(ctx, func(tx *Database) error {
		if _, err := tx.Insert(ctx, "content", map[string]any{"type": models.TypeArticle, "title": "Ghost"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	total, err := d.SelectCount(ctx, "content", nil)
	require.NoError(t, err)
	assert.Zero(t, total)

	err = d.ExecuteTransaction(ctx, func(tx *Database) error {
		_, err := tx.Insert(ctx, "content", map[string]any{"type": models.TypeArticle, "title": "Kept"})
		return err
	})
	require.NoError(t, err)

	total, err = d.SelectCount(ctx, "content", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestFetchWithoutNext(t *testing.T) {
	d := newTestDatabase(t)
	result, err := d.Select(context.Background(), "content", nil, nil)
	require.NoError(t, err)
	defer result.Close()

	_, err = result.FetchAssoc()
	assert.Error(t, err)
	assert.False(t, result.Next())
	assert.NoError(t, result.Close())
}

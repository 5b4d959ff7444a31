package repositories

import (
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})
	return db
}

func diskMessage(room int, author, content string, at time.Time) DiskMessage {
	return DiskMessage{
		ID:      uuid.New(),
		Room:    room,
		Author:  author,
		Content: content,
		At:      at.UTC(),
	}
}

func Test_Store_And_Get_Messages_Newest_First(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewMessageRepository(db, slog.Default(), nil)

	base := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	oldest := diskMessage(1, "alice", "first", base)
	middle := diskMessage(1, "bob", "second", base.Add(time.Minute))
	newest := diskMessage(1, "alice", "third", base.Add(2*time.Minute))
	for _, m := range []DiskMessage{oldest, middle, newest} {
		req.NoError(repository.StoreMessage(m))
	}

	fetched, _, err := repository.GetMessages(1, nil)
	req.NoError(err)
	req.Len(fetched, 3)
	req.Equal(newest.ID, fetched[0].ID)
	req.Equal(middle.ID, fetched[1].ID)
	req.Equal(oldest.ID, fetched[2].ID)
}

func Test_Get_Messages_Isolated_Per_Room(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewMessageRepository(db, slog.Default(), nil)

	at := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	req.NoError(repository.StoreMessage(diskMessage(1, "alice", "room one", at)))
	req.NoError(repository.StoreMessage(diskMessage(2, "bob", "room two", at)))

	fetched, _, err := repository.GetMessages(1, nil)
	req.NoError(err)
	req.Len(fetched, 1)
	req.Equal("room one", fetched[0].Content)
}

func Test_Get_Messages_Cursor_Pagination(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	limit := 2
	repository := NewMessageRepository(db, slog.Default(), &limit)

	base := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	var stored []DiskMessage
	for i := 0; i < 5; i++ {
		m := diskMessage(1, "alice", "msg", base.Add(time.Duration(i)*time.Second))
		req.NoError(repository.StoreMessage(m))
		stored = append(stored, m)
	}

	firstPage, cursor, err := repository.GetMessages(1, nil)
	req.NoError(err)
	req.Len(firstPage, 2)
	req.Equal(stored[4].ID, firstPage[0].ID)
	req.Equal(stored[3].ID, firstPage[1].ID)
	req.NotNil(cursor)

	secondPage, _, err := repository.GetMessages(1, cursor)
	req.NoError(err)
	req.Len(secondPage, 2)
	req.Equal(stored[2].ID, secondPage[0].ID)
	req.Equal(stored[1].ID, secondPage[1].ID)
}

func Test_Occurrences_Between_Respects_Window_Bounds(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewMessageRepository(db, slog.Default(), nil)

	from := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	inside := []time.Time{
		from, // inclusive lower bound
		from.Add(time.Hour),
		to.Add(-time.Nanosecond),
	}
	outside := []time.Time{
		from.Add(-time.Nanosecond),
		to, // exclusive upper bound
		to.Add(time.Hour),
	}
	for i, at := range append(inside, outside...) {
		req.NoError(repository.StoreMessage(diskMessage(i%3+1, "alice", "msg", at)))
	}

	occurrences, err := repository.OccurrencesBetween(from, to)
	req.NoError(err)
	req.Len(occurrences, len(inside))
	for i, at := range inside {
		req.True(occurrences[i].Equal(at), "occurrence %d", i)
	}
}

func Test_Occurrences_Between_Spans_All_Rooms(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewMessageRepository(db, slog.Default(), nil)

	at := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	req.NoError(repository.StoreMessage(diskMessage(1, "alice", "a", at)))
	req.NoError(repository.StoreMessage(diskMessage(7, "bob", "b", at.Add(time.Minute))))

	occurrences, err := repository.OccurrencesBetween(at.Add(-time.Hour), at.Add(time.Hour))
	req.NoError(err)
	req.Len(occurrences, 2)
}

func Test_Purge_Expired_Removes_Message_And_Indexes(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewMessageRepository(db, slog.Default(), nil)

	at := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	expiresSoon := at.Add(time.Hour)
	expiresLater := at.Add(6 * time.Hour)

	gone := diskMessage(1, "alice", "ephemeral", at)
	gone.Disappearing = true
	gone.ExpiresAt = &expiresSoon

	stays := diskMessage(1, "bob", "still here", at.Add(time.Minute))
	stays.Disappearing = true
	stays.ExpiresAt = &expiresLater

	durable := diskMessage(1, "carol", "forever", at.Add(2*time.Minute))

	for _, m := range []DiskMessage{gone, stays, durable} {
		req.NoError(repository.StoreMessage(m))
	}

	purged, err := repository.PurgeExpired(expiresSoon)
	req.NoError(err)
	req.Equal(1, purged)

	fetched, _, err := repository.GetMessages(1, nil)
	req.NoError(err)
	req.Len(fetched, 2)
	for _, m := range fetched {
		req.NotEqual(gone.ID, m.ID)
	}

	occurrences, err := repository.OccurrencesBetween(at.Add(-time.Hour), at.Add(time.Hour))
	req.NoError(err)
	req.Len(occurrences, 2)

	// A second purge finds nothing left.
	purged, err = repository.PurgeExpired(expiresSoon)
	req.NoError(err)
	req.Zero(purged)
}

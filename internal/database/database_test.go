package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *BoltDB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRemoteIDRoundTrip(t *testing.T) {
	db := newTestDB(t)

	hash := "c9e15763f722f23e98a29decdfae341b98d53056"

	record, err := db.GetRemoteID(hash)
	require.NoError(t, err)
	assert.Nil(t, record, "missing hash should return nil record")

	require.NoError(t, db.SetRemoteID(hash, "184729"))

	record, err = db.GetRemoteID(hash)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, hash, record.Hash)
	assert.Equal(t, "184729", record.RemoteID)
	assert.False(t, record.UpdatedAt.IsZero())
}

func TestSetRemoteIDReplaces(t *testing.T) {
	db := newTestDB(t)

	hash := "c9e15763f722f23e98a29decdfae341b98d53056"
	require.NoError(t, db.SetRemoteID(hash, "111"))
	require.NoError(t, db.SetRemoteID(hash, "222"))

	record, err := db.GetRemoteID(hash)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "222", record.RemoteID)
}

func TestDeleteRemoteID(t *testing.T) {
	db := newTestDB(t)

	hash := "c9e15763f722f23e98a29decdfae341b98d53056"
	require.NoError(t, db.SetRemoteID(hash, "111"))
	require.NoError(t, db.DeleteRemoteID(hash))

	record, err := db.GetRemoteID(hash)
	require.NoError(t, err)
	assert.Nil(t, record)

	// Deleting again is not an error.
	require.NoError(t, db.DeleteRemoteID(hash))
}

func TestMagnetRetention(t *testing.T) {
	db := newTestDB(t)

	old := &MagnetRecord{
		RemoteID: "100",
		Hash:     "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		Title:    "Old.Release.1080p",
		AddedAt:  time.Now().Add(-48 * time.Hour),
	}
	fresh := &MagnetRecord{
		RemoteID: "200",
		Hash:     "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		Title:    "Fresh.Release.1080p",
	}
	require.NoError(t, db.StoreMagnet(old))
	require.NoError(t, db.StoreMagnet(fresh))

	expired, err := db.ListMagnetsOlderThan(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "100", expired[0].RemoteID)

	require.NoError(t, db.DeleteMagnet("100"))

	expired, err = db.ListMagnetsOlderThan(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Empty(t, expired)
}

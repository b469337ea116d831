package badger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/equitas/internal/common"
)

func TestNewBadgerDB_SyncWrites(t *testing.T) {
	db, err := NewBadgerDB(arbor.NewLogger(), &common.BadgerConfig{Path: filepath.Join(t.TempDir(), "db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	assert.True(t, db.Store().Badger().Opts().SyncWrites)
}

func TestNewBadgerDB_ResetOnStartup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")
	logger := arbor.NewLogger()

	db, err := NewBadgerDB(logger, &common.BadgerConfig{Path: path})
	require.NoError(t, err)
	reports := NewReportStorage(db, logger)
	_, err = reports.CreateReport(context.Background(), "usr_1", "AAL US")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = NewBadgerDB(logger, &common.BadgerConfig{Path: path, ResetOnStartup: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	all, err := NewReportStorage(db, logger).ListReports(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

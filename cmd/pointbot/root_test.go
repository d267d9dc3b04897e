package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/susu3304/pointbot/internal/config"
	"github.com/susu3304/pointbot/internal/db"
	"github.com/susu3304/pointbot/internal/ledger"
)

func TestApplyOverrides(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--prefix", "!karma", "--record", "flag.yml"}))

	cfg := &config.Config{Prefix: "!points", DiscordChannelID: "env", RecordPath: "env.yml", WebBind: ":3000"}
	applyOverrides(cmd, cfg, flags{prefix: "!karma", record: "flag.yml"}, []string{"arg-channel", "arg.yml"})

	assert.Equal(t, "!karma", cfg.Prefix)
	assert.Equal(t, "arg-channel", cfg.DiscordChannelID)
	assert.Equal(t, "flag.yml", cfg.RecordPath)
	assert.Equal(t, ":3000", cfg.WebBind)
}

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	tests := []struct {
		backend string
		record  string
		check   func(t *testing.T, s ledger.Store)
	}{
		{config.BackendFile, filepath.Join(dir, "points.yml"), func(t *testing.T, s ledger.Store) {
			assert.IsType(t, &ledger.FileStore{}, s)
		}},
		{config.BackendSQLite, filepath.Join(dir, "points.db"), func(t *testing.T, s ledger.Store) {
			assert.IsType(t, &db.SQLiteStore{}, s)
		}},
		{config.BackendMemory, "", func(t *testing.T, s ledger.Store) {
			assert.IsType(t, &ledger.MemoryStore{}, s)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			s, closeStore, err := openStore(ctx, &config.Config{LedgerBackend: tt.backend, RecordPath: tt.record})
			require.NoError(t, err)
			defer closeStore()
			tt.check(t, s)
		})
	}
}

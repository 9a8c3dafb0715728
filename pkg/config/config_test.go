package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, StorageFile, cfg.Storage.Backend)
	assert.Equal(t, "school_db_v6", cfg.Storage.Key)
	assert.Equal(t, []string{"اسم"}, cfg.Import.HeaderMarkers)
	assert.Equal(t, "0600-06FF", cfg.Import.ScriptBlock)
	assert.Equal(t, 3, cfg.Import.MinNameLength)
	assert.Equal(t, int64(5*1024*1024), cfg.Import.MaxFileSizeBytes)
	assert.Equal(t, 720*time.Hour, cfg.Backup.Retention)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", " Redis ")
	t.Setenv("IMPORT_HEADER_MARKERS", "اسم, name ,")
	t.Setenv("BEHAVIOR_STRICT_VOCABULARY", "true")
	t.Setenv("BACKUP_RETENTION", "not-a-duration")
	t.Setenv("IMPORT_CHARSETS", "iso-8859-6, utf-8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageRedis, cfg.Storage.Backend)
	assert.Equal(t, []string{"اسم", "name"}, cfg.Import.HeaderMarkers)
	assert.Equal(t, []string{"iso-8859-6", "utf-8"}, cfg.Import.Charsets)
	assert.True(t, cfg.Behavior.StrictVocabulary)
	assert.Equal(t, 30*24*time.Hour, cfg.Backup.Retention)
}

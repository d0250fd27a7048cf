package toml

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/samgubernick/TidyTabs-VisualStudio/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T, settingsPath string) *Repository {
	t.Helper()

	config := viper.New()
	config.Set(settingsPathKey, settingsPath)

	repo, err := NewRepository(config)
	require.NoError(t, err)
	return repo
}

func TestRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "settings.toml"))
	want := domain.Settings{
		PurgeStaleTabsOnSave: false,
		TabTimeoutMinutes:    45,
		TabCloseThreshold:    6,
		MaxOpenTabs:          12,
	}

	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Settings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRepositoryMissingFileYieldsDefaults(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "missing", "settings.toml"))

	got, err := repo.Settings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), got)
}

func TestRepositoryMissingKeysFallBackToDefaults(t *testing.T) {
	t.Parallel()

	settingsPath := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(settingsPath, []byte(strings.Join([]string{
		"version = 1",
		"",
		"[settings]",
		"max_open_tabs = 4",
		"",
	}, "\n")), 0o600))

	got, err := newTestRepository(t, settingsPath).Settings(context.Background())
	require.NoError(t, err)

	want := domain.DefaultSettings()
	want.MaxOpenTabs = 4
	assert.Equal(t, want, got)
}

func TestRepositoryReadsEditsWithoutReopening(t *testing.T) {
	t.Parallel()

	settingsPath := filepath.Join(t.TempDir(), "settings.toml")
	repo := newTestRepository(t, settingsPath)
	require.NoError(t, repo.Save(context.Background(), domain.DefaultSettings()))

	require.NoError(t, os.WriteFile(settingsPath, []byte("version = 1\n[settings]\npurge_stale_tabs_on_save = false\n"), 0o600))

	got, err := repo.Settings(context.Background())
	require.NoError(t, err)
	assert.False(t, got.PurgeStaleTabsOnSave)
}

func TestRepositorySaveCreatesDefaultPathAndEnforcesPermissions(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)

	repo, err := NewRepository(viper.New())
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), domain.DefaultSettings()))

	settingsPath := filepath.Join(homeDir, ".tidytabs", "settings.toml")
	assert.Equal(t, settingsPath, repo.Path())
	info, err := os.Stat(settingsPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRepositoryHonorsPathFromConfigFile(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)

	custom := filepath.Join(homeDir, "elsewhere", "tabs.toml")
	require.NoError(t, os.MkdirAll(filepath.Join(homeDir, ".tidytabs"), 0o700))
	require.NoError(t, os.WriteFile(
		filepath.Join(homeDir, ".tidytabs", "config.toml"),
		[]byte("[settings]\npath = \""+filepath.ToSlash(custom)+"\"\n"),
		0o600,
	))

	repo, err := NewRepository(viper.New())
	require.NoError(t, err)
	assert.Equal(t, custom, repo.Path())
}

func TestRepositorySaveRejectsInvalidSettings(t *testing.T) {
	t.Parallel()

	settingsPath := filepath.Join(t.TempDir(), "settings.toml")
	repo := newTestRepository(t, settingsPath)

	err := repo.Save(context.Background(), domain.Settings{TabTimeoutMinutes: -1})
	require.ErrorIs(t, err, domain.ErrInvalidSettings)
	_, statErr := os.Stat(settingsPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRepositorySet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		key     string
		value   string
		check   func(t *testing.T, s domain.Settings)
		wantErr error
	}{
		{
			name:  "bool",
			key:   KeyPurgeStaleTabsOnSave,
			value: "false",
			check: func(t *testing.T, s domain.Settings) { assert.False(t, s.PurgeStaleTabsOnSave) },
		},
		{
			name:  "timeout",
			key:   KeyTabTimeoutMinutes,
			value: "90",
			check: func(t *testing.T, s domain.Settings) { assert.Equal(t, 90, s.TabTimeoutMinutes) },
		},
		{
			name:  "threshold",
			key:   KeyTabCloseThreshold,
			value: "0",
			check: func(t *testing.T, s domain.Settings) { assert.Zero(t, s.TabCloseThreshold) },
		},
		{
			name:  "cap",
			key:   KeyMaxOpenTabs,
			value: "15",
			check: func(t *testing.T, s domain.Settings) { assert.Equal(t, 15, s.MaxOpenTabs) },
		},
		{name: "unknown key", key: "font_size", value: "12", wantErr: ErrUnknownSetting},
		{name: "not an integer", key: KeyMaxOpenTabs, value: "lots", wantErr: domain.ErrInvalidSettings},
		{name: "not a bool", key: KeyPurgeStaleTabsOnSave, value: "sometimes", wantErr: domain.ErrInvalidSettings},
		{name: "fails validation", key: KeyTabTimeoutMinutes, value: "0", wantErr: domain.ErrInvalidSettings},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			repo := newTestRepository(t, filepath.Join(t.TempDir(), "settings.toml"))

			updated, err := repo.Set(context.Background(), tc.key, tc.value)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				stored, readErr := repo.Settings(context.Background())
				require.NoError(t, readErr)
				assert.Equal(t, domain.DefaultSettings(), stored)
				return
			}

			require.NoError(t, err)
			tc.check(t, updated)
			stored, err := repo.Settings(context.Background())
			require.NoError(t, err)
			assert.Equal(t, updated, stored)
		})
	}
}

func TestRepositoryMalformedTOMLReturnsError(t *testing.T) {
	t.Parallel()

	settingsPath := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(settingsPath, []byte("[settings"), 0o600))

	_, err := newTestRepository(t, settingsPath).Settings(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "decode settings file")
}

func TestRepositoryFutureSchemaVersionReturnsError(t *testing.T) {
	t.Parallel()

	settingsPath := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(settingsPath, []byte("version = 999\n"), 0o600))

	_, err := newTestRepository(t, settingsPath).Settings(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported settings schema version")
}

func TestRepositorySerializedTOMLIncludesVersion(t *testing.T) {
	t.Parallel()

	settingsPath := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, newTestRepository(t, settingsPath).Save(context.Background(), domain.DefaultSettings()))

	data, err := os.ReadFile(settingsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version = 1")
	assert.Contains(t, string(data), "tab_timeout_minutes = 1440")
}

func TestRepositoryCanceledContextReturnsContextError(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "settings.toml"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, repo.Save(ctx, domain.DefaultSettings()), context.Canceled)
	_, err := repo.Settings(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRepositoryConcurrentSetsAcrossInstances(t *testing.T) {
	t.Parallel()

	settingsPath := filepath.Join(t.TempDir(), "settings.toml")
	repoA := newTestRepository(t, settingsPath)
	repoB := newTestRepository(t, settingsPath)

	const writes = 50
	errCh := make(chan error, writes*2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 1; i <= writes; i++ {
			_, err := repoA.Set(context.Background(), KeyMaxOpenTabs, strconv.Itoa(i))
			errCh <- err
		}
	}()
	go func() {
		defer wg.Done()
		for i := 1; i <= writes; i++ {
			_, err := repoB.Set(context.Background(), KeyTabCloseThreshold, strconv.Itoa(i))
			errCh <- err
		}
	}()
	wg.Wait()
	close(errCh)

	for err := range errCh {
		require.NoError(t, err)
	}

	got, err := repoA.Settings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, writes, got.MaxOpenTabs)
	assert.Equal(t, writes, got.TabCloseThreshold)
}

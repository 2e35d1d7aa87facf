package backend_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/polizas-reportes/internal/domain/repository"
	"github.com/jhoicas/polizas-reportes/internal/infrastructure/backend"
)

func TestFileSource_LeeVolcados(t *testing.T) {
	dir := t.TempDir()
	entries := filepath.Join(dir, "entries.json")
	rms := filepath.Join(dir, "rms.json")
	require.NoError(t, os.WriteFile(entries, []byte(`{"items":[{"id":1,"netPremium":"2,500"}]}`), 0o600))
	require.NoError(t, os.WriteFile(rms, []byte(`[{"id":"rm-1","name":"Anita"}]`), 0o600))

	src := &backend.FileSource{EntriesPath: entries, RMsPath: rms}
	ctx := context.Background()

	got, err := src.ListBusinessEntries(ctx, repository.Credentials{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID.String())
	assert.Equal(t, "2500", got[0].NetPremium.Value().String())

	gotRMs, err := src.ListRelationshipManagers(ctx, repository.Credentials{})
	require.NoError(t, err)
	assert.Len(t, gotRMs, 1)

	assoc, err := src.ListAssociates(ctx, repository.Credentials{})
	require.NoError(t, err)
	assert.Empty(t, assoc)

	_, err = (&backend.FileSource{EntriesPath: filepath.Join(dir, "nope.json")}).ListBusinessEntries(ctx, repository.Credentials{})
	assert.Error(t, err)
}

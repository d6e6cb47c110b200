package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/silta/mapper"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "silta.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

const minimalConfig = `
backstage:
  base_url: https://backstage.example.com
glean:
  instance: mycompany
  api_key: secret
`

func TestLoad_Minimal(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "https://backstage.example.com", cfg.Backstage.BaseURL)
	assert.Equal(t, 100, cfg.Backstage.PageSize)
	assert.True(t, cfg.VerifySSL())
	assert.Equal(t, "backstage", cfg.Glean.Datasource)
	assert.Equal(t, 50, cfg.Sync.BatchSize)
	assert.Len(t, cfg.Sync.Kinds, 7)
	assert.Equal(t, mapper.PolicyDatasourceUsers, cfg.Policy())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_MissingRequired(t *testing.T) {
	_, err := Load(writeConfig(t, "backstage:\n  base_url: https://x\n"))
	assert.ErrorContains(t, err, "glean.instance")
}

func TestLoad_UnknownPolicyIsFatal(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
sync:
  permissions: everyone
`))
	assert.ErrorContains(t, err, "unknown permissions policy")
}

func TestLoad_ValidPolicy(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
sync:
  permissions: owner
`))
	require.NoError(t, err)
	assert.Equal(t, mapper.PolicyOwner, cfg.Policy())
}

func TestLoad_UnknownKindRejected(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
sync:
  kinds: [User, Widget]
`))
	assert.ErrorContains(t, err, "unknown entity kind")
}

func TestLoad_KindsCanonicalized(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
sync:
  kinds: [user, component, api]
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"User", "Component", "API"}, cfg.Sync.Kinds)
}

func TestLoad_BatchSizeBounds(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
sync:
  batch_size: 500
`))
	assert.ErrorContains(t, err, "batch_size")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GLEAN_INDEXING_API_KEY", "from-env")
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Glean.APIKey)
}

func TestLoad_VerifySSLOptOut(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
backstage:
  base_url: https://backstage.example.com
  verify_ssl: false
glean:
  instance: mycompany
  api_key: secret
`))
	require.NoError(t, err)
	assert.False(t, cfg.VerifySSL())
}

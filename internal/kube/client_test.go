package kube

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/util/homedir"
)

const testKubeconfig = `apiVersion: v1
kind: Config
clusters:
- name: lab
  cluster:
    server: https://127.0.0.1:6443
users:
- name: lab-admin
  user:
    token: not-a-real-token
contexts:
- name: lab
  context:
    cluster: lab
    user: lab-admin
- name: lab-sync
  context:
    cluster: lab
    user: lab-admin
    namespace: couchbase-sync
current-context: lab
`

const emptyKubeconfig = `apiVersion: v1
kind: Config
clusters: []
contexts: []
users: []
`

func envFrom(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func writeKubeconfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestInCluster(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want bool
	}{
		{"both set", map[string]string{envServiceHost: "10.0.0.1", envServicePort: "443"}, true},
		{"empty values still count", map[string]string{envServiceHost: "", envServicePort: ""}, true},
		{"only host", map[string]string{envServiceHost: "10.0.0.1"}, false},
		{"only port", map[string]string{envServicePort: "443"}, false},
		{"neither", map[string]string{}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := InCluster(envFrom(tc.env)); got != tc.want {
				t.Errorf("InCluster(%v) = %v, want %v", tc.env, got, tc.want)
			}
		})
	}
}

func TestResolveConfigExplicitPath(t *testing.T) {
	path := writeKubeconfig(t, testKubeconfig)

	cfg, contextName, err := resolveConfig(path, "", envFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, "lab", contextName)
	assert.Equal(t, "https://127.0.0.1:6443", cfg.Host)
	assert.Equal(t, "not-a-real-token", cfg.BearerToken)
}

func TestResolveConfigContextOverride(t *testing.T) {
	path := writeKubeconfig(t, testKubeconfig)

	_, contextName, err := resolveConfig(path, "lab-sync", envFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, "lab-sync", contextName)
}

func TestResolveConfigFromEnv(t *testing.T) {
	path := writeKubeconfig(t, testKubeconfig)

	_, contextName, err := resolveConfig("", "", envFrom(map[string]string{envKubeconfig: path}))
	require.NoError(t, err)
	assert.Equal(t, "lab", contextName)
}

func TestResolveConfigNoContexts(t *testing.T) {
	path := writeKubeconfig(t, emptyKubeconfig)

	_, _, err := resolveConfig(path, "", envFrom(nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoContexts), "got %v", err)
}

func TestResolveConfigMissingEnvFiles(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	_, _, err := resolveConfig("", "", envFrom(map[string]string{envKubeconfig: missing}))
	assert.ErrorIs(t, err, ErrNoContexts)
}

func TestKubeconfigLoadingRules(t *testing.T) {
	rules := kubeconfigLoadingRules("/etc/kube/admin.conf", envFrom(map[string]string{envKubeconfig: "/ignored"}))
	assert.Equal(t, "/etc/kube/admin.conf", rules.ExplicitPath)

	list := "/a/config" + string(os.PathListSeparator) + "/b/config"
	rules = kubeconfigLoadingRules("", envFrom(map[string]string{envKubeconfig: list}))
	assert.Empty(t, rules.ExplicitPath)
	assert.Equal(t, []string{"/a/config", "/b/config"}, rules.Precedence)

	rules = kubeconfigLoadingRules("", envFrom(nil))
	require.Len(t, rules.Precedence, 1)
	assert.Equal(t, filepath.Join(homedir.HomeDir(), ".kube", "config"), rules.Precedence[0])
}

func TestNewClientsOutsideCluster(t *testing.T) {
	path := writeKubeconfig(t, testKubeconfig)
	if InCluster(os.LookupEnv) {
		t.Skip("running inside a cluster, kubeconfig resolution is bypassed")
	}

	clients, err := NewClients(path, "")
	require.NoError(t, err)
	assert.NotNil(t, clients.Core)
	assert.NotNil(t, clients.Metrics)
	assert.Equal(t, "lab", clients.ContextName)
}

package kube

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
	metricsclient "k8s.io/metrics/pkg/client/clientset/versioned"
)

const (
	envServiceHost = "KUBERNETES_SERVICE_HOST"
	envServicePort = "KUBERNETES_SERVICE_PORT"
	envKubeconfig  = "KUBECONFIG"

	// InClusterContext is reported as the context name when running on a service account.
	InClusterContext = "in-cluster"
)

// ErrNoContexts is returned when the kubeconfig source defines no contexts at all.
var ErrNoContexts = errors.New("cannot find any context in kubeconfig file")

// Clients holds the core and metrics Kubernetes clientsets and the resolved context name.
type Clients struct {
	Core        kubernetes.Interface
	Metrics     metricsclient.Interface
	ContextName string
}

// NewClients builds Kubernetes clients. Inside a pod the service account is used; otherwise the
// kubeconfig is taken from kubeconfig, then $KUBECONFIG, then ~/.kube/config.
func NewClients(kubeconfig, contextOverride string) (*Clients, error) {
	restConfig, contextName, err := resolveConfig(kubeconfig, contextOverride, os.LookupEnv)
	if err != nil {
		return nil, err
	}

	coreClient, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes client: %w", err)
	}

	metricsClient, err := metricsclient.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics client: %w", err)
	}

	return &Clients{
		Core:        coreClient,
		Metrics:     metricsClient,
		ContextName: contextName,
	}, nil
}

// InCluster reports whether both service environment variables are present. Only presence is
// checked, an empty value still counts.
func InCluster(lookupEnv func(string) (string, bool)) bool {
	for _, key := range []string{envServiceHost, envServicePort} {
		if _, ok := lookupEnv(key); !ok {
			log.Debug().Str("env", key).Msg("env var is not set")
			log.Debug().Msg("NOT running inside a cluster")
			return false
		}
		log.Debug().Str("env", key).Msg("env var is set")
	}
	log.Debug().Msg("running inside a cluster")
	return true
}

func resolveConfig(kubeconfig, contextOverride string, lookupEnv func(string) (string, bool)) (*rest.Config, string, error) {
	if InCluster(lookupEnv) {
		log.Info().Msg("loading in-cluster config")
		restConfig, err := rest.InClusterConfig()
		if err != nil {
			return nil, "", fmt.Errorf("failed to load in-cluster config: %w", err)
		}
		return restConfig, InClusterContext, nil
	}

	loadingRules := kubeconfigLoadingRules(kubeconfig, lookupEnv)
	configOverrides := &clientcmd.ConfigOverrides{}

	// Use specific context if provided, otherwise rely on the kubeconfig's current context
	if contextOverride != "" {
		configOverrides.CurrentContext = contextOverride
	}

	clientConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, configOverrides)

	rawConfig, err := clientConfig.RawConfig()
	if err != nil {
		return nil, "", fmt.Errorf("failed to load raw kubeconfig: %w", err)
	}
	if len(rawConfig.Contexts) == 0 {
		return nil, "", ErrNoContexts
	}

	restConfig, err := clientConfig.ClientConfig()
	if err != nil {
		return nil, "", fmt.Errorf("failed to build REST config: %w", err)
	}

	contextName := rawConfig.CurrentContext
	if contextOverride != "" {
		contextName = contextOverride
	}
	log.Debug().Str("context", contextName).Msg("loaded kubeconfig")
	return restConfig, contextName, nil
}

// kubeconfigLoadingRules picks the kubeconfig source: explicit path, $KUBECONFIG (a path list, as
// kubectl treats it), or the default file under the home directory. Missing files in the last two
// are skipped by clientcmd, which surfaces as ErrNoContexts.
func kubeconfigLoadingRules(kubeconfig string, lookupEnv func(string) (string, bool)) *clientcmd.ClientConfigLoadingRules {
	if kubeconfig != "" {
		return &clientcmd.ClientConfigLoadingRules{ExplicitPath: kubeconfig}
	}
	if env, ok := lookupEnv(envKubeconfig); ok && env != "" {
		return &clientcmd.ClientConfigLoadingRules{Precedence: filepath.SplitList(env)}
	}
	return &clientcmd.ClientConfigLoadingRules{
		Precedence: []string{filepath.Join(homedir.HomeDir(), ".kube", "config")},
	}
}

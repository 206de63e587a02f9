package federation

import (
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/thand-io/britive/internal/apierror"
	"github.com/thand-io/britive/internal/config/environment"
)

// AutoSelector picks a provider from the detected runtime environment.
const AutoSelector = "auto"

// Factory builds a provider for one selector.
type Factory func(params Params) (Provider, error)

var (
	registry      = make(map[string]Factory)
	registryMutex sync.RWMutex
)

// Register adds a provider factory to the registry.
func Register(name string, factory Factory) {
	name = strings.ToLower(name)
	registryMutex.Lock()
	defer registryMutex.Unlock()
	if _, exists := registry[name]; exists {
		return
	}
	registry[name] = factory
}

// Set replaces a provider factory in the registry (useful for testing)
func Set(name string, factory Factory) {
	name = strings.ToLower(name)
	registryMutex.Lock()
	defer registryMutex.Unlock()
	registry[name] = factory
}

// Names lists the registered provider names.
func Names() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create parses the selector and builds the matching provider. The selector
// argument overrides params.Argument.
func Create(selector string, params Params) (Provider, error) {
	parsed, err := ParseSelector(selector)
	if err != nil {
		return nil, err
	}

	if parsed.Name == AutoSelector {
		detected := environment.DetectWorkloadPlatform(params.getenv)
		name := detected.FederationProvider()
		if len(name) == 0 {
			return nil, apierror.New(apierror.KindFederationTokenUnavailable,
				"no federation provider available on platform %s", detected)
		}
		logrus.WithFields(logrus.Fields{
			"platform": detected,
			"provider": name,
			"ci":       detected.IsCI(),
		}).Infoln("Detected federation provider")
		parsed = Selector{Name: name, Argument: parsed.Argument}
	}

	registryMutex.RLock()
	factory, exists := registry[parsed.Name]
	registryMutex.RUnlock()
	if !exists {
		return nil, apierror.New(apierror.KindInvalidFederationProvider,
			"unknown federation provider %q, expected one of %s", parsed.Name, strings.Join(Names(), ", "))
	}

	params.Argument = parsed.Argument
	return factory(params)
}

package federation

import (
	"strings"

	"github.com/thand-io/britive/internal/apierror"
)

// Selector is the parsed form of "<name>[-<arg>]".
type Selector struct {
	Name     string
	Argument string
}

func (s Selector) String() string {
	if len(s.Argument) == 0 {
		return s.Name
	}
	return s.Name + "-" + s.Argument
}

// ParseSelector splits on the first dash only. Arguments such as Azure client
// ids contain dashes of their own.
func ParseSelector(selector string) (Selector, error) {
	value := strings.TrimSpace(selector)
	if len(value) == 0 {
		return Selector{}, apierror.New(apierror.KindInvalidFederationProvider, "empty federation provider selector")
	}

	name, argument, _ := strings.Cut(value, "-")
	name = strings.ToLower(name)

	if len(name) == 0 {
		return Selector{}, apierror.New(apierror.KindInvalidFederationProvider,
			"federation provider selector %q has no provider name", selector)
	}

	return Selector{
		Name:     name,
		Argument: argument,
	}, nil
}

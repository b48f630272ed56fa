package resource

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// DefaultNamespace is assumed when an identifier string has no namespace.
const DefaultNamespace = "posekit"

var ErrInvalidIdentifier = errors.New("resource: invalid identifier")

// Identifier names a resource as namespace:path.
type Identifier struct {
	Namespace string
	Path      string
}

func New(namespace, p string) Identifier {
	return Identifier{Namespace: namespace, Path: p}
}

// Parse reads "namespace:path" or a bare "path" in the default namespace.
func Parse(s string) (Identifier, error) {
	ns, p, found := strings.Cut(s, ":")
	if !found {
		ns, p = DefaultNamespace, s
	}
	id := Identifier{Namespace: ns, Path: p}
	if err := id.Validate(); err != nil {
		return Identifier{}, err
	}
	return id, nil
}

// MustParse is Parse for constants.
func MustParse(s string) Identifier {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id Identifier) Validate() error {
	if id.Namespace == "" || id.Path == "" {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, id.String())
	}
	if strings.ContainsAny(id.Namespace, ":/") || strings.Contains(id.Path, ":") {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, id.String())
	}
	return nil
}

func (id Identifier) String() string {
	return id.Namespace + ":" + id.Path
}

func (id Identifier) IsZero() bool {
	return id == Identifier{}
}

// FromFile derives an identifier from a slash-separated file path laid out as
// <namespace>/<prefix>/<path><ext>. It reports false when the file does not
// live under prefix or does not carry one of the given extensions.
func FromFile(file, prefix string, exts ...string) (Identifier, bool) {
	file = path.Clean(file)
	ns, rest, ok := strings.Cut(file, "/")
	if !ok || ns == "" {
		return Identifier{}, false
	}
	rest, ok = strings.CutPrefix(rest, strings.Trim(prefix, "/")+"/")
	if !ok {
		return Identifier{}, false
	}
	ext := path.Ext(rest)
	matched := false
	for _, e := range exts {
		if strings.EqualFold(e, ext) {
			matched = true
			break
		}
	}
	if !matched {
		return Identifier{}, false
	}
	id := Identifier{Namespace: ns, Path: strings.TrimSuffix(rest, ext)}
	if id.Validate() != nil {
		return Identifier{}, false
	}
	return id, true
}

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Loads a YAML configuration file as a kong resolver.
//
// The file is a flat mapping from flag names to scalar values. Dashes in a
// flag name may be written as underscores:
//
//	socket: /run/forkd.sock
//	workers: 4
//	pid_file: /run/forkd.pid
//	metrics-address: 127.0.0.1:9464
func YAML(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && err != io.EOF {
		return nil, errors.Wrap(ErrConfig, err.Error())
	}

	var f kong.ResolverFunc = func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
		for _, key := range configKeys(flag.Name) {
			raw, ok := values[key]
			if !ok {
				continue
			}
			switch raw.(type) {
			case map[string]any, []any:
				return nil, errors.Wrapf(ErrConfig, "%s: expected a scalar value", key)
			case nil:
				return nil, nil
			}
			return fmt.Sprint(raw), nil
		}
		return nil, nil
	}
	return f, nil
}

// Returns the keys a flag may appear under.
func configKeys(name string) []string {
	snake := strings.ReplaceAll(name, "-", "_")
	if snake == name {
		return []string{name}
	}
	return []string{name, snake}
}

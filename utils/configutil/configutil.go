// Package configutil provides an interface for loading and validating
// configuration data from YAML files.
//
// A YAML file may extend another file via the following directive:
//
// production.yaml:
//	extends: base.yaml
//
// Files in an extends chain are applied base-first, so values defined in a
// child override those of its base. Multiple inheritance is not supported;
// the chain must form a linked list.
package configutil

import (
	"errors"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/MichaleAnderson/beldex-storage-server/utils/stringset"

	"gopkg.in/validator.v2"
	"gopkg.in/yaml.v2"
)

// ErrCycleRef is returned when there are circular dependencies detected in
// configuration files extending each other.
var ErrCycleRef = errors.New("cyclic reference in configuration extends detected")

type extends struct {
	Extends string `yaml:"extends"`
}

// ValidationError is returned when a configuration fails to pass validation.
type ValidationError struct {
	errorMap validator.ErrorMap
}

// ErrForField returns the validation error for the given field.
func (e ValidationError) ErrForField(name string) error {
	return e.errorMap[name]
}

func (e ValidationError) Error() string {
	var w strings.Builder
	fmt.Fprintf(&w, "validation failed")
	for f, err := range e.errorMap {
		fmt.Fprintf(&w, "   %s: %v\n", f, err)
	}
	return w.String()
}

// Load reads filename and unmarshals its contents into config, after first
// applying any files the chain of extends directives names. The resulting
// config is validated with validator.v2 tags.
func Load(filename string, config interface{}) error {
	chain, err := resolveChain(filename)
	if err != nil {
		return err
	}
	for i := len(chain) - 1; i >= 0; i-- {
		b, err := ioutil.ReadFile(chain[i])
		if err != nil {
			return fmt.Errorf("read config: %s", err)
		}
		if err := yaml.Unmarshal(b, config); err != nil {
			return fmt.Errorf("unmarshal %s: %s", chain[i], err)
		}
	}
	if err := validator.Validate(config); err != nil {
		if errs, ok := err.(validator.ErrorMap); ok {
			return ValidationError{errs}
		}
		return err
	}
	return nil
}

// resolveChain returns filename followed by the files it transitively
// extends.
func resolveChain(filename string) ([]string, error) {
	var chain []string
	seen := stringset.New()
	for filename != "" {
		if seen.Has(filename) {
			return nil, ErrCycleRef
		}
		seen.Add(filename)
		chain = append(chain, filename)

		b, err := ioutil.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("read config: %s", err)
		}
		var ext extends
		if err := yaml.Unmarshal(b, &ext); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %s", filename, err)
		}
		if ext.Extends == "" {
			break
		}
		next := ext.Extends
		if !filepath.IsAbs(next) {
			next = filepath.Join(filepath.Dir(filename), next)
		}
		filename = next
	}
	return chain, nil
}

package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mickyco94/pullstream/bridge"
	"gopkg.in/yaml.v3"
)

var (
	ErrNoStreams       = errors.New("no streams defined")
	ErrUnnamedStream   = errors.New("stream has no name")
	ErrDuplicateStream = errors.New("stream defined more than once")
	ErrUnknownType     = errors.New("unknown component type")
	ErrNoDataKinds     = errors.New("stream has no data kinds")
)

// Raw is the unprocessed configuration for the pullstream daemon
type Raw struct {
	Streams []StreamSpec `yaml:"streams"`
}

// StreamSpec is a structural definition of a stream, mirroring exactly how
// it is defined in YAML. The source's occurrences are split into the three
// bridge roles by kind.
type StreamSpec struct {
	Name       string        `yaml:"name"`
	Source     ComponentSpec `yaml:"source"`
	Data       []string      `yaml:"data"`
	Completion []string      `yaml:"completion"`
	Failure    []string      `yaml:"failure"`
	Execute    ComponentSpec `yaml:"execute"`
}

// ComponentSpec is a generic struct that corresponds
// to a source or executor element in the YAML specification
type ComponentSpec struct {
	Type   string    `yaml:"type"`
	Config yaml.Node `yaml:"config"`
}

// Decode decodes the component's config section into v. A missing section
// leaves v untouched.
func (c ComponentSpec) Decode(v any) error {
	if c.Config.Kind == 0 {
		return nil
	}
	if err := c.Config.Decode(v); err != nil {
		return fmt.Errorf("decode %s config: %w", c.Type, err)
	}
	return nil
}

// Roles converts the kind lists of the stream into bridge roles
func (s StreamSpec) Roles() bridge.Roles {
	return bridge.Roles{
		Data:       kinds(s.Data),
		Completion: kinds(s.Completion),
		Failure:    kinds(s.Failure),
	}
}

func kinds(names []string) []bridge.Kind {
	out := make([]bridge.Kind, 0, len(names))
	for _, n := range names {
		out = append(out, bridge.Kind(n))
	}
	return out
}

// Parse reads config from the specified reader into the struct
func (r *Raw) Parse(reader io.Reader) error {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)

	if err := decoder.Decode(r); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	return nil
}

// Load opens, parses and validates the config at path
func Load(path string) (*Raw, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cfg := &Raw{}
	if err := cfg.Parse(file); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the structure of every stream. Overlap between the role
// lists is not checked.
func (r *Raw) Validate() error {
	if len(r.Streams) == 0 {
		return ErrNoStreams
	}

	seen := make(map[string]struct{}, len(r.Streams))
	var errs []error

	for i, s := range r.Streams {
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("stream %d: %w", i, ErrUnnamedStream))
			continue
		}
		if _, dup := seen[s.Name]; dup {
			errs = append(errs, fmt.Errorf("stream %q: %w", s.Name, ErrDuplicateStream))
		}
		seen[s.Name] = struct{}{}

		if !sourceTypes[SourceType(s.Source.Type)] {
			errs = append(errs, fmt.Errorf("stream %q: source %q: %w", s.Name, s.Source.Type, ErrUnknownType))
		}
		if !executorTypes[ExecutorType(s.Execute.Type)] {
			errs = append(errs, fmt.Errorf("stream %q: executor %q: %w", s.Name, s.Execute.Type, ErrUnknownType))
		}
		if len(s.Data) == 0 {
			errs = append(errs, fmt.Errorf("stream %q: %w", s.Name, ErrNoDataKinds))
		}
	}

	return errors.Join(errs...)
}

package compose

import (
	"fmt"
	"os"
	"strings"

	"github.com/docker/go-connections/nat"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/stackup/internal/model"
)

// Descriptor is the parsed compose file, reduced to the fields the
// converger validates. Unknown fields are ignored — Compose itself is the
// authority on the full schema.
type Descriptor struct {
	// Services maps service names to their definitions.
	Services map[string]Service `yaml:"services"`
}

// Service is a single service definition within the descriptor.
type Service struct {
	// Image is the container image reference, when the service runs a
	// prebuilt image.
	Image string `yaml:"image,omitempty"`

	// Build is the build configuration, when the service builds its image
	// from a Dockerfile. The compose schema allows a bare context string
	// or a mapping; BuildSpec handles both.
	Build *BuildSpec `yaml:"build,omitempty"`

	// Ports lists the published ports. Both short syntax strings
	// ("8080:80") and long syntax mappings are normalized to the short
	// form during parsing.
	Ports PortList `yaml:"ports,omitempty"`

	// DependsOn lists the services this one starts after. Both the list
	// form and the condition-mapping form are normalized to a name list.
	DependsOn DependsOnList `yaml:"depends_on,omitempty"`
}

// BuildSpec holds a service's build configuration. In the compose schema
// "build" is either a context path string or a mapping with context and
// dockerfile keys.
type BuildSpec struct {
	Context    string `yaml:"context,omitempty"`
	Dockerfile string `yaml:"dockerfile,omitempty"`
}

// UnmarshalYAML accepts both the scalar and the mapping form of "build".
func (b *BuildSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		b.Context = node.Value
		return nil
	}

	// Decode the mapping form through an alias type to avoid recursing
	// back into this method.
	type plain BuildSpec
	return node.Decode((*plain)(b))
}

// PortList normalizes the two compose port syntaxes into short-form
// strings. Short syntax entries pass through; long syntax mappings are
// reassembled as "published:target/protocol".
type PortList []string

// longPort is the compose long-syntax port mapping. Published is an
// interface because the schema allows both an integer and a range string
// like "8000-9000".
type longPort struct {
	Target    int         `yaml:"target"`
	Published interface{} `yaml:"published"`
	Protocol  string      `yaml:"protocol"`
}

// UnmarshalYAML accepts a sequence whose entries are scalars (short
// syntax, including unquoted integers) or mappings (long syntax).
func (p *PortList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("ports must be a sequence, got %s", nodeKind(node))
	}

	out := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			out = append(out, item.Value)
		case yaml.MappingNode:
			var lp longPort
			if err := item.Decode(&lp); err != nil {
				return fmt.Errorf("invalid long-syntax port entry: %w", err)
			}
			spec := fmt.Sprintf("%d", lp.Target)
			if lp.Published != nil {
				spec = fmt.Sprintf("%v:%s", lp.Published, spec)
			}
			if lp.Protocol != "" {
				spec += "/" + lp.Protocol
			}
			out = append(out, spec)
		default:
			return fmt.Errorf("invalid port entry kind %s", nodeKind(item))
		}
	}
	*p = out
	return nil
}

// DependsOnList normalizes the two compose depends_on syntaxes into a
// plain list of service names. The condition mapping form loses its
// conditions — startup-order validation only needs the edges.
type DependsOnList []string

// UnmarshalYAML accepts a sequence of names or a mapping of
// name → {condition: ...}.
func (d *DependsOnList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var names []string
		if err := node.Decode(&names); err != nil {
			return err
		}
		*d = names
		return nil
	case yaml.MappingNode:
		// Mapping content alternates key, value; keys are the names.
		names := make([]string, 0, len(node.Content)/2)
		for i := 0; i < len(node.Content); i += 2 {
			names = append(names, node.Content[i].Value)
		}
		*d = names
		return nil
	default:
		return fmt.Errorf("depends_on must be a sequence or mapping, got %s", nodeKind(node))
	}
}

// nodeKind names a YAML node kind for error messages.
func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	default:
		return "unknown"
	}
}

// LoadDescriptor reads and parses the compose descriptor at path.
//
// An absent file is the MissingDescriptor error from the taxonomy: the
// converge must not be attempted without a descriptor, and the exit code
// tells scripts exactly what went wrong.
func LoadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(model.ExitMissingDescriptor,
				fmt.Sprintf("compose descriptor not found at %q", path), err)
		}
		return nil, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to read compose descriptor %q", path), err)
	}

	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to parse compose descriptor %q", path), err)
	}
	if len(d.Services) == 0 {
		return nil, model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("compose descriptor %q declares no services", path))
	}
	return &d, nil
}

// Validate checks that the descriptor declares every required service,
// that all port specs parse, and that the declared startup order holds:
// each service in order must depend (directly or transitively) on its
// predecessor. order is the configured startup order, e.g.
// [database, backend, frontend].
func (d *Descriptor) Validate(order []string) error {
	for _, name := range order {
		if _, ok := d.Services[name]; !ok {
			return fmt.Errorf("descriptor is missing required service %q (declares: %s)",
				name, strings.Join(d.serviceNames(), ", "))
		}
	}

	for name, svc := range d.Services {
		if svc.Image == "" && svc.Build == nil {
			return fmt.Errorf("service %q declares neither an image nor a build", name)
		}
		for _, spec := range svc.Ports {
			if _, err := nat.ParsePortSpec(spec); err != nil {
				return fmt.Errorf("service %q has invalid port spec %q: %w", name, spec, err)
			}
		}
		for _, dep := range svc.DependsOn {
			if _, ok := d.Services[dep]; !ok {
				return fmt.Errorf("service %q depends on undeclared service %q", name, dep)
			}
		}
	}

	// Each successor must reach its predecessor through depends_on edges,
	// otherwise Compose may start them in the wrong order.
	for i := 1; i < len(order); i++ {
		earlier, later := order[i-1], order[i]
		if !d.DependsOn(later, earlier) {
			return fmt.Errorf("service %q must depend on %q to honor the startup order", later, earlier)
		}
	}
	return nil
}

// DependsOn reports whether service reaches dependency through depends_on
// edges, directly or transitively.
func (d *Descriptor) DependsOn(service, dependency string) bool {
	visited := make(map[string]bool)
	var walk func(name string) bool
	walk = func(name string) bool {
		if visited[name] {
			return false
		}
		visited[name] = true
		for _, dep := range d.Services[name].DependsOn {
			if dep == dependency || walk(dep) {
				return true
			}
		}
		return false
	}
	return walk(service)
}

// serviceNames returns the declared service names for error messages.
func (d *Descriptor) serviceNames() []string {
	names := make([]string, 0, len(d.Services))
	for name := range d.Services {
		names = append(names, name)
	}
	return names
}

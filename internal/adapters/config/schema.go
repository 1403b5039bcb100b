package config

import (
	"time"

	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Buildfile represents the structure of the polybuild.yaml configuration file.
type Buildfile struct {
	Root         string                `yaml:"root"`
	ComposeFiles []string              `yaml:"compose_files"`
	Tools        map[string]string     `yaml:"tools"`
	Targets      map[string]*TargetDTO `yaml:"targets"`
	Services     ServiceMap            `yaml:"services"`
}

// TargetDTO represents a target definition in the configuration.
type TargetDTO struct {
	Description  string            `yaml:"description"`
	Dependencies []string          `yaml:"dependencies"`
	Steps        []StepDTO         `yaml:"steps"`
	Inputs       []string          `yaml:"inputs"`
	Parallel     *bool             `yaml:"parallel"`
	Estimated    float64           `yaml:"estimated_duration"`
	CacheKey     string            `yaml:"cache_key"`
	Plugin       string            `yaml:"plugin"`
	Options      map[string]string `yaml:"options"`

	// Type and Image mark container definitions, which are not build targets.
	Type  string `yaml:"type"`
	Image string `yaml:"image"`
}

// StepDTO is one step of a target: a shell command or a target to depend on.
type StepDTO struct {
	Command string `yaml:"command"`
	Target  string `yaml:"target"`
}

// EstimatedDuration converts the configured seconds.
func (t *TargetDTO) EstimatedDuration() time.Duration {
	return time.Duration(t.Estimated * float64(time.Second))
}

// ServiceDTO represents a service in polybuild.yaml or a compose file.
type ServiceDTO struct {
	Ports          PortList  `yaml:"ports"`
	DependsOn      DependsOn `yaml:"depends_on"`
	Links          []string  `yaml:"links"`
	Memory         string    `yaml:"memory"`
	MemLimit       string    `yaml:"mem_limit"`
	MemReservation string    `yaml:"mem_reservation"`
	Disk           string    `yaml:"disk"`
	Deploy         struct {
		Resources struct {
			Limits struct {
				Memory string `yaml:"memory"`
			} `yaml:"limits"`
			Reservations struct {
				Memory string `yaml:"memory"`
			} `yaml:"reservations"`
		} `yaml:"resources"`
	} `yaml:"deploy"`
}

// NamedService keeps a service with the name it was declared under.
type NamedService struct {
	Name string
	ServiceDTO
}

// ServiceMap is a services mapping that remembers declaration order.
type ServiceMap []NamedService

// UnmarshalYAML decodes a mapping of service name to definition.
func (m *ServiceMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return zerr.With(zerr.New("services must be a mapping"), "line", value.Line)
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		var svc NamedService
		svc.Name = value.Content[i].Value
		if err := value.Content[i+1].Decode(&svc.ServiceDTO); err != nil {
			return zerr.With(err, "service", svc.Name)
		}
		*m = append(*m, svc)
	}
	return nil
}

// PortList records each port mapping together with its line.
type PortList []domain.PortDeclaration

// UnmarshalYAML accepts short "host:container" entries and the long
// published/target form.
func (p *PortList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return zerr.With(zerr.New("ports must be a list"), "line", value.Line)
	}
	for _, item := range value.Content {
		decl := domain.PortDeclaration{Line: item.Line}
		switch item.Kind {
		case yaml.ScalarNode:
			decl.Spec = item.Value
		case yaml.MappingNode:
			var long struct {
				HostIP    string `yaml:"host_ip"`
				Published string `yaml:"published"`
				Target    string `yaml:"target"`
				Protocol  string `yaml:"protocol"`
			}
			if err := item.Decode(&long); err != nil {
				return err
			}
			decl.Spec = longSpec(long.HostIP, long.Published, long.Target, long.Protocol)
		default:
			return zerr.With(zerr.New("unsupported port entry"), "line", item.Line)
		}
		*p = append(*p, decl)
	}
	return nil
}

func longSpec(hostIP, published, target, protocol string) string {
	spec := target
	if published != "" {
		spec = published + ":" + target
	}
	if hostIP != "" {
		spec = hostIP + ":" + spec
	}
	if protocol != "" {
		spec += "/" + protocol
	}
	return spec
}

// DependsOn accepts both the list and the mapping form of depends_on.
type DependsOn []string

// UnmarshalYAML decodes either form, keeping declaration order.
func (d *DependsOn) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var names []string
		if err := value.Decode(&names); err != nil {
			return err
		}
		*d = names
	case yaml.MappingNode:
		for i := 0; i < len(value.Content); i += 2 {
			*d = append(*d, value.Content[i].Value)
		}
	case yaml.ScalarNode:
		*d = []string{value.Value}
	default:
		return zerr.With(zerr.New("unsupported depends_on"), "line", value.Line)
	}
	return nil
}

// ComposeFile is the subset of a compose file the validators inspect.
type ComposeFile struct {
	Services ServiceMap `yaml:"services"`
}

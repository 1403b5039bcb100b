package domain

// PortDeclaration is a raw port mapping as written in a configuration source.
type PortDeclaration struct {
	// Spec is the mapping as written, e.g. "8080:80" or "127.0.0.1:5432:5432".
	Spec string
	// Source is the file the declaration was read from.
	Source string
	// Line is the 1-based line of the declaration in Source, or 0 when unknown.
	Line int
}

// Service is a long-running component declared in the project config or a compose file.
type Service struct {
	Name      string
	Source    string
	Ports     []PortDeclaration
	DependsOn []string
	Links     []string
	// Memory and Disk are raw size strings such as "512m" or "2g".
	Memory         string
	MemoryReserved string
	Disk           string
}

// Project is everything the validators inspect, independent of any build target.
type Project struct {
	Root     string
	Services []Service
	// Tools maps a required tool name to an optional semver constraint.
	Tools map[string]string
}

// ServiceNames returns the names of all services in declaration order,
// without duplicates.
func (p *Project) ServiceNames() []string {
	seen := make(map[string]struct{}, len(p.Services))
	names := make([]string, 0, len(p.Services))
	for _, s := range p.Services {
		if _, ok := seen[s.Name]; ok {
			continue
		}
		seen[s.Name] = struct{}{}
		names = append(names, s.Name)
	}
	return names
}

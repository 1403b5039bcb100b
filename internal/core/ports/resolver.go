package ports

// InputResolver expands target inputs into concrete files.
//
//go:generate mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type InputResolver interface {
	// ResolveInputs returns the sorted, de-duplicated files named by inputs.
	// Relative inputs are joined to root, globs are expanded and directories
	// are walked. Inputs that match nothing are skipped.
	ResolveInputs(inputs []string, root string) ([]string, error)
}

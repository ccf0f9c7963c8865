package hook

import (
	"fmt"
	"os"
)

// LoadScripts builds an executor from script files keyed by hook type.
// Empty paths are ignored.
func LoadScripts(paths map[Type]string) (*TengoExecutor, error) {
	executor := NewTengoExecutor()
	for hookType, path := range paths {
		if path == "" {
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrHookLoad, hookType, err)
		}
		if err := executor.AddScript(hookType, string(content)); err != nil {
			return nil, err
		}
	}
	return executor, nil
}

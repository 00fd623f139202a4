package config

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/graphlang/gqlanalyzer/pkg/project"
)

// GetConflictResolver returns a project.ConflictResolver for the config's
// onTypeConflict strategy.
func GetConflictResolver(strategy string) project.ConflictResolver {
	switch strategy {
	case "", "error":
		// Default: nil lets the merged schema surface a validator error.
		return nil

	case "useFirst":
		return func(left, right *ast.Definition, conflictType string) (*ast.Definition, error) {
			return left, nil
		}

	case "useLast":
		return func(left, right *ast.Definition, conflictType string) (*ast.Definition, error) {
			return right, nil
		}

	default:
		return nil
	}
}

// ValidateConflictStrategy validates the conflict resolution strategy
func ValidateConflictStrategy(strategy string) error {
	switch strategy {
	case "", "error", "useFirst", "useLast":
		return nil
	default:
		return fmt.Errorf("invalid onTypeConflict strategy: %s (must be 'error', 'useFirst', or 'useLast')", strategy)
	}
}

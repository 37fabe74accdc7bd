package domain

import (
	"errors"
	"fmt"
)

// ErrNoDefinition is returned when a node type has no rule in the definitions.
var ErrNoDefinition = errors.New("no definition for node type")

// ErrNoLayoutHandler is returned when a marker has neither a composite nor a single-key handler.
var ErrNoLayoutHandler = errors.New("no layout handler")

// ErrUnbalancedIndent is returned when Dedent markers outnumber Indent markers,
// or when a traversal finishes at a non-zero depth.
var ErrUnbalancedIndent = errors.New("unbalanced indentation")

// ErrInvalidConfig is returned when an unparser or dispatcher is constructed from malformed configuration.
var ErrInvalidConfig = errors.New("invalid configuration")

// DefinitionError reports a node type missing from the definitions.
type DefinitionError struct {
	NodeType string
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("%s: %q", ErrNoDefinition, e.NodeType)
}

func (e *DefinitionError) Is(target error) bool { return target == ErrNoDefinition }

// LayoutError reports a marker requested by a production without a matching handler.
type LayoutError struct {
	Key      Key
	NodeType string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("%s for %s (node %q)", ErrNoLayoutHandler, e.Key, e.NodeType)
}

func (e *LayoutError) Is(target error) bool { return target == ErrNoLayoutHandler }

// IndentationError reports an indentation depth that went negative or did not return to zero.
type IndentationError struct {
	NodeType string
	Depth    int
}

func (e *IndentationError) Error() string {
	return fmt.Sprintf("%s: depth %d at node %q", ErrUnbalancedIndent, e.Depth, e.NodeType)
}

func (e *IndentationError) Is(target error) bool { return target == ErrUnbalancedIndent }

// ConfigError reports a malformed configuration input.
type ConfigError struct {
	Field  string // Option or input name
	Reason string // Human-readable reason
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidConfig, e.Field, e.Reason)
}

func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfig }

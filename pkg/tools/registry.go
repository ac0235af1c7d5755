// Package tools implements the registry the relay dispatches provider
// function calls against. Handlers declare a JSON-schema-like parameter
// shape; required fields are validated before a handler runs.
package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnknownTool     = errors.New("unknown tool")
	ErrMissingArgument = errors.New("missing required argument")
)

// Schema is a minimal JSON-schema subset: enough to declare the tools to the
// provider and to check required fields at dispatch time.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// Handler is one callable tool. Invoke may block; its result object is
// returned to the provider verbatim.
type Handler interface {
	Name() string
	Description() string
	Parameters() *Schema
	Invoke(ctx context.Context, args map[string]any) (map[string]any, error)
}

// Call is one provider-initiated function invocation.
type Call struct {
	ID   string
	Name string
	Args map[string]any
}

type Registry struct {
	byName map[string]Handler
}

// NewRegistry validates each handler's declaration once, at registration,
// so per-call dispatch only has to check arguments.
func NewRegistry(handlers ...Handler) (*Registry, error) {
	r := &Registry{byName: make(map[string]Handler, len(handlers))}
	for _, h := range handlers {
		if h == nil {
			continue
		}
		name := strings.TrimSpace(h.Name())
		if name == "" {
			return nil, fmt.Errorf("tool handler has empty name")
		}
		if _, dup := r.byName[name]; dup {
			return nil, fmt.Errorf("duplicate tool name %q", name)
		}
		if err := validateSchema(h.Parameters()); err != nil {
			return nil, fmt.Errorf("tool %q: %w", name, err)
		}
		r.byName[name] = h
	}
	return r, nil
}

func (r *Registry) Has(name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.byName[strings.TrimSpace(name)]
	return ok
}

func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Handlers returns the registered handlers in name order, for building the
// provider-facing tool declarations.
func (r *Registry) Handlers() []Handler {
	if r == nil {
		return nil
	}
	out := make([]Handler, 0, len(r.byName))
	for _, name := range r.Names() {
		out = append(out, r.byName[name])
	}
	return out
}

// Dispatch looks up the named handler, validates the call arguments against
// the declared schema and invokes it. Unknown names and missing required
// fields are reported without invoking anything.
func (r *Registry) Dispatch(ctx context.Context, call Call) (map[string]any, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, call.Name)
	}
	h, ok := r.byName[strings.TrimSpace(call.Name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, call.Name)
	}
	if err := checkRequired(h.Parameters(), call.Args, ""); err != nil {
		return nil, err
	}
	return h.Invoke(ctx, call.Args)
}

func validateSchema(s *Schema) error {
	if s == nil {
		return fmt.Errorf("parameters schema is required")
	}
	return validateSchemaAt(s, "")
}

func validateSchemaAt(s *Schema, path string) error {
	if s.Type == "" {
		return fmt.Errorf("schema at %q has no type", orRoot(path))
	}
	for _, req := range s.Required {
		if _, ok := s.Properties[req]; !ok {
			return fmt.Errorf("schema at %q requires undeclared property %q", orRoot(path), req)
		}
	}
	for name, prop := range s.Properties {
		if prop == nil {
			return fmt.Errorf("schema at %q has nil property %q", orRoot(path), name)
		}
		if err := validateSchemaAt(prop, joinPath(path, name)); err != nil {
			return err
		}
	}
	return nil
}

// checkRequired walks the schema's required fields recursively through
// present object arguments. A required object that is present has its own
// required fields checked in turn.
func checkRequired(s *Schema, args map[string]any, path string) error {
	if s == nil {
		return nil
	}
	for _, req := range s.Required {
		val, ok := args[req]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingArgument, joinPath(path, req))
		}
		prop := s.Properties[req]
		if prop != nil && prop.Type == "object" {
			nested, ok := val.(map[string]any)
			if !ok {
				return fmt.Errorf("%w: %s must be an object", ErrMissingArgument, joinPath(path, req))
			}
			if err := checkRequired(prop, nested, joinPath(path, req)); err != nil {
				return err
			}
		}
	}
	return nil
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func orRoot(path string) string {
	if path == "" {
		return "root"
	}
	return path
}

package llmbridge

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// FunctionDetails represents the function definition within a tool (OpenAI format).
// This matches the universal standard used by OpenAI and converts cleanly to the
// claude dialect (parameters → input_schema).
type FunctionDetails struct {
	Name        string         `json:"name"`                  // Function name (required)
	Description string         `json:"description,omitempty"` // What the function does
	Parameters  map[string]any `json:"parameters"`            // JSON Schema for parameters
}

// ToolDefinition represents a function tool (OpenAI universal format).
type ToolDefinition struct {
	Type     string          `json:"type"`     // Always "function" for function tools
	Function FunctionDetails `json:"function"` // Function definition
}

// Validate checks if the ToolDefinition is properly configured
func (t *ToolDefinition) Validate() error {
	if t.Type == "" {
		return errors.New("tool type is required")
	}

	if t.Type != "function" {
		return fmt.Errorf("unsupported tool type: %s (only 'function' is supported)", t.Type)
	}

	if t.Function.Name == "" {
		return errors.New("function name is required")
	}

	if t.Function.Parameters == nil {
		return errors.New("function parameters are required")
	}

	if schemaType, ok := t.Function.Parameters["type"].(string); !ok || schemaType != "object" {
		return errors.New("function parameters must be a JSON schema with type 'object'")
	}

	return nil
}

// NewFunctionTool builds a function tool whose parameter schema is generated
// from params by reflection. params must be a struct (or pointer to one).
func NewFunctionTool(name, description string, params any) (*ToolDefinition, error) {
	schema, err := GenerateSchema(params)
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", name, err)
	}
	t := &ToolDefinition{
		Type: "function",
		Function: FunctionDetails{
			Name:        name,
			Description: description,
			Parameters:  schema,
		},
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// GenerateSchema builds a JSON schema (type "object") from a struct's fields.
// Field names come from json tags; fields tagged "-" are skipped. Pointer
// fields and fields marked omitempty are optional, everything else is
// required. A `description` struct tag becomes the property description.
func GenerateSchema(v any) (map[string]any, error) {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, errors.New("schema source must be a struct")
	}

	properties := map[string]any{}
	var required []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name := field.Name
		optional := field.Type.Kind() == reflect.Pointer
		if tag, ok := field.Tag.Lookup("json"); ok {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" {
				continue
			}
			if parts[0] != "" {
				name = parts[0]
			}
			for _, opt := range parts[1:] {
				if opt == "omitempty" {
					optional = true
				}
			}
		}

		prop, err := schemaForType(field.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		if desc, ok := field.Tag.Lookup("description"); ok {
			prop["description"] = desc
		}
		if enum, ok := field.Tag.Lookup("enum"); ok {
			values := strings.Split(enum, ",")
			anyValues := make([]any, len(values))
			for i, v := range values {
				anyValues[i] = v
			}
			prop["enum"] = anyValues
		}

		properties[name] = prop
		if !optional {
			required = append(required, name)
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema, nil
}

func schemaForType(t reflect.Type) (map[string]any, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return map[string]any{"type": "string"}, nil
	case reflect.Bool:
		return map[string]any{"type": "boolean"}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]any{"type": "integer"}, nil
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}, nil
	case reflect.Slice, reflect.Array:
		items, err := schemaForType(t.Elem())
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": "array", "items": items}, nil
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("unsupported map key type %s", t.Key())
		}
		return map[string]any{"type": "object"}, nil
	case reflect.Struct:
		nested, err := GenerateSchema(reflect.New(t).Elem().Interface())
		if err != nil {
			return nil, err
		}
		return nested, nil
	default:
		return nil, fmt.Errorf("unsupported type %s", t)
	}
}

// SchemaRegistry manages a set of named tool definitions. Construct one with
// NewSchemaRegistry; instances are explicitly owned by the caller, there is no
// process-wide registry.
type SchemaRegistry struct {
	tools map[string]*ToolDefinition
	mu    sync.RWMutex
}

// NewSchemaRegistry returns an empty registry.
func NewSchemaRegistry() *SchemaRegistry {
	return &SchemaRegistry{tools: make(map[string]*ToolDefinition)}
}

// Register adds a tool definition to the registry
func (r *SchemaRegistry) Register(t *ToolDefinition) error {
	if err := t.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[t.Function.Name]; exists {
		return fmt.Errorf("tool %s is already registered", t.Function.Name)
	}

	r.tools[t.Function.Name] = t
	return nil
}

// Unregister removes a tool definition from the registry
func (r *SchemaRegistry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; !exists {
		return fmt.Errorf("tool %s is not registered", name)
	}

	delete(r.tools, name)
	return nil
}

// Get retrieves a tool definition by name
func (r *SchemaRegistry) Get(name string) (*ToolDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.tools[name]
	if !exists {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}

	return t, nil
}

// IsRegistered checks if a tool is registered
func (r *SchemaRegistry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.tools[name]
	return exists
}

// List returns all registered tool names
func (r *SchemaRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}

// Definitions returns all registered tools, suitable for a request's tools
// field.
func (r *SchemaRegistry) Definitions() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]ToolDefinition, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, *t)
	}
	return defs
}

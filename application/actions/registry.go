// Package actions binds the catalog of module/action tags to typed handlers.
package actions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"

	pkgerrors "archive-backend/pkg/errors"
	"archive-backend/pkg/utils"
)

var (
	// ErrModuleNotFound is returned when no action of the module is registered
	ErrModuleNotFound = errors.New("module not found")
	// ErrActionNotFound is returned when the module exists but the action does not
	ErrActionNotFound = errors.New("action not found")
)

// Action runs one registered operation on a raw JSON payload
type Action interface {
	Run(ctx context.Context, payload json.RawMessage) Result
}

// ActionFunc is an adapter to allow functions to be used as actions
type ActionFunc func(ctx context.Context, payload json.RawMessage) Result

// Run implements Action
func (f ActionFunc) Run(ctx context.Context, payload json.RawMessage) Result {
	return f(ctx, payload)
}

// Registration binds a tag to its action
type Registration struct {
	Tag    Tag
	Action Action
}

// Handle adapts a typed handler into a registration.
// The payload is decoded into P and validated before fn runs; fn's error becomes the result error.
func Handle[P any, R any](tag Tag, fn func(ctx context.Context, payload P) (R, error)) Registration {
	return Registration{
		Tag: tag,
		Action: ActionFunc(func(ctx context.Context, raw json.RawMessage) Result {
			var payload P
			if err := decode(raw, &payload); err != nil {
				return Failure(tag.Action, pkgerrors.NewValidationError("invalid payload: "+err.Error()).
					WithCode(pkgerrors.CodeInvalidPayload))
			}
			if err := validate(&payload); err != nil {
				return Failure(tag.Action, err)
			}

			data, err := fn(ctx, payload)
			if err != nil {
				return Failure(tag.Action, err)
			}
			return Result{Data: data}
		}),
	}
}

func decode(raw json.RawMessage, dst any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return json.Unmarshal(trimmed, dst)
}

type validator interface {
	Validate() error
}

// validate runs struct tags first, then the payload's own Validate method if it has one
func validate(payload any) error {
	v := reflect.ValueOf(payload)
	if v.Kind() == reflect.Ptr && !v.IsNil() {
		v = v.Elem()
	}
	if v.Kind() == reflect.Struct {
		if err := utils.ValidateStruct(payload); err != nil {
			return pkgerrors.NewValidationError(err.Error())
		}
	}
	if val, ok := payload.(validator); ok {
		return val.Validate()
	}
	return nil
}

// Route is a resolved, routable action
type Route struct {
	Tag      Tag
	SkipAuth bool
	Action   Action
}

// Registry routes module/action names to actions
type Registry struct {
	routes map[string]map[string]Route
}

// NewRegistry registers every group. Tags outside the catalog and duplicates are rejected.
func NewRegistry(groups ...[]Registration) (*Registry, error) {
	r := &Registry{routes: make(map[string]map[string]Route)}
	for _, group := range groups {
		for _, reg := range group {
			if err := r.register(reg); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

func (r *Registry) register(reg Registration) error {
	entry, ok := lookupEntry(reg.Tag)
	if !ok {
		return fmt.Errorf("action %s is not in the catalog", reg.Tag)
	}
	if reg.Action == nil {
		return fmt.Errorf("action %s has no handler", reg.Tag)
	}

	module, ok := r.routes[reg.Tag.Module]
	if !ok {
		module = make(map[string]Route)
		r.routes[reg.Tag.Module] = module
	}
	if _, exists := module[reg.Tag.Action]; exists {
		return fmt.Errorf("handler already registered for action %s", reg.Tag)
	}

	module[reg.Tag.Action] = Route{Tag: reg.Tag, SkipAuth: entry.SkipAuth, Action: reg.Action}
	return nil
}

// Resolve finds the route for module and action
func (r *Registry) Resolve(module, action string) (Route, error) {
	actions, ok := r.routes[module]
	if !ok {
		return Route{}, ErrModuleNotFound
	}
	route, ok := actions[action]
	if !ok {
		return Route{}, ErrActionNotFound
	}
	return route, nil
}

// Missing lists catalog tags with no registered handler
func (r *Registry) Missing() []Tag {
	var missing []Tag
	for _, e := range Catalog {
		if _, err := r.Resolve(e.Tag.Module, e.Tag.Action); err != nil {
			missing = append(missing, e.Tag)
		}
	}
	return missing
}

// Complete returns an error naming every catalog tag without a handler
func (r *Registry) Complete() error {
	if missing := r.Missing(); len(missing) > 0 {
		return fmt.Errorf("actions without handlers: %v", missing)
	}
	return nil
}

// Tags returns the registered tags in a stable order
func (r *Registry) Tags() []Tag {
	var tags []Tag
	for _, actions := range r.routes {
		for _, route := range actions {
			tags = append(tags, route.Tag)
		}
	}
	sort.Slice(tags, func(i, j int) bool {
		return tags[i].String() < tags[j].String()
	})
	return tags
}

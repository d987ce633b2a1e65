package analysis

import (
	"github.com/XiaoConstantine/astrofit-go/pkg/errors"
)

// Role names the four slots every analysis must account for.
type Role string

const (
	RolePixelization    Role = "pixelization"
	RoleInstrumentation Role = "instrumentation"
	RoleLensGalaxies    Role = "lens_galaxies"
	RoleSourceGalaxies  Role = "source_galaxies"
)

// Binding states how a role is filled: with concrete instances held fixed for
// the whole stage, or with registered model types whose parameters the
// optimizer varies. Exactly one side must be populated.
type Binding struct {
	Instances []any
	TypeNames []string
}

// Fixed binds a role to concrete instances.
func Fixed(instances ...any) Binding {
	return Binding{Instances: instances}
}

// Variable binds a role to registered model types.
func Variable(typeNames ...string) Binding {
	return Binding{TypeNames: typeNames}
}

// IsVariable reports whether the optimizer varies this role.
func (b Binding) IsVariable() bool {
	return len(b.TypeNames) > 0
}

// singular reports whether a role holds exactly one entity. The galaxy roles
// accept lists; pixelization and instrumentation do not.
func (r Role) singular() bool {
	return r == RolePixelization || r == RoleInstrumentation
}

func (b Binding) validate(role Role) error {
	hasInstances := len(b.Instances) > 0
	hasTypes := len(b.TypeNames) > 0

	if role.singular() && (len(b.Instances) > 1 || len(b.TypeNames) > 1) {
		return errors.WithFields(
			errors.New(errors.InvalidInput, "role accepts a single model or instance"),
			errors.Fields{"role": string(role)})
	}
	if hasInstances && hasTypes {
		return errors.WithFields(
			errors.New(errors.RoleAmbiguity, "role has both a model and a concrete instance"),
			errors.Fields{"role": string(role)})
	}
	if !hasInstances && !hasTypes {
		return errors.WithFields(
			errors.New(errors.RoleAmbiguity, "role has neither a model nor a concrete instance"),
			errors.Fields{"role": string(role)})
	}
	return nil
}

package layout

import (
	"fmt"

	"github.com/aretw0/unparse/pkg/dispatch"
	"github.com/aretw0/unparse/pkg/domain"
	"github.com/aretw0/unparse/pkg/ports"
)

// EmptyBlock is the composite key collapsed by the pretty preset: an indent
// immediately followed by a newline and a dedent, with nothing in between.
var EmptyBlock = domain.KeyOf(domain.Indent, domain.Newline, domain.Dedent)

// Default is the pretty preset: real spaces, newlines and indentation.
func Default() ports.Registry {
	return Pretty(DefaultSpacePolicy)()
}

// Minimum is the compact preset. It only covers Space and OptionalSpace,
// so it is meant to be layered on top of Default.
func Minimum() ports.Registry {
	return Min(DefaultSpacePolicy)()
}

// Pretty builds a pretty preset factory around a custom spacing policy.
func Pretty(policy SpacePolicy) ports.LayoutFactory {
	return func() ports.Registry {
		return ports.Registry{
			domain.KeyOf(domain.Space):           SpaceImply,
			domain.KeyOf(domain.OptionalSpace):   policy.Pretty,
			domain.KeyOf(domain.Newline):         NewlineSimple,
			domain.KeyOf(domain.OptionalNewline): NewlineOptionalPretty,
			domain.KeyOf(domain.Indent):          Noop,
			domain.KeyOf(domain.Dedent):          Noop,
			EmptyBlock:                           Noop,
		}
	}
}

// Min builds a minimum preset factory around a custom spacing policy.
func Min(policy SpacePolicy) ports.LayoutFactory {
	return func() ports.Registry {
		return ports.Registry{
			domain.KeyOf(domain.Space):         policy.Minimum,
			domain.KeyOf(domain.OptionalSpace): policy.Minimum,
		}
	}
}

// Merge folds the fragments produced by factories left to right into one
// registry, then applies overrides. Later entries win per key; overrides
// win over every factory. Composite keys never replace single-marker keys
// or the reverse: they are distinct entries.
func Merge(factories []ports.LayoutFactory, overrides ports.Registry) (ports.Registry, error) {
	merged := make(ports.Registry)
	for i, factory := range factories {
		if factory == nil {
			return nil, &domain.ConfigError{Field: "layouts", Reason: fmt.Sprintf("entry %d is not callable", i)}
		}
		for key, h := range factory() {
			merged[key] = h
		}
	}
	for key, h := range overrides {
		merged[key] = h
	}
	if err := dispatch.ValidateRegistry(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

package proxy

import "errors"

var (
	// ErrNoConstructor is returned by Finalize when no constructor was ever
	// visited. Generating a proxy without construction wiring is a
	// configuration error, not something to repair at runtime.
	ErrNoConstructor = errors.New("proxy: no constructor visited before finalize")

	// ErrNoInterfaces is returned when a non-implementing introduction
	// proxy is requested without at least one interface to introduce.
	ErrNoInterfaces = errors.New("proxy: introduction proxy without implemented interface requires at least one additional interface")

	// ErrFinalized is returned when visitation continues, or Finalize is
	// called again, after the writer has been sealed.
	ErrFinalized = errors.New("proxy: writer already finalized")

	// ErrNotFinalized is returned when the generated source is requested
	// before Finalize has run.
	ErrNotFinalized = errors.New("proxy: writer not finalized")

	// ErrUnsupportedElement signals a structural invariant violation inside
	// the generator itself; it is unreachable on well-formed input.
	ErrUnsupportedElement = errors.New("proxy: unsupported element kind")
)

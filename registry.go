package fatvol

// A Registry holds the current working volume: the one volume, among
// all mounted, implicitly addressed by call sites that omit an
// explicit volume. A Volume claims the registry on Activate, and on
// mount when requested or when no volume has claimed it yet.
//
// A Registry is deliberately unsynchronized; callers operating on
// multiple volumes from multiple goroutines must serialize access.
type Registry struct {
	current *Volume
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Current returns the volume that last claimed this registry, or nil
// if no volume has.
func (r *Registry) Current() *Volume {
	return r.current
}

func (r *Registry) claim(v *Volume) {
	r.current = v
}

func (r *Registry) claimed() bool {
	return r.current != nil
}

// DefaultRegistry is the process-wide registry used by volumes created
// without an explicit one.
var DefaultRegistry = NewRegistry()

// CurrentVolume returns the current working volume of the default
// registry.
func CurrentVolume() *Volume {
	return DefaultRegistry.Current()
}

package alloc

type options struct {
	policy     *PropagationPolicy
	maxObjects int
	statsName  string
}

type Option func(*options)

func (o *options) policyOrDefault(def PropagationPolicy) PropagationPolicy {
	if o.policy == nil {
		return def
	}
	return *o.policy
}

func applyOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// WithPropagationPolicy overrides the allocator's default propagation flags.
func WithPropagationPolicy(p PropagationPolicy) Option {
	return func(o *options) {
		o.policy = &p
	}
}

// WithMaxObjects bounds the number of live objects. Allocations beyond the
// bound fail with ErrAllocatorExhausted. Zero means unbounded.
func WithMaxObjects(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.maxObjects = n
	}
}

// WithStats enables the OpenTelemetry instruments of a counting allocator,
// recorded through the global meter provider under the given name.
func WithStats(name string) Option {
	return func(o *options) {
		o.statsName = name
	}
}

package repository

// Option applies a configuration option to the Memory store.
type Option func(*Memory)

// WithAuditCapacity bounds how many audit entries are kept; the oldest are
// dropped first. Zero or less keeps the default.
func WithAuditCapacity(n int) Option {
	return func(m *Memory) {
		if n > 0 {
			m.auditCapacity = n
		}
	}
}

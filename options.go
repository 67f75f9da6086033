package sigstream

// LoggerFunc receives internal debug output. The zero value discards it.
type LoggerFunc func(format string, args ...any)

// Option configures a Stream at construction time.
type Option func(*config)

type config struct {
	signals   []Signal
	selfPipe  bool
	logf      LoggerFunc
	debug     bool
	registrar Registrar
}

// WithSignals registers the given signal kinds during New, as if Add were
// called immediately after construction.
func WithSignals(sigs ...Signal) Option {
	return func(c *config) { c.signals = append(c.signals, sigs...) }
}

// WithSelfPipe forces the portable self-pipe backend on platforms that
// would otherwise prefer a kernel signal descriptor. It has no effect where
// the self-pipe backend is already the default, and none on Windows.
func WithSelfPipe() Option {
	return func(c *config) { c.selfPipe = true }
}

// WithLogger sets the destination for debug logging.
func WithLogger(l LoggerFunc) Option {
	return func(c *config) { c.logf = l }
}

// WithDebug toggles debug logging.
func WithDebug(enabled bool) Option {
	return func(c *config) { c.debug = enabled }
}

// WithRegistrar replaces the process-global signal registry. It is
// primarily useful for injecting mocks during testing.
func WithRegistrar(r Registrar) Option {
	return func(c *config) { c.registrar = r }
}

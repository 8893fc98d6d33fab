package vm

// Engine is a single configuration of the virtual machine, shared by every
// module and memory built from it. The engine is immutable after
// construction, so it is safe to use from any number of goroutines.
//
// Engines are compared by identity, not by value: a module and a memory may
// only be combined into an instance when they come from the same *Engine
// allocation. Two engines built from equal Configs are still distinct.
type Engine struct {
	config Config
}

// NewEngine constructs a new engine with the given configuration.
func NewEngine(config Config) *Engine {
	return &Engine{config: config}
}

// Config returns the configuration of the engine.
func (e *Engine) Config() *Config {
	return &e.config
}

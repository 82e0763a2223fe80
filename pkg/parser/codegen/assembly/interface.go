package assembly

// Assembly interface defines methods for generating and building assembly code.
type Assembly interface {
	Generate() error
	GetCode() string
	Build() error
}

// Options configure a backend
type Options struct {
	Output  string // executable path written by Build
	WorkDir string // parent of Build's scratch directory; "" uses the system temp dir
	Runner  Runner // external tool runner; nil runs the real toolchain
}

// Tool returns the configured runner, falling back to ExecRunner
func (o Options) Tool() Runner {
	if o.Runner == nil {
		return ExecRunner{}
	}

	return o.Runner
}

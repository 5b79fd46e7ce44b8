package toolchain

// DefaultCompiler is the C compiler driver used for compiling and linking.
const DefaultCompiler = "gcc"

// Compiler builds the command lines for a gcc-compatible driver.
type Compiler struct {
	// CC is the driver binary, gcc by default.
	CC string
	// IncludeDirs are passed as -I to program compiles.
	IncludeDirs []string
	// Debug adds -g to program compiles and the link.
	Debug bool
}

func (c *Compiler) cc() string {
	if c.CC == "" {
		return DefaultCompiler
	}
	return c.CC
}

// CompileObject compiles a translated program:
// cc -c <source> -o <object> [-g] -I<dir>...
func (c *Compiler) CompileObject(source, object string) Command {
	args := []string{"-c", source, "-o", object}
	if c.Debug {
		args = append(args, "-g")
	}
	for _, dir := range c.IncludeDirs {
		args = append(args, "-I"+dir)
	}
	return Command{Name: c.cc(), Args: args}
}

// CompileSupport compiles the runtime support library:
// cc -c <source> -o <object>
func (c *Compiler) CompileSupport(source, object string) Command {
	return Command{Name: c.cc(), Args: []string{"-c", source, "-o", object}}
}

// Link links objects into an executable:
// cc <objects>... -o <executable> [-g]
func (c *Compiler) Link(executable string, objects ...string) Command {
	args := append([]string{}, objects...)
	args = append(args, "-o", executable)
	if c.Debug {
		args = append(args, "-g")
	}
	return Command{Name: c.cc(), Args: args}
}

// Version queries the driver version: cc -dumpversion
func (c *Compiler) Version() Command {
	return Command{Name: c.cc(), Args: []string{"-dumpversion"}}
}

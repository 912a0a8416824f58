// glzi is the interop inspector: it opens a glaze-enabled shared library (or
// a built-in demo registry when no library is given) and lets you browse
// registered types, read and write instance members, and call member
// functions, either as one-shot commands or interactively.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/samber/do"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	glaze "github.com/stephenberry/glaze-interop-go"
)

const (
	appName     = "glzi"
	historyFile = ".glzi_history"
	prompt      = "glz> "
)

var useColor = term.IsTerminal(int(os.Stdout.Fd()))

func red(s string) string   { return colorize("\x1b[31m", s) }
func green(s string) string { return colorize("\x1b[32m", s) }
func blue(s string) string  { return colorize("\x1b[94m", s) }

func colorize(code, s string) string {
	if !useColor {
		return s
	}
	return code + s + "\x1b[0m"
}

func main() {
	cmd := &cli.Command{
		Name:                   appName,
		Usage:                  "Inspect and drive glaze-interop native types",
		Version:                glaze.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "lib",
				Aliases: []string{"l"},
				Usage:   "Path to a glaze-enabled shared library (demo registry when omitted)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "info",
				Usage:     "Print the member table of a registered type",
				ArgsUsage: "<type>",
				Action:    infoAction,
			},
			{
				Name:      "get",
				Usage:     "Read a member path of a named instance",
				ArgsUsage: "<instance>[.member...]",
				Action:    getAction,
			},
			{
				Name:      "set",
				Usage:     "Assign a member path of a named instance",
				ArgsUsage: "<instance>.<member...> <value>",
				Action:    setAction,
			},
			{
				Name:      "call",
				Usage:     "Invoke a member function of a named instance",
				ArgsUsage: "<instance>.<function> [args...]",
				Action:    callAction,
			},
			{
				Name:   "repl",
				Usage:  "Interactive session",
				Action: replAction,
			},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, red("error: ")+err.Error())
		os.Exit(1)
	}
}

// backend wires the Native implementation for this invocation: the shared
// library named by --lib, or the demo registry.
func backend(cmd *cli.Command) (glaze.Native, func(), error) {
	injector := do.New()
	path := cmd.String("lib")
	if path != "" {
		do.Provide(injector, func(i *do.Injector) (glaze.NativeCloser, error) {
			return glaze.Open(path)
		})
		lib, err := do.Invoke[glaze.NativeCloser](injector)
		if err != nil {
			return nil, nil, err
		}
		return lib, func() { _ = lib.Close() }, nil
	}
	do.Provide(injector, newDemoRegistry)
	reg, err := do.Invoke[*glaze.Registry](injector)
	if err != nil {
		return nil, nil, err
	}
	return reg, func() {}, nil
}

// ---- demo registry ----------------------------------------------------------

// Address and Person mirror the shapes a typical glaze-enabled library
// registers, so the inspector is usable without one.
type Address struct {
	Street  string
	Zipcode int32
}

type Person struct {
	Name    string
	Age     int32
	Address Address
	Scores  []int32
	Email   glaze.Optional[string]
	ID      glaze.Union2[int32, string]
}

func (p *Person) Greet() string {
	return "hello, " + p.Name
}

type Counter struct {
	Value float64
}

func (c *Counter) Add(x float64) float64 {
	c.Value += x
	return c.Value
}

func newDemoRegistry(i *do.Injector) (*glaze.Registry, error) {
	reg := glaze.NewRegistry()
	if err := glaze.RegisterType[Person](reg, "Person"); err != nil {
		return nil, err
	}
	if err := glaze.RegisterType[Counter](reg, "Counter"); err != nil {
		return nil, err
	}
	person := &Person{Name: "Ada", Age: 36, Address: Address{Street: "1 Main St", Zipcode: 10001}, Scores: []int32{95, 87, 92}}
	if err := reg.RegisterInstance("person", person); err != nil {
		return nil, err
	}
	if err := reg.RegisterInstance("counter", &Counter{Value: 10}); err != nil {
		return nil, err
	}
	return reg, nil
}

// ---- command actions --------------------------------------------------------

func infoAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return errors.New("usage: info <type>")
	}
	nat, done, err := backend(cmd)
	if err != nil {
		return err
	}
	defer done()
	return printTypeInfo(nat, cmd.Args().First())
}

func printTypeInfo(nat glaze.Native, typeName string) error {
	info, err := nat.TypeInfo(typeName)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%d bytes)\n", green(info.Name), info.Size)
	for _, m := range info.Members {
		tag := " "
		if m.Kind == glaze.FunctionMember {
			tag = "f"
		} else if m.ReadOnly {
			tag = "r"
		}
		fmt.Printf("  %s %-16s %s\n", tag, m.Name, blue(m.Type.String()))
	}
	return nil
}

func getAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return errors.New("usage: get <instance>[.member...]")
	}
	nat, done, err := backend(cmd)
	if err != nil {
		return err
	}
	defer done()
	v, err := resolvePath(nat, cmd.Args().First())
	if err != nil {
		return err
	}
	fmt.Println(render(v))
	return nil
}

func setAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 2 {
		return errors.New("usage: set <instance>.<member...> <value>")
	}
	nat, done, err := backend(cmd)
	if err != nil {
		return err
	}
	defer done()
	return assignPath(nat, cmd.Args().Get(0), cmd.Args().Get(1))
}

func callAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return errors.New("usage: call <instance>.<function> [args...]")
	}
	nat, done, err := backend(cmd)
	if err != nil {
		return err
	}
	defer done()
	v, err := invokePath(nat, cmd.Args().First(), cmd.Args().Tail())
	if err != nil {
		return err
	}
	if v != nil {
		fmt.Println(render(v))
	}
	return nil
}

// ---- path navigation --------------------------------------------------------

// walk resolves everything up to the last path element and returns the
// enclosing struct plus the final member name. A bare instance name returns
// (root, "").
func walk(nat glaze.Native, path string) (*glaze.Struct, string, error) {
	parts := strings.Split(path, ".")
	root, err := glaze.GlobalInstance(nat, parts[0])
	if err != nil {
		return nil, "", err
	}
	cur := root
	for _, p := range parts[1 : max(len(parts)-1, 1)] {
		v, err := cur.Get(p)
		if err != nil {
			return nil, "", err
		}
		s, ok := v.(*glaze.Struct)
		if !ok {
			return nil, "", fmt.Errorf("%s is not a struct", p)
		}
		cur = s
	}
	if len(parts) == 1 {
		return cur, "", nil
	}
	return cur, parts[len(parts)-1], nil
}

func resolvePath(nat glaze.Native, path string) (any, error) {
	s, last, err := walk(nat, path)
	if err != nil {
		return nil, err
	}
	if last == "" {
		return s, nil
	}
	return s.Get(last)
}

func assignPath(nat glaze.Native, path, literal string) error {
	s, last, err := walk(nat, path)
	if err != nil {
		return err
	}
	if last == "" {
		return errors.New("cannot assign to a whole instance")
	}
	return s.Set(last, parseLiteral(literal))
}

func invokePath(nat glaze.Native, path string, rawArgs []string) (any, error) {
	s, last, err := walk(nat, path)
	if err != nil {
		return nil, err
	}
	if last == "" {
		return nil, errors.New("missing function name")
	}
	args := make([]any, len(rawArgs))
	for i, a := range rawArgs {
		args[i] = parseLiteral(a)
	}
	return s.Call(last, args...)
}

// parseLiteral guesses the host type of a command-line value: bool, integer,
// float, then string.
func parseLiteral(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return strings.Trim(s, `"`)
}

// ---- value rendering --------------------------------------------------------

type eachable interface {
	Each(func(i int, val any) error) error
}

func render(v any) string {
	switch t := v.(type) {
	case nil:
		return "(void)"
	case *glaze.StringRef:
		s, err := t.Get()
		if err != nil {
			return red(err.Error())
		}
		return strconv.Quote(s)
	case *glaze.Struct:
		var b strings.Builder
		b.WriteString(t.TypeName() + "{")
		first := true
		for _, m := range t.Members() {
			if m.Kind == glaze.FunctionMember {
				continue
			}
			if !first {
				b.WriteString(", ")
			}
			first = false
			fv, err := t.Get(m.Name)
			if err != nil {
				b.WriteString(m.Name + ": " + red(err.Error()))
				continue
			}
			b.WriteString(m.Name + ": " + render(fv))
		}
		b.WriteString("}")
		return b.String()
	case *glaze.OptionalRef:
		has, err := t.HasValue()
		if err != nil {
			return red(err.Error())
		}
		if !has {
			return "(none)"
		}
		inner, err := t.Get()
		if err != nil {
			return red(err.Error())
		}
		return render(inner)
	case *glaze.Variant:
		idx, err := t.Index()
		if err != nil {
			return red(err.Error())
		}
		inner, err := t.Get()
		if err != nil {
			return red(err.Error())
		}
		return fmt.Sprintf("<%d>%s", idx, render(inner))
	case *glaze.SharedFutureRef:
		ready, err := t.IsReady()
		if err != nil {
			return red(err.Error())
		}
		if !ready {
			return "(pending)"
		}
		inner, err := t.Get()
		if err != nil {
			return red(err.Error())
		}
		return render(inner)
	case eachable:
		var parts []string
		err := t.Each(func(i int, val any) error {
			parts = append(parts, render(val))
			return nil
		})
		if err != nil {
			return red(err.Error())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *glaze.MemberFunction:
		return "(function " + t.Name + ")"
	}
	return fmt.Sprintf("%v", v)
}

// ---- REPL -------------------------------------------------------------------

var replHelp = `
commands:
  types                     list registered types (demo registry only)
  info <type>               print a type's member table
  get <path>                read instance.member...
  set <path> <value>        assign instance.member...
  call <path> [args...]     invoke a member function
  :quit                     exit
`

func replAction(ctx context.Context, cmd *cli.Command) error {
	nat, done, err := backend(cmd)
	if err != nil {
		return err
	}
	defer done()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	histPath := filepath.Join(os.TempDir(), historyFile)
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
	}
	if f, err := os.Open(histPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Printf("%s %s interactive inspector. Ctrl+D or :quit exits.\n", appName, glaze.Version)
	for {
		input, err := line.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Println()
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		if input == ":quit" || input == ":q" {
			return nil
		}
		if err := replDispatch(nat, input); err != nil {
			fmt.Println(red("error: ") + err.Error())
		}
	}
}

func replDispatch(nat glaze.Native, input string) error {
	fields := strings.Fields(input)
	verb, rest := fields[0], fields[1:]
	switch verb {
	case "help", "?":
		fmt.Print(replHelp)
		return nil
	case "types":
		reg, ok := nat.(*glaze.Registry)
		if !ok {
			return errors.New("type enumeration needs the demo registry; shared libraries expose lookup only")
		}
		for _, n := range reg.TypeNames() {
			fmt.Println(green(n))
		}
		for _, n := range reg.InstanceNames() {
			fmt.Println(blue(n) + " (instance)")
		}
		return nil
	case "info":
		if len(rest) != 1 {
			return errors.New("usage: info <type>")
		}
		return printTypeInfo(nat, rest[0])
	case "get":
		if len(rest) != 1 {
			return errors.New("usage: get <path>")
		}
		v, err := resolvePath(nat, rest[0])
		if err != nil {
			return err
		}
		fmt.Println(render(v))
		return nil
	case "set":
		if len(rest) != 2 {
			return errors.New("usage: set <path> <value>")
		}
		return assignPath(nat, rest[0], rest[1])
	case "call":
		if len(rest) < 1 {
			return errors.New("usage: call <path> [args...]")
		}
		v, err := invokePath(nat, rest[0], rest[1:])
		if err != nil {
			return err
		}
		if v != nil {
			fmt.Println(render(v))
		}
		return nil
	}
	return fmt.Errorf("unknown command %q (try help)", verb)
}

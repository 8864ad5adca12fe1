package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"k4edit/k4"
)

const usage = `usage: k4edit <command> [flags] args

commands:
  info <file>                          container, header and slot summary
  verify <file>                        checksum report
  get <file> <kind> <slot>             record as JSON
  set [-o out] <file> <kind> <slot> <field> <value>
  apply [-o out] <file> <edits.json>   run a JSON edit script
  randomize [-o out] [-seed n] [-group g] <file> <kind> <slot>
  convert <in> <out>                   re-encode as .mid or .syx
  export <file> <kind> <slot> <out>    write one record to a flat file
  import [-o out] [-force] <file> <kind> <slot> <in>
  new [-channel n] <out>               write a blank full dump
  fields <kind>                        list the fields of a kind
  mcp <file>                           serve the MCP tools on stdio

kinds: single, multi, drumcommon, drum, effect
slots: 0-based index, or A-1 to D-16 for singles and multis
every command accepts -config <file> and -v
`

var (
	errUsage   = errors.New("bad usage")
	errInvalid = errors.New("invalid records")
	errStrict  = errors.New("refusing to save a dump that had bad checksums")
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	a := &app{out: os.Stdout}
	if err := a.run(os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

// app carries the state of one command invocation.
type app struct {
	out io.Writer

	configPath string
	verbose    bool

	cfg *Config
	log *log.Logger
}

func (a *app) run(cmd string, args []string) error {
	switch cmd {
	case "info":
		return a.info(args)
	case "verify":
		return a.verify(args)
	case "get":
		return a.get(args)
	case "set":
		return a.set(args)
	case "apply":
		return a.apply(args)
	case "randomize":
		return a.randomize(args)
	case "convert":
		return a.convert(args)
	case "export":
		return a.export(args)
	case "import":
		return a.importRecord(args)
	case "new":
		return a.newDump(args)
	case "fields":
		return a.fields(args)
	case "mcp":
		return a.mcp(args)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// flags returns a flag set with the options every command shares.
func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&a.configPath, "config", "", "YAML config file (default $"+configEnv+")")
	fs.BoolVar(&a.verbose, "v", false, "log container and dump details")
	return fs
}

// parse parses args, checks the number of positional arguments and loads
// the config.
func (a *app) parse(fs *flag.FlagSet, args []string, n int, synopsis string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != n {
		return fmt.Errorf("%w: k4edit %s %s", errUsage, fs.Name(), synopsis)
	}

	cfg, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Verbose = true
	}
	a.cfg = cfg
	a.log = cfg.logger()
	return nil
}

func (a *app) open(path string) (*k4.Document, error) {
	return k4.Open(path, a.log)
}

// save writes doc to path in the format chosen by the config.
func (a *app) save(doc *k4.Document, path string) error {
	return a.saveAs(doc, path, a.cfg.saveFormat(path, doc.Format))
}

func (a *app) saveAs(doc *k4.Document, path string, f k4.Format) error {
	if a.cfg.StrictChecksums && len(doc.Warnings) > 0 {
		return fmt.Errorf("%w: %d records in %s", errStrict, len(doc.Warnings), doc.Path)
	}
	if err := doc.Save(path, f); err != nil {
		return err
	}
	log.Printf("saved %s (%s)", path, f)
	return nil
}

// record resolves kind and slot arguments to a record of doc.
func (a *app) record(doc *k4.Document, kind, slot string) (*k4.Record, int, error) {
	k, err := k4.ParseKind(kind)
	if err != nil {
		return nil, 0, err
	}
	i, err := parseSlot(k, slot)
	if err != nil {
		return nil, 0, err
	}
	r, err := doc.Record(k, i)
	if err != nil {
		return nil, 0, err
	}
	return r, i, nil
}

// parseSlot accepts a 0-based index or, for singles and multis, the front
// panel name of the slot (A-1 to D-16).
func parseSlot(k k4.Kind, s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	if k != k4.KindSingle && k != k4.KindMulti {
		return 0, fmt.Errorf("%s slot must be a number, got %q", k, s)
	}

	bank, num, ok := strings.Cut(strings.ToUpper(s), "-")
	if !ok || len(bank) != 1 || bank[0] < 'A' || bank[0] > 'D' {
		return 0, fmt.Errorf("bank must be A-D, got %q", s)
	}
	n, err := strconv.Atoi(num)
	if err != nil || n < 1 || n > 16 {
		return 0, fmt.Errorf("slot number must be 1-16, got %q", s)
	}
	return int(bank[0]-'A')*16 + n - 1, nil
}

// output returns the -o value or, when empty, the input path.
func output(o, in string) string {
	if o == "" {
		return in
	}
	return o
}

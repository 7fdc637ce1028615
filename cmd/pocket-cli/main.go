package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dd0wney/cluso-pockets/pkg/logging"
	"github.com/dd0wney/cluso-pockets/pkg/notify"
	"github.com/dd0wney/cluso-pockets/pkg/pocket"
	"github.com/dd0wney/cluso-pockets/pkg/topology"
	"go.nanomsg.org/mangos/v3"
	"gopkg.in/yaml.v3"
)

// report is the machine-readable form of one analysis
type report struct {
	RunID   string          `json:"runId" yaml:"run_id"`
	Stats   pocket.Stats    `json:"stats" yaml:"stats"`
	Pockets []pocket.Pocket `json:"pockets" yaml:"pockets"`
}

// lookup is the machine-readable form of one entity query
type lookup struct {
	EntityID string `json:"entityId" yaml:"entity_id"`
	InPocket bool   `json:"inPocket" yaml:"in_pocket"`
	Pocket   *int   `json:"pocket,omitempty" yaml:"pocket,omitempty"`
}

type CLI struct {
	dir     string
	opts    topology.LoadOptions
	strict  bool
	format  string
	out     io.Writer
	index   *pocket.Index
	scanner *bufio.Scanner
}

func main() {
	modelDir := flag.String("model", "./data_dump", "Model dump directory")
	delimiter := flag.String("delimiter", topology.DefaultDelimiter, "Edge table pair key delimiter")
	strict := flag.Bool("strict", false, "Fail when the neighbor graph disagrees with the edge table")
	format := flag.String("format", "text", "Output format: text, json or yaml")
	entity := flag.String("entity", "", "Print the pocket of one entity and exit")
	interactive := flag.Bool("i", false, "Start an interactive session")
	watch := flag.String("watch", "", "Print model-loaded notifications from a pocketd address")
	flag.Parse()

	if *watch != "" {
		if err := watchNotifications(*watch, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "watch failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	switch *format {
	case "text", "json", "yaml":
	default:
		fmt.Fprintf(os.Stderr, "unknown format %q\n", *format)
		os.Exit(2)
	}

	cli := &CLI{
		dir:     *modelDir,
		opts:    topology.LoadOptions{DecodeOptions: topology.DecodeOptions{Delimiter: *delimiter}},
		strict:  *strict,
		format:  *format,
		out:     os.Stdout,
		scanner: bufio.NewScanner(os.Stdin),
	}

	if err := cli.load(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to analyse %s: %v\n", *modelDir, err)
		os.Exit(1)
	}

	switch {
	case *entity != "":
		cli.printEntity(*entity)
	case *interactive:
		cli.run()
	default:
		cli.printReport()
	}
}

func (cli *CLI) load() error {
	logger := logging.DefaultLogger()
	opts := cli.opts
	opts.Logger = logger
	snap, err := topology.LoadDir(cli.dir, opts)
	if err != nil {
		return err
	}
	ix, err := pocket.Analyze(snap, pocket.WithLogger(logger), pocket.WithStrictNeighbors(cli.strict))
	if err != nil {
		return err
	}
	cli.index = ix
	return nil
}

func (cli *CLI) run() {
	fmt.Fprintf(cli.out, "Loaded %s: %d entities, %d pockets\n", cli.dir, cli.index.Stats().Entities, cli.index.PocketCount())
	fmt.Fprintln(cli.out, "Type 'help' for available commands, 'exit' to quit")

	for {
		fmt.Fprint(cli.out, "pockets> ")
		if !cli.scanner.Scan() {
			break
		}
		input := strings.TrimSpace(cli.scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}
		cli.handle(input)
	}
}

func (cli *CLI) handle(input string) {
	parts := strings.Fields(input)
	command, args := strings.ToLower(parts[0]), parts[1:]

	switch command {
	case "help":
		cli.printHelp()
	case "summary", "stats":
		cli.printSummary()
	case "pockets", "list":
		cli.printReport()
	case "pocket":
		if len(args) != 1 {
			fmt.Fprintln(cli.out, "usage: pocket <index>")
			return
		}
		cli.printPocket(args[0])
	case "entity", "face":
		if len(args) != 1 {
			fmt.Fprintln(cli.out, "usage: entity <id>")
			return
		}
		cli.printEntity(args[0])
	case "reload":
		start := time.Now()
		if err := cli.load(); err != nil {
			// The previous analysis stays loaded
			fmt.Fprintf(cli.out, "reload failed: %v\n", err)
			return
		}
		fmt.Fprintf(cli.out, "reloaded in %v: %d pockets (run %s)\n", time.Since(start), cli.index.PocketCount(), cli.index.RunID())
	case "format":
		if len(args) != 1 || (args[0] != "text" && args[0] != "json" && args[0] != "yaml") {
			fmt.Fprintln(cli.out, "usage: format text|json|yaml")
			return
		}
		cli.format = args[0]
	default:
		fmt.Fprintf(cli.out, "unknown command: %s (type 'help' for available commands)\n", command)
	}
}

func (cli *CLI) printHelp() {
	fmt.Fprint(cli.out, `
Commands:
  summary            Analysis statistics
  pockets            Every pocket with its members
  pocket <index>     One pocket
  entity <id>        Which pocket an entity belongs to
  reload             Re-read and re-analyse the model directory
  format <fmt>       Switch output to text, json or yaml
  exit               Leave the session

`)
}

func (cli *CLI) printSummary() {
	st := cli.index.Stats()
	if cli.format != "text" {
		cli.encode(st)
		return
	}
	fmt.Fprintf(cli.out, "Run:                 %s\n", cli.index.RunID())
	fmt.Fprintf(cli.out, "Entities:            %d\n", st.Entities)
	fmt.Fprintf(cli.out, "Concave links:       %d\n", st.ConcaveLinks)
	fmt.Fprintf(cli.out, "Pockets:             %d\n", st.Pockets)
	fmt.Fprintf(cli.out, "Entities in pockets: %d\n", st.EntitiesInPockets)
	fmt.Fprintf(cli.out, "Largest pocket:      %d\n", st.LargestPocket)
	fmt.Fprintf(cli.out, "Singletons:          %d\n", st.Singletons)
}

func (cli *CLI) printReport() {
	if cli.format != "text" {
		cli.encode(report{RunID: cli.index.RunID(), Stats: cli.index.Stats(), Pockets: cli.index.Pockets()})
		return
	}
	cli.printSummary()
	fmt.Fprintln(cli.out)
	for _, p := range cli.index.Pockets() {
		fmt.Fprintf(cli.out, "Pocket %-4d %s  %d entities: %s\n", p.Index, p.Color, p.Size(), strings.Join(p.Entities, ", "))
	}
}

func (cli *CLI) printPocket(arg string) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		fmt.Fprintf(cli.out, "invalid pocket index %q\n", arg)
		return
	}
	p, ok := cli.index.Pocket(n)
	if !ok {
		fmt.Fprintf(cli.out, "no pocket %d (model has %d)\n", n, cli.index.PocketCount())
		return
	}
	if cli.format != "text" {
		cli.encode(p)
		return
	}
	fmt.Fprintf(cli.out, "Pocket %d (%s), %d entities\n", p.Index, p.Color, p.Size())
	for _, id := range p.Entities {
		fmt.Fprintf(cli.out, "  %s\n", id)
	}
}

func (cli *CLI) printEntity(id string) {
	l := lookup{EntityID: id}
	if n, ok := cli.index.PocketOf(id); ok {
		l.InPocket = true
		l.Pocket = &n
	}
	if cli.format != "text" {
		cli.encode(l)
		return
	}
	if !l.InPocket {
		fmt.Fprintf(cli.out, "%s is not in a pocket\n", id)
		return
	}
	fmt.Fprintf(cli.out, "%s is in pocket %d\n", id, *l.Pocket)
}

func (cli *CLI) encode(v any) {
	var err error
	switch cli.format {
	case "json":
		enc := json.NewEncoder(cli.out)
		enc.SetIndent("", "  ")
		err = enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(cli.out)
		enc.SetIndent(2)
		err = enc.Encode(v)
		if err == nil {
			err = enc.Close()
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode %s: %v\n", cli.format, err)
	}
}

// watchNotifications prints events until interrupted
func watchNotifications(addr string, out io.Writer) error {
	s, err := notify.Subscribe(addr, time.Second)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(out, "watching %s\n", addr)
	for ctx.Err() == nil {
		ev, err := s.Recv()
		if errors.Is(err, mangos.ErrRecvTimeout) {
			continue
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s run=%s entities=%d pockets=%d\n",
			ev.Time.Format(time.RFC3339), ev.Event, ev.RunID, ev.Entities, ev.PocketCount)
	}
	return nil
}

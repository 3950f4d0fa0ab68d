package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/jmgilman/go/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"file-cache/internal/health"
	"file-cache/internal/logs"
	"file-cache/internal/metrics"
	"file-cache/internal/store"
	"file-cache/internal/ttl"
)

// app bundles what a subcommand needs.
type app struct {
	cache   *store.Store[any]
	metrics *metrics.Registry
	ring    *logs.RingHook
	out     io.Writer
}

type command struct {
	usage   string
	summary string
	minArgs int
	maxArgs int
	mutates bool
	// debug lowers the log threshold so the ring sees the store's debug lines.
	debug bool
	run   func(a *app, args []string) error
}

var commands = map[string]command{
	"get":     {usage: "KEY", summary: "print the live value of KEY", minArgs: 1, maxArgs: 1, mutates: true, run: runGet},
	"set":     {usage: "KEY VALUE [TTL]", summary: "store VALUE (JSON or text) under KEY", minArgs: 2, maxArgs: 3, mutates: true, run: runSet},
	"unset":   {usage: "KEY", summary: "remove KEY", minArgs: 1, maxArgs: 1, mutates: true, run: runUnset},
	"has":     {usage: "KEY", summary: "print whether KEY is live", minArgs: 1, maxArgs: 1, mutates: true, run: runHas},
	"keys":    {usage: "", summary: "list live keys in insertion order", run: runKeys},
	"all":     {usage: "", summary: "print live entries as a JSON object", run: runAll},
	"len":     {usage: "", summary: "print the number of live keys", run: runLen},
	"clear":   {usage: "", summary: "remove every entry", mutates: true, run: runClear},
	"commit":  {usage: "", summary: "write the snapshot to disk", run: runCommit},
	"prune":   {usage: "", summary: "delete expired entries", mutates: true, run: runPrune},
	"health":  {usage: "", summary: "report load and logging health of this run; exits 1 when critical", run: runHealth},
	"stats":   {usage: "", summary: "print store location, counters and this run's log events", debug: true, run: runStats},
	"version": {usage: "", summary: "print version"},
}

// usageError marks a bad invocation of an otherwise valid command.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func exitCode(err error) int {
	var uerr usageError
	if errors.As(err, &uerr) {
		return 2
	}
	return 1
}

func printUsage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "usage: cachectl [--config FILE] [--commit] COMMAND [ARGS]")
	fmt.Fprintln(w, "commands:")
	for _, name := range names {
		cmd := commands[name]
		fmt.Fprintf(w, "  %-8s %-16s %s\n", name, cmd.usage, cmd.summary)
	}
}

func runGet(a *app, args []string) error {
	value, err := a.cache.Get(args[0])
	if errors.Is(err, store.ErrNotFound) {
		return errors.Wrapf(err, errors.CodeNotFound, "key %q", args[0])
	}
	if err != nil {
		return err
	}
	return printValue(a.out, value)
}

func runSet(a *app, args []string) error {
	key, value := args[0], decodeValue(args[1])
	if len(args) == 2 {
		return a.cache.Set(key, value)
	}

	lifetime, err := ttl.Parse(args[2])
	if err != nil {
		return usageError{msg: err.Error()}
	}
	return a.cache.SetTTL(key, value, lifetime)
}

func runUnset(a *app, args []string) error {
	return a.cache.Unset(args[0])
}

func runHas(a *app, args []string) error {
	ok, err := a.cache.Has(args[0])
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, strconv.FormatBool(ok))
	return err
}

func runKeys(a *app, _ []string) error {
	for _, key := range a.cache.Keys() {
		if _, err := fmt.Fprintln(a.out, key); err != nil {
			return err
		}
	}
	return nil
}

// runAll prints live entries in insertion order; a plain map would sort them.
func runAll(a *app, _ []string) error {
	live := orderedmap.New[string, any]()
	for key, value := range a.cache.Iter() {
		live.Set(key, value)
	}

	data, err := json.Marshal(live)
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidInput, "encode entries")
	}
	_, err = fmt.Fprintln(a.out, string(data))
	return err
}

func runLen(a *app, _ []string) error {
	_, err := fmt.Fprintln(a.out, a.cache.Len())
	return err
}

func runClear(a *app, _ []string) error {
	return a.cache.Clear()
}

func runCommit(a *app, _ []string) error {
	return a.cache.Commit()
}

func runPrune(a *app, _ []string) error {
	n, err := a.cache.Prune()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, n)
	return err
}

func runStats(a *app, _ []string) error {
	path := a.cache.Path()
	if path == "" {
		path = "-"
	}
	fmt.Fprintf(a.out, "path %s\n", path)
	fmt.Fprintf(a.out, "persistent %t\n", a.cache.Persistent())
	fmt.Fprintf(a.out, "entries %d\n", a.cache.Len())

	snapshot := a.metrics.Snapshot()
	for _, name := range a.metrics.Names() {
		fmt.Fprintf(a.out, "%s %d\n", name, snapshot[name])
	}

	for _, entry := range a.ring.GetLast(ringSize) {
		fmt.Fprintf(a.out, "event %s %s %s\n", entry.TimeStamp.Format("15:04:05"), entry.Level, entry.Message)
	}
	return nil
}

func runHealth(a *app, _ []string) error {
	report := health.NewAnalyzer(a.metrics, a.ring).Analyze()

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidInput, "encode health report")
	}
	if _, err := fmt.Fprintln(a.out, string(data)); err != nil {
		return err
	}

	if report.OverallStatus == health.StatusCritical {
		return errors.New(errors.CodeUnavailable, report.Summary)
	}
	return nil
}

// decodeValue keeps valid JSON as structured data and anything else as text.
func decodeValue(raw string) any {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return raw
	}
	return value
}

func printValue(w io.Writer, value any) error {
	if s, ok := value.(string); ok {
		_, err := fmt.Fprintln(w, s)
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidInput, "encode value")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

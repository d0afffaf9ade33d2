package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joeycumines/corert/logfacility"
)

const usage = `commands:
  [set] <LVL> <index...|all>   set a logger's level
  lower <LVL> <index...|all>   set a logger's level only if it would decrease
  raise <LVL> <index...|all>   set a logger's level only if it would increase
  list                         list registered loggers and their levels
  storeLogConf <file>          save levels in binary form
  loadLogConf <file>           load levels from binary form
  storeLogConfTxt <file>       save levels in text form
  loadLogConfTxt <file>        load levels from text form
  LogHistory [n] [clear]       print the last n recorded messages
  exit | quit                  leave the prompt
<LVL> is one of D I W E F N (debug info warning error fatal nothing).`

// dispatch parses and runs one command line against env, returning the
// error to report (if any); it never calls os.Exit so it can be reused
// for both the interactive prompt and a single non-interactive invocation.
func dispatch(env *environment, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch strings.ToLower(fields[0]) {
	case "set":
		return dispatchLevelCmd(env, "set", fields[1:])
	case "lower":
		return dispatchLevelCmd(env, "lower", fields[1:])
	case "raise":
		return dispatchLevelCmd(env, "raise", fields[1:])
	case "storelogconf":
		return cmdStoreLogConf(env, fields[1:])
	case "loadlogconf":
		return cmdLoadLogConf(env, fields[1:])
	case "storelogconftxt":
		return cmdStoreLogConfTxt(env, fields[1:])
	case "loadlogconftxt":
		return cmdLoadLogConfTxt(env, fields[1:])
	case "loghistory":
		return cmdLogHistory(env, fields[1:])
	case "list":
		fmt.Print(listLoggers(env.facility))
		return nil
	case "help":
		fmt.Println(usage)
		return nil
	case "exit", "quit":
		return nil
	default:
		if _, ok := logfacility.ParseLevel(fields[0]); ok {
			return dispatchLevelCmd(env, "set", fields)
		}
		return fmt.Errorf("unknown command %q", fields[0])
	}
}

func listLoggers(f *logfacility.Facility) string {
	loggers := f.Loggers()
	var b strings.Builder
	for i, l := range loggers {
		fmt.Fprintf(&b, "%3d  %-16s %s\n", i+1, l.Name(), l.Level())
	}
	return b.String()
}

func dispatchLevelCmd(env *environment, mode string, fields []string) error {
	if len(fields) < 2 {
		return fmt.Errorf("usage: %s <LVL> <index...|all>", mode)
	}
	lvl, ok := logfacility.ParseLevel(fields[0])
	if !ok {
		return fmt.Errorf("unknown level %q", fields[0])
	}
	return applyLevelCommand(env.facility, mode, lvl, fields[1:])
}

func applyLevelCommand(f *logfacility.Facility, mode string, lvl logfacility.Level, targets []string) error {
	loggers := f.Loggers()
	indices, err := resolveIndices(targets, len(loggers))
	if err != nil {
		return err
	}
	for _, idx := range indices {
		l := loggers[idx]
		switch mode {
		case "set":
			l.SetLevel(lvl)
		case "lower":
			if lvl < l.Level() {
				l.SetLevel(lvl)
			}
		case "raise":
			if lvl > l.Level() {
				l.SetLevel(lvl)
			}
		}
	}
	return nil
}

func resolveIndices(targets []string, n int) ([]int, error) {
	if len(targets) == 1 && strings.EqualFold(targets[0], "all") {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}
	out := make([]int, 0, len(targets))
	for _, tok := range targets {
		idx, err := strconv.Atoi(tok)
		if err != nil || idx < 1 || idx > n {
			return nil, fmt.Errorf("invalid logger index %q", tok)
		}
		out = append(out, idx-1)
	}
	return out, nil
}

func cmdStoreLogConf(env *environment, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: storeLogConf <file>")
	}
	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	return logfacility.WriteBinaryConfig(f, env.facility.SnapshotLevels())
}

func cmdLoadLogConf(env *environment, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: loadLogConf <file>")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	entries, err := logfacility.ReadBinaryConfig(f)
	if err != nil {
		return err
	}
	return restoreOrReport(env, entries)
}

func cmdStoreLogConfTxt(env *environment, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: storeLogConfTxt <file>")
	}
	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	return logfacility.WriteTextConfig(f, env.facility.SnapshotLevels())
}

func cmdLoadLogConfTxt(env *environment, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: loadLogConfTxt <file>")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	entries, err := logfacility.ReadTextConfig(f)
	if err != nil {
		return err
	}
	return restoreOrReport(env, entries)
}

func restoreOrReport(env *environment, entries []logfacility.LevelEntry) error {
	if unknown := env.facility.RestoreLevels(entries); len(unknown) > 0 {
		return fmt.Errorf("unknown log source: %s", strings.Join(unknown, ", "))
	}
	return nil
}

func cmdLogHistory(env *environment, args []string) error {
	n := 20
	clear := false
	for _, a := range args {
		if strings.EqualFold(a, "clear") {
			clear = true
			continue
		}
		v, err := strconv.Atoi(a)
		if err != nil {
			return fmt.Errorf("invalid LogHistory argument %q", a)
		}
		n = v
	}
	for _, line := range env.ring.Last(n) {
		fmt.Println(line)
	}
	if clear {
		env.ring.Clear()
	}
	return nil
}

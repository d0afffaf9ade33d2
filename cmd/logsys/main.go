package main

import (
	"fmt"
	"os"
	"strings"

	prompt "github.com/joeycumines/go-prompt"
)

func main() {
	env, err := newEnvironment()
	if err != nil {
		fail(err)
	}

	// A single invocation ("logsys storeLogConf foo.bin") runs one
	// command and exits with the §6 convention; with no arguments it
	// falls through to the interactive prompt.
	if len(os.Args) > 1 {
		err := dispatch(env, strings.Join(os.Args[1:], " "))
		env.close()
		if err != nil {
			fail(err)
		}
		os.Exit(0)
	}

	fmt.Print(listLoggers(env.facility))

	p := prompt.New(
		func(line string) {
			if err := dispatch(env, line); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
			}
		},
		prompt.WithPrefix("logsys> "),
		prompt.WithTitle("logsys"),
		prompt.WithCompleter(completer),
		prompt.WithExitChecker(exitChecker),
	)
	p.Run()
	env.close()
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

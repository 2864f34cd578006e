// cmd/renc/main.go
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"log"
	"os"

	"github.com/mattn/go-isatty"

	"renc/internal/host"
	"renc/internal/instance"
	"renc/internal/level"
)

// commandAliases mirrors the teacher's small alias map, scaled down to
// the two commands this host actually has.
var commandAliases = map[string]string{
	"r": "run",
	"i": "repl",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		startRepl()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "repl":
		startRepl()
	case "run":
		if len(args) < 2 {
			log.Fatalf("usage: renc run <file>")
		}
		runFile(args[1])
	default:
		log.Fatalf("unknown command %q (try \"run <file>\" or \"repl\")", args[0])
	}
}

// stdoutSink is the string-output sink PRINT writes through (§6's
// "bind only via... a string-output sink").
type stdoutSink struct{}

func (stdoutSink) WriteLine(s string) { fmt.Println(s) }

func newInstance() (*instance.Instance, error) {
	in, err := instance.New()
	if err != nil {
		return nil, err
	}
	api := &host.API{Pool: in.Pool, Syms: in.Syms, Define: in.Define}
	if err := host.DemoCollator(stdoutSink{})(api); err != nil {
		return nil, err
	}
	return in, nil
}

func runFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("renc: %v", err)
	}

	in, err := newInstance()
	if err != nil {
		log.Fatalf("renc: %v", err)
	}
	defer in.Close()

	sc := host.NewLineScanner()
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		arr, err := sc.Scan(in.Pool, in.Syms, in.Root(), line)
		if err != nil {
			log.Fatalf("renc: scan: %v", err)
		}
		if arr.Len() == 0 {
			continue
		}
		out, err := in.Eval(arr)
		if err != nil {
			log.Fatalf("renc: eval: %v", err)
		}
		if errVal, ok := level.Err(out); ok {
			log.Fatalf("renc: %v", errVal)
		}
	}
}

func startRepl() {
	fmt.Println("renc REPL | type 'exit' to quit")
	decorated := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	in, err := newInstance()
	if err != nil {
		log.Fatalf("renc: %v", err)
	}
	defer in.Close()

	sc := host.NewLineScanner()
	stdin := bufio.NewScanner(os.Stdin)

	for {
		if decorated {
			fmt.Printf(">>> [tick %d] ", in.Debugger().Tick())
		} else {
			fmt.Print(">>> ")
		}
		if !stdin.Scan() {
			break
		}
		line := stdin.Text()
		if line == "exit" {
			break
		}

		arr, err := sc.Scan(in.Pool, in.Syms, in.Root(), line)
		if err != nil {
			fmt.Println("scan error:", err)
			continue
		}
		if arr.Len() == 0 {
			continue
		}

		out, err := in.Eval(arr)
		if err != nil {
			fmt.Println("eval error:", err)
			continue
		}
		if errVal, ok := level.Err(out); ok {
			fmt.Println("error:", errVal)
			continue
		}
		fmt.Println("==", host.DebugRender(out))
	}
}

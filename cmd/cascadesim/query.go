package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/jihwankim/cascadesim/pkg/query"
)

// runREPL drives an interactive query loop over stdin/stdout until the
// user types exit/quit/q or closes stdin.
func runREPL(engine *query.Engine) {
	fmt.Println("cascadesim interactive query mode. Type 'help' for examples, 'exit' to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "exit", "quit", "q":
			return
		case "help":
			fmt.Println(query.Hint())
			continue
		}

		fmt.Println(engine.Handle(line))
	}
}

package orchestrator

import (
	"slices"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

var shellBuiltins = map[string]struct{}{
	".": {}, ":": {}, "[": {}, "alias": {}, "break": {}, "builtin": {}, "cd": {}, "command": {},
	"continue": {}, "declare": {}, "echo": {}, "eval": {}, "exec": {}, "exit": {}, "export": {},
	"false": {}, "getopts": {}, "hash": {}, "let": {}, "local": {}, "popd": {}, "printf": {},
	"pushd": {}, "pwd": {}, "read": {}, "readonly": {}, "return": {}, "set": {}, "shift": {},
	"source": {}, "test": {}, "times": {}, "trap": {}, "true": {}, "type": {}, "typeset": {},
	"ulimit": {}, "umask": {}, "unalias": {}, "unset": {}, "wait": {},
}

// commandTools returns the executables the command lines start, in first
// seen order. Every simple command counts, including those nested in
// conditionals, loops, groups and substitutions. Builtins, functions declared
// on the line, paths and computed names are skipped. A line that does not
// parse contributes nothing; running it reports the syntax error.
func commandTools(lines []string) []string {
	parser := syntax.NewParser()

	var tools []string
	for _, line := range lines {
		file, err := parser.Parse(strings.NewReader(line), "")
		if err != nil {
			continue
		}

		funcs := make(map[string]struct{})
		var calls []string
		syntax.Walk(file, func(node syntax.Node) bool {
			switch n := node.(type) {
			case *syntax.FuncDecl:
				funcs[n.Name.Value] = struct{}{}
			case *syntax.CallExpr:
				if len(n.Args) > 0 {
					calls = append(calls, n.Args[0].Lit())
				}
			}
			return true
		})

		for _, name := range calls {
			if name == "" || strings.ContainsRune(name, '/') || slices.Contains(tools, name) {
				continue
			}
			if _, builtin := shellBuiltins[name]; builtin {
				continue
			}
			if _, fn := funcs[name]; fn {
				continue
			}
			tools = append(tools, name)
		}
	}
	return tools
}

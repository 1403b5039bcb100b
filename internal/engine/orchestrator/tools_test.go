package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandTools(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []string
	}{
		{"plain", []string{"go build ./..."}, []string{"go"}},
		{"assignments", []string{"CGO_ENABLED=0 GOOS=linux go build"}, []string{"go"}},
		{"builtins and paths", []string{"cd web && npm ci", "./gradlew build", "echo done"}, []string{"npm"}},
		{"pipes", []string{"cat a | grep b; make"}, []string{"cat", "grep", "make"}},
		{"dedup", []string{"make a", "make b"}, []string{"make"}},
		{"substitution", []string{"$(which tool) run"}, []string{"which"}},
		{"if", []string{"if true; then echo ok; fi"}, nil},
		{"if with tools", []string{"if command -v docker; then docker build .; else podman build .; fi"}, []string{"docker", "podman"}},
		{"for", []string{"for f in a b; do echo $f; done"}, nil},
		{"while", []string{"while read -r l; do jq . \"$l\"; done < list"}, []string{"jq"}},
		{"case", []string{"case $OS in linux) make linux;; *) make other;; esac"}, []string{"make"}},
		{"quoted separators", []string{`echo "hello; world"`, "grep 'a|b' file"}, []string{"grep"}},
		{"group", []string{"{ echo grouped; }"}, nil},
		{"subshell", []string{"(cd web && yarn build)"}, []string{"yarn"}},
		{"negation and test", []string{"! [[ -f out ]] || rm out"}, []string{"rm"}},
		{"time", []string{"time cargo build"}, []string{"cargo"}},
		{"functions", []string{"build() { cc main.c; }; build"}, []string{"cc"}},
		{"syntax error", []string{"if then"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, commandTools(tt.lines))
		})
	}
}

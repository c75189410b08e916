package wrapper

import (
	"testing"

	"github.com/gzhole/longline/internal/shellast"
)

func cmd(name string, argv ...string) *shellast.SimpleCommand {
	return &shellast.SimpleCommand{Name: name, HasName: true, Argv: argv}
}

func TestBasename(t *testing.T) {
	cases := map[string]string{
		"timeout":             "timeout",
		"/usr/bin/timeout":    "timeout",
		"./env":               "env",
		"/usr/local/bin/nice": "nice",
	}
	for in, want := range cases {
		if got := basename(in); got != want {
			t.Errorf("basename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFindKnownAndUnknown(t *testing.T) {
	for _, name := range []string{"timeout", "nice", "env", "nohup", "strace", "time"} {
		if _, ok := find(name); !ok {
			t.Errorf("find(%q) = not found, want found", name)
		}
	}
	for _, name := range []string{"ls", "rm", "cargo"} {
		if _, ok := find(name); ok {
			t.Errorf("find(%q) = found, want not found", name)
		}
	}
	if _, ok := find("/usr/bin/env"); !ok {
		t.Error("find with absolute path should still match")
	}
}

func TestIsEnvAssignment(t *testing.T) {
	valid := []string{"FOO=bar", "_FOO=bar", "FOO123=bar", "PATH=/usr/bin:/usr/local/bin", "FOO=bar=baz", "FOO=", "A=1"}
	for _, tok := range valid {
		if !isEnvAssignment(tok) {
			t.Errorf("isEnvAssignment(%q) = false, want true", tok)
		}
	}
	invalid := []string{"1FOO=bar", "=bar", "FOO", "--foo=bar", "-f=bar", "", "FOO-BAR=baz"}
	for _, tok := range invalid {
		if isEnvAssignment(tok) {
			t.Errorf("isEnvAssignment(%q) = true, want false", tok)
		}
	}
}

func TestTimeoutBasic(t *testing.T) {
	inner, ok := Unwrap(cmd("timeout", "30", "ls", "-la"))
	if !ok || inner.Name != "ls" || len(inner.Argv) != 1 || inner.Argv[0] != "-la" {
		t.Fatalf("got %+v, ok=%v", inner, ok)
	}
}

func TestTimeoutWithSignalFlag(t *testing.T) {
	inner, ok := Unwrap(cmd("timeout", "-s", "KILL", "30", "ls"))
	if !ok || inner.Name != "ls" || len(inner.Argv) != 0 {
		t.Fatalf("got %+v, ok=%v", inner, ok)
	}
}

func TestTimeoutWithSignalEq(t *testing.T) {
	inner, ok := Unwrap(cmd("timeout", "--signal=TERM", "10", "echo", "hi"))
	if !ok || inner.Name != "echo" || len(inner.Argv) != 1 || inner.Argv[0] != "hi" {
		t.Fatalf("got %+v, ok=%v", inner, ok)
	}
}

func TestTimeoutAllFlags(t *testing.T) {
	inner, ok := Unwrap(cmd("timeout", "-s", "KILL", "-k", "5", "--verbose", "--preserve-status", "--foreground", "30", "ls"))
	if !ok || inner.Name != "ls" {
		t.Fatalf("got %+v, ok=%v", inner, ok)
	}
}

func TestTimeoutNoInnerCommand(t *testing.T) {
	if _, ok := Unwrap(cmd("timeout", "30")); ok {
		t.Fatal("expected no inner command")
	}
	if _, ok := Unwrap(cmd("timeout")); ok {
		t.Fatal("expected no inner command for empty argv")
	}
}

func TestTimeoutPreservesInnerArgv(t *testing.T) {
	inner, ok := Unwrap(cmd("timeout", "30", "rm", "-rf", "/"))
	if !ok || inner.Name != "rm" || len(inner.Argv) != 2 || inner.Argv[0] != "-rf" || inner.Argv[1] != "/" {
		t.Fatalf("got %+v, ok=%v", inner, ok)
	}
}

func TestTimeoutDoubleDash(t *testing.T) {
	inner, ok := Unwrap(cmd("timeout", "--", "30", "ls"))
	if !ok || inner.Name != "ls" {
		t.Fatalf("got %+v, ok=%v", inner, ok)
	}
}

func TestNiceBasic(t *testing.T) {
	inner, ok := Unwrap(cmd("nice", "ls", "-la"))
	if !ok || inner.Name != "ls" || len(inner.Argv) != 1 {
		t.Fatalf("got %+v, ok=%v", inner, ok)
	}
}

func TestNiceWithNCombined(t *testing.T) {
	inner, ok := Unwrap(cmd("nice", "-n10", "ls"))
	if !ok || inner.Name != "ls" {
		t.Fatalf("got %+v, ok=%v", inner, ok)
	}
}

func TestNiceNegativePriority(t *testing.T) {
	inner, ok := Unwrap(cmd("nice", "-n", "-5", "echo", "hello"))
	if !ok || inner.Name != "echo" || len(inner.Argv) != 1 || inner.Argv[0] != "hello" {
		t.Fatalf("got %+v, ok=%v", inner, ok)
	}
}

func TestEnvWithAssignment(t *testing.T) {
	inner, ok := Unwrap(cmd("env", "FOO=bar", "echo", "hello"))
	if !ok || inner.Name != "echo" || len(inner.Argv) != 1 || inner.Argv[0] != "hello" {
		t.Fatalf("got %+v, ok=%v", inner, ok)
	}
}

func TestEnvMultiAssignments(t *testing.T) {
	inner, ok := Unwrap(cmd("env", "FOO=1", "BAR=2", "BAZ=three", "ls"))
	if !ok || inner.Name != "ls" || len(inner.Argv) != 0 {
		t.Fatalf("got %+v, ok=%v", inner, ok)
	}
}

func TestEnvInvalidVarNameDigitBecomesInner(t *testing.T) {
	inner, ok := Unwrap(cmd("env", "1FOO=bar"))
	if !ok || inner.Name != "1FOO=bar" {
		t.Fatalf("got %+v, ok=%v", inner, ok)
	}
}

func TestEnvOnlyAssignmentsNoInner(t *testing.T) {
	if _, ok := Unwrap(cmd("env", "FOO=bar")); ok {
		t.Fatal("expected no inner command")
	}
	if _, ok := Unwrap(cmd("env", "FOO=bar", "BAZ=1")); ok {
		t.Fatal("expected no inner command")
	}
}

func TestNohupBasic(t *testing.T) {
	inner, ok := Unwrap(cmd("nohup", "echo", "hello"))
	if !ok || inner.Name != "echo" || len(inner.Argv) != 1 {
		t.Fatalf("got %+v, ok=%v", inner, ok)
	}
}

func TestStraceWithValueFlags(t *testing.T) {
	inner, ok := Unwrap(cmd("strace", "-e", "trace=open", "-o", "/tmp/trace.log", "ls"))
	if !ok || inner.Name != "ls" {
		t.Fatalf("got %+v, ok=%v", inner, ok)
	}
}

func TestStracePidOnlyNoInner(t *testing.T) {
	if _, ok := Unwrap(cmd("strace", "-p", "1234")); ok {
		t.Fatal("expected no inner command")
	}
}

func TestNonWrapperReturnsFalse(t *testing.T) {
	if _, ok := Unwrap(cmd("ls", "-la")); ok {
		t.Fatal("ls is not a wrapper")
	}
}

func TestNoNameReturnsFalse(t *testing.T) {
	sc := &shellast.SimpleCommand{Argv: []string{"foo"}}
	if _, ok := Unwrap(sc); ok {
		t.Fatal("nameless command has no wrapper")
	}
}

func TestRedirectsPropagated(t *testing.T) {
	sc := cmd("timeout", "30", "ls")
	sc.Redirects = []shellast.Redirect{{Op: shellast.Write, Target: "/tmp/out"}}
	inner, ok := Unwrap(sc)
	if !ok || len(inner.Redirects) != 1 || inner.Redirects[0].Target != "/tmp/out" {
		t.Fatalf("got %+v, ok=%v", inner, ok)
	}
}

func TestExtractFromSimpleWrapper(t *testing.T) {
	inners := ExtractInner(cmd("timeout", "30", "ls"))
	if len(inners) != 1 {
		t.Fatalf("got %d inners, want 1", len(inners))
	}
	sc, ok := inners[0].(*shellast.SimpleCommand)
	if !ok || sc.Name != "ls" {
		t.Fatalf("got %+v", inners[0])
	}
}

func TestExtractFromNonWrapper(t *testing.T) {
	if inners := ExtractInner(cmd("ls", "-la")); len(inners) != 0 {
		t.Fatalf("got %d inners, want 0", len(inners))
	}
}

func TestExtractChainedTwoDeep(t *testing.T) {
	inners := ExtractInner(cmd("env", "VAR=1", "timeout", "30", "ls"))
	if len(inners) != 2 {
		t.Fatalf("got %d inners, want 2", len(inners))
	}
	first := inners[0].(*shellast.SimpleCommand)
	second := inners[1].(*shellast.SimpleCommand)
	if first.Name != "timeout" || second.Name != "ls" {
		t.Fatalf("got %+v, %+v", first, second)
	}
}

func TestExtractChainedThreeDeep(t *testing.T) {
	inners := ExtractInner(cmd("env", "VAR=1", "timeout", "30", "nice", "-n", "5", "ls"))
	if len(inners) != 3 {
		t.Fatalf("got %d inners, want 3", len(inners))
	}
	last := inners[2].(*shellast.SimpleCommand)
	if last.Name != "ls" {
		t.Fatalf("got %+v", last)
	}
}

func TestExtractFromPipeline(t *testing.T) {
	stmt := &shellast.Pipeline{Stages: []shellast.Statement{
		cmd("timeout", "30", "cat", "file.txt"),
		cmd("grep", "pattern"),
	}}
	inners := ExtractInner(stmt)
	if len(inners) != 1 {
		t.Fatalf("got %d inners, want 1", len(inners))
	}
	sc := inners[0].(*shellast.SimpleCommand)
	if sc.Name != "cat" {
		t.Fatalf("got %+v", sc)
	}
}

func TestExtractFromList(t *testing.T) {
	stmt := &shellast.List{
		First: cmd("timeout", "30", "ls"),
		Rest: []shellast.ListItem{
			{Op: shellast.And, Stmt: cmd("nice", "echo", "done")},
		},
	}
	inners := ExtractInner(stmt)
	if len(inners) != 2 {
		t.Fatalf("got %d inners, want 2", len(inners))
	}
}

func TestExtractDepthLimit(t *testing.T) {
	argv := make([]string, 0, 18)
	for i := 0; i < 18; i++ {
		if i%2 == 0 {
			argv = append(argv, "nice")
		} else {
			argv = append(argv, "nohup")
		}
	}
	argv = append(argv, "rm", "-rf", "/")

	stmt := cmd("nice", argv[1:]...)
	inners := ExtractInner(stmt)
	if len(inners) == 0 {
		t.Fatal("expected at least one inner command")
	}
	last := inners[len(inners)-1]
	if _, ok := last.(*shellast.Opaque); !ok {
		t.Fatalf("expected depth limit to produce Opaque, got %+v", last)
	}
}

func TestExtractWithinDepthLimit(t *testing.T) {
	stmt := cmd("nice", "nice", "nice", "ls")
	inners := ExtractInner(stmt)
	if len(inners) != 3 {
		t.Fatalf("got %d inners, want 3", len(inners))
	}
	last, ok := inners[2].(*shellast.SimpleCommand)
	if !ok || last.Name != "ls" {
		t.Fatalf("got %+v", inners[2])
	}
}

func TestUnwrapRunnerBasic(t *testing.T) {
	inner, ok := UnwrapRunner(cmd("uv", "run", "yamllint", ".gitlab-ci.yml"))
	if !ok || inner.Name != "yamllint" || len(inner.Argv) != 1 || inner.Argv[0] != ".gitlab-ci.yml" {
		t.Fatalf("got %+v, ok=%v", inner, ok)
	}
}

func TestUnwrapRunnerNotARunCommand(t *testing.T) {
	if _, ok := UnwrapRunner(cmd("uv", "pip", "install", "foo")); ok {
		t.Fatal("uv pip install is not a run invocation")
	}
}

func TestUnwrapRunnerUnknownTool(t *testing.T) {
	if _, ok := UnwrapRunner(cmd("npm", "run", "build")); ok {
		t.Fatal("npm is not a recognised task runner here")
	}
}

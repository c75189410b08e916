package shellparse

import (
	"testing"

	"github.com/gzhole/longline/internal/shellast"
)

func TestParseEmptyStringIsOpaque(t *testing.T) {
	stmt := Parse("")
	op, ok := stmt.(*shellast.Opaque)
	if !ok || op.Text != "" {
		t.Fatalf("Parse(\"\") = %#v, want Opaque(\"\")", stmt)
	}
}

func TestParseUnrecognizableSyntaxIsOpaqueWithRawText(t *testing.T) {
	raw := "echo 'unterminated"
	stmt := Parse(raw)
	op, ok := stmt.(*shellast.Opaque)
	if !ok || op.Text != raw {
		t.Fatalf("Parse(%q) = %#v, want Opaque(%q)", raw, stmt, raw)
	}
}

func TestParseSimpleCommand(t *testing.T) {
	stmt := Parse("echo hello world")
	sc, ok := stmt.(*shellast.SimpleCommand)
	if !ok {
		t.Fatalf("Parse = %#v, want *SimpleCommand", stmt)
	}
	if sc.Name != "echo" {
		t.Errorf("Name = %q, want echo", sc.Name)
	}
	if len(sc.Argv) != 2 || sc.Argv[0] != "hello" || sc.Argv[1] != "world" {
		t.Errorf("Argv = %v", sc.Argv)
	}
}

func TestParsePipeline(t *testing.T) {
	stmt := Parse("cat file | grep foo | wc -l")
	pl, ok := stmt.(*shellast.Pipeline)
	if !ok {
		t.Fatalf("Parse = %#v, want *Pipeline", stmt)
	}
	if len(pl.Stages) != 3 {
		t.Fatalf("Stages = %d, want 3", len(pl.Stages))
	}
	first, ok := pl.Stages[0].(*shellast.SimpleCommand)
	if !ok || first.Name != "cat" {
		t.Errorf("first stage = %#v, want cat", pl.Stages[0])
	}
	last, ok := pl.Stages[2].(*shellast.SimpleCommand)
	if !ok || last.Name != "wc" {
		t.Errorf("last stage = %#v, want wc", pl.Stages[2])
	}
}

func TestParseNegatedPipeline(t *testing.T) {
	stmt := Parse("! grep foo file")
	pl, ok := stmt.(*shellast.Pipeline)
	if !ok {
		t.Fatalf("Parse = %#v, want *Pipeline", stmt)
	}
	if !pl.Negated {
		t.Error("expected Negated = true")
	}
}

func TestParseAndOrList(t *testing.T) {
	stmt := Parse("make build && make test || echo failed")
	list, ok := stmt.(*shellast.List)
	if !ok {
		t.Fatalf("Parse = %#v, want *List", stmt)
	}
	if len(list.Rest) != 2 {
		t.Fatalf("Rest = %d items, want 2", len(list.Rest))
	}
	if list.Rest[0].Op != shellast.And {
		t.Errorf("first op = %v, want And", list.Rest[0].Op)
	}
	if list.Rest[1].Op != shellast.Or {
		t.Errorf("second op = %v, want Or", list.Rest[1].Op)
	}
}

func TestParseSemicolonList(t *testing.T) {
	stmt := Parse("echo a; echo b; echo c")
	list, ok := stmt.(*shellast.List)
	if !ok {
		t.Fatalf("Parse = %#v, want *List", stmt)
	}
	if len(list.Rest) != 2 {
		t.Fatalf("Rest = %d items, want 2", len(list.Rest))
	}
	for _, item := range list.Rest {
		if item.Op != shellast.Semi {
			t.Errorf("op = %v, want Semi", item.Op)
		}
	}
}

func TestParseSubshell(t *testing.T) {
	stmt := Parse("(cd /tmp && rm -rf build)")
	sub, ok := stmt.(*shellast.Subshell)
	if !ok {
		t.Fatalf("Parse = %#v, want *Subshell", stmt)
	}
	if _, ok := sub.Inner.(*shellast.List); !ok {
		t.Errorf("Inner = %#v, want *List", sub.Inner)
	}
}

func TestParseCommandSubstitutionInArgv(t *testing.T) {
	stmt := Parse("echo $(whoami)")
	sc, ok := stmt.(*shellast.SimpleCommand)
	if !ok {
		t.Fatalf("Parse = %#v, want *SimpleCommand", stmt)
	}
	if len(sc.EmbeddedSubstitutions) != 1 {
		t.Fatalf("EmbeddedSubstitutions = %d, want 1", len(sc.EmbeddedSubstitutions))
	}
	cs, ok := sc.EmbeddedSubstitutions[0].(*shellast.CommandSubstitution)
	if !ok {
		t.Fatalf("embedded = %#v, want *CommandSubstitution", sc.EmbeddedSubstitutions[0])
	}
	inner, ok := cs.Inner.(*shellast.SimpleCommand)
	if !ok || inner.Name != "whoami" {
		t.Errorf("inner = %#v, want whoami", cs.Inner)
	}
}

func TestParseBacktickSubstitution(t *testing.T) {
	stmt := Parse("echo `id -u`")
	sc, ok := stmt.(*shellast.SimpleCommand)
	if !ok {
		t.Fatalf("Parse = %#v, want *SimpleCommand", stmt)
	}
	if len(sc.EmbeddedSubstitutions) != 1 {
		t.Fatalf("EmbeddedSubstitutions = %d, want 1", len(sc.EmbeddedSubstitutions))
	}
}

func TestParseRedirectsAttachToSimpleCommand(t *testing.T) {
	stmt := Parse("echo hi > /tmp/out.txt")
	sc, ok := stmt.(*shellast.SimpleCommand)
	if !ok {
		t.Fatalf("Parse = %#v, want *SimpleCommand", stmt)
	}
	if len(sc.Redirects) != 1 {
		t.Fatalf("Redirects = %d, want 1", len(sc.Redirects))
	}
	if sc.Redirects[0].Op != shellast.Write || sc.Redirects[0].Target != "/tmp/out.txt" {
		t.Errorf("redirect = %#v", sc.Redirects[0])
	}
}

func TestParseAppendRedirect(t *testing.T) {
	stmt := Parse("echo hi >> /tmp/out.txt")
	sc := stmt.(*shellast.SimpleCommand)
	if sc.Redirects[0].Op != shellast.Append {
		t.Errorf("op = %v, want Append", sc.Redirects[0].Op)
	}
}

func TestParseLeadingAssignment(t *testing.T) {
	stmt := Parse("FOO=bar echo hi")
	sc, ok := stmt.(*shellast.SimpleCommand)
	if !ok {
		t.Fatalf("Parse = %#v, want *SimpleCommand", stmt)
	}
	if len(sc.Assignments) != 1 || sc.Assignments[0].Name != "FOO" || sc.Assignments[0].Value != "bar" {
		t.Errorf("Assignments = %#v", sc.Assignments)
	}
	if sc.Name != "echo" {
		t.Errorf("Name = %q, want echo", sc.Name)
	}
}

func TestParseBareAssignmentHasNoName(t *testing.T) {
	stmt := Parse("FOO=bar")
	sc, ok := stmt.(*shellast.SimpleCommand)
	if !ok {
		t.Fatalf("Parse = %#v, want *SimpleCommand", stmt)
	}
	if sc.HasName {
		t.Error("expected HasName = false for a bare assignment")
	}
	if len(sc.Assignments) != 1 || sc.Assignments[0].Name != "FOO" {
		t.Errorf("Assignments = %#v", sc.Assignments)
	}
}

func TestParseIfClauseLiftsAllBranches(t *testing.T) {
	stmt := Parse(`if true; then echo yes; else echo no; fi`)
	list, ok := stmt.(*shellast.List)
	if !ok {
		t.Fatalf("Parse = %#v, want *List (cond+then+else lifted)", stmt)
	}
	if len(list.Rest) != 2 {
		t.Fatalf("Rest = %d, want 2 (true ; echo yes ; echo no lifted to 3 items total)", len(list.Rest))
	}
}

func TestParseForLoopLiftsBody(t *testing.T) {
	stmt := Parse("for f in a b c; do rm $f; done")
	sc, ok := stmt.(*shellast.SimpleCommand)
	if !ok || sc.Name != "rm" {
		t.Fatalf("Parse = %#v, want the loop body's rm command", stmt)
	}
}

func TestParseSingleQuotesStripDelimitersOnly(t *testing.T) {
	stmt := Parse(`echo 'hello world'`)
	sc := stmt.(*shellast.SimpleCommand)
	if len(sc.Argv) != 1 || sc.Argv[0] != "hello world" {
		t.Errorf("Argv = %v, want [\"hello world\"]", sc.Argv)
	}
}

// Package shellparse turns a raw shell command string into the shellast
// statement algebra, using mvdan.cc/sh/v3's bash grammar the same way
// internal/analyzer/structural.go in the teacher repo does, generalized to
// produce a full, evaluable tree instead of a flat segment list.
package shellparse

import (
	"strconv"
	"strings"

	"github.com/gzhole/longline/internal/shellast"
	"mvdan.cc/sh/v3/syntax"
)

// Parse converts a command string into a Statement. An empty string yields
// Opaque(""); a command the grammar cannot root-parse yields Opaque(raw).
// Past that point parsing never fails: unrecognised nodes become Opaque.
func Parse(command string) shellast.Statement {
	if command == "" {
		return &shellast.Opaque{Text: ""}
	}

	parser := syntax.NewParser(syntax.KeepComments(false), syntax.Variant(syntax.LangBash))
	file, err := parser.Parse(strings.NewReader(command), "")
	if err != nil {
		return &shellast.Opaque{Text: command}
	}

	return liftStatements(file.Stmts)
}

// liftStatements folds a sequence of top-level (or compound-body) statements
// into a single Statement, joining more than one with Semi — this is how
// compound constructs (for/while/if/case/block/function bodies) are lifted:
// their contained commands become siblings of whatever called liftStatements.
func liftStatements(stmts []*syntax.Stmt) shellast.Statement {
	switch len(stmts) {
	case 0:
		return &shellast.Empty{}
	case 1:
		return convertStmt(stmts[0])
	default:
		items := make([]shellast.ListItem, 0, len(stmts)-1)
		for _, s := range stmts[1:] {
			items = append(items, shellast.ListItem{Op: shellast.Semi, Stmt: convertStmt(s)})
		}
		return &shellast.List{First: convertStmt(stmts[0]), Rest: items}
	}
}

func convertStmt(stmt *syntax.Stmt) shellast.Statement {
	if stmt == nil || stmt.Cmd == nil {
		return &shellast.Empty{}
	}

	result := convertCommand(stmt)

	if len(stmt.Redirs) > 0 {
		redirects := make([]shellast.Redirect, 0, len(stmt.Redirs))
		for _, r := range stmt.Redirs {
			redirects = append(redirects, convertRedirect(r))
		}
		if sc, ok := result.(*shellast.SimpleCommand); ok {
			sc.Redirects = append(sc.Redirects, redirects...)
		}
		// Redirects attached to a non-SimpleCommand body (e.g. a subshell or
		// a lifted compound) are not representable in this algebra; dropping
		// them here matches the original's redirected_statement handling,
		// which only preserves redirects when the body is a SimpleCommand.
	}

	if stmt.Negated {
		switch v := result.(type) {
		case *shellast.Pipeline:
			v.Negated = true
			return v
		default:
			return &shellast.Pipeline{Stages: []shellast.Statement{result}, Negated: true}
		}
	}

	return result
}

func convertCommand(stmt *syntax.Stmt) shellast.Statement {
	switch cmd := stmt.Cmd.(type) {
	case *syntax.CallExpr:
		return convertCallExpr(cmd)

	case *syntax.BinaryCmd:
		if isPipeOp(cmd.Op) {
			return &shellast.Pipeline{Stages: flattenPipeStages(stmt)}
		}
		first, rest := flattenListChain(stmt)
		return &shellast.List{First: first, Rest: rest}

	case *syntax.Subshell:
		return &shellast.Subshell{Inner: liftStatements(cmd.Stmts)}

	case *syntax.Block:
		return liftStatements(cmd.Stmts)

	case *syntax.IfClause:
		return liftStatements(collectIfStmts(cmd))

	case *syntax.WhileClause:
		all := append(append([]*syntax.Stmt{}, cmd.Cond...), cmd.Do...)
		return liftStatements(all)

	case *syntax.ForClause:
		return liftStatements(cmd.Do)

	case *syntax.CaseClause:
		var all []*syntax.Stmt
		for _, item := range cmd.Items {
			all = append(all, item.Stmts...)
		}
		return liftStatements(all)

	case *syntax.FuncDecl:
		return convertStmt(cmd.Body)

	case *syntax.TestClause:
		if subs := findCommandSubstitutions(cmd); len(subs) > 0 {
			items := make([]shellast.ListItem, 0, len(subs))
			for _, s := range subs {
				items = append(items, shellast.ListItem{Op: shellast.Semi, Stmt: s})
			}
			return &shellast.List{First: &shellast.Empty{}, Rest: items}
		}
		return &shellast.Empty{}

	default:
		return &shellast.Opaque{Text: renderStmt(stmt)}
	}
}

func collectIfStmts(cmd *syntax.IfClause) []*syntax.Stmt {
	var all []*syntax.Stmt
	all = append(all, cmd.Cond...)
	all = append(all, cmd.Then...)
	for _, elif := range cmd.Elifs {
		all = append(all, elif.Cond...)
		all = append(all, elif.Then...)
	}
	if cmd.Else != nil {
		all = append(all, collectIfStmts(cmd.Else)...)
	}
	return all
}

func isPipeOp(op syntax.BinCmdOperator) bool {
	return op == syntax.Pipe || op == syntax.PipeAll
}

func isListOp(op syntax.BinCmdOperator) bool {
	return op == syntax.AndStmt || op == syntax.OrStmt
}

func listOp(op syntax.BinCmdOperator) shellast.ListOp {
	if op == syntax.OrStmt {
		return shellast.Or
	}
	return shellast.And
}

// flattenPipeStages walks a left-leaning chain of pipe BinaryCmds into an
// ordered slice of stages.
func flattenPipeStages(stmt *syntax.Stmt) []shellast.Statement {
	if bc, ok := stmt.Cmd.(*syntax.BinaryCmd); ok && isPipeOp(bc.Op) && len(stmt.Redirs) == 0 && !stmt.Negated {
		stages := flattenPipeStages(bc.X)
		return append(stages, convertStmt(bc.Y))
	}
	return []shellast.Statement{convertStmt(stmt)}
}

// flattenListChain walks a left-leaning chain of &&/|| BinaryCmds into a
// List's first element plus its ordered (op, stmt) tail.
func flattenListChain(stmt *syntax.Stmt) (shellast.Statement, []shellast.ListItem) {
	if bc, ok := stmt.Cmd.(*syntax.BinaryCmd); ok && isListOp(bc.Op) && len(stmt.Redirs) == 0 && !stmt.Negated {
		first, items := flattenListChain(bc.X)
		items = append(items, shellast.ListItem{Op: listOp(bc.Op), Stmt: convertStmt(bc.Y)})
		return first, items
	}
	return convertStmt(stmt), nil
}

func convertCallExpr(call *syntax.CallExpr) shellast.Statement {
	sc := &shellast.SimpleCommand{}

	for _, assign := range call.Assigns {
		a := shellast.Assignment{Name: assign.Name.Value}
		if assign.Value != nil {
			a.Value = renderWord(assign.Value)
			sc.EmbeddedSubstitutions = append(sc.EmbeddedSubstitutions, substitutionsIn(assign.Value)...)
		}
		sc.Assignments = append(sc.Assignments, a)
	}

	if len(call.Args) == 0 {
		return sc
	}

	sc.Name = renderWord(call.Args[0])
	sc.HasName = true

	for _, w := range call.Args[1:] {
		sc.Argv = append(sc.Argv, renderWord(w))
		sc.EmbeddedSubstitutions = append(sc.EmbeddedSubstitutions, substitutionsIn(w)...)
	}

	return sc
}

// substitutionsIn returns a CommandSubstitution node for every $(...) or
// backtick part found anywhere inside a word.
func substitutionsIn(w *syntax.Word) []shellast.Statement {
	var out []shellast.Statement
	for _, part := range w.Parts {
		out = append(out, substitutionsInPart(part)...)
	}
	return out
}

func substitutionsInPart(part syntax.WordPart) []shellast.Statement {
	switch p := part.(type) {
	case *syntax.CmdSubst:
		return []shellast.Statement{&shellast.CommandSubstitution{Inner: liftStatements(p.Stmts)}}
	case *syntax.DblQuoted:
		var out []shellast.Statement
		for _, inner := range p.Parts {
			out = append(out, substitutionsInPart(inner)...)
		}
		return out
	case *syntax.ParamExp:
		if p.Exp != nil && p.Exp.Word != nil {
			return substitutionsIn(p.Exp.Word)
		}
		return nil
	default:
		return nil
	}
}

func findCommandSubstitutions(cmd *syntax.TestClause) []shellast.Statement {
	var out []shellast.Statement
	syntax.Walk(cmd, func(n syntax.Node) bool {
		if cs, ok := n.(*syntax.CmdSubst); ok {
			out = append(out, &shellast.CommandSubstitution{Inner: liftStatements(cs.Stmts)})
		}
		return true
	})
	return out
}

func convertRedirect(r *syntax.Redirect) shellast.Redirect {
	out := shellast.Redirect{Op: redirectOp(r.Op)}
	if r.Word != nil {
		out.Target = renderWord(r.Word)
	}
	if r.N != nil {
		if fd, err := strconv.Atoi(r.N.Value); err == nil {
			out.Fd = &fd
		}
	}
	return out
}

func redirectOp(op syntax.RedirOperator) shellast.RedirectOp {
	switch op {
	case syntax.RdrOut, syntax.RdrAll:
		return shellast.Write
	case syntax.AppOut, syntax.AppAll:
		return shellast.Append
	case syntax.RdrIn, syntax.Hdoc, syntax.DashHdoc, syntax.WordHdoc:
		return shellast.Read
	case syntax.RdrInOut:
		return shellast.ReadWrite
	case syntax.DplOut:
		return shellast.DupOutput
	case syntax.DplIn:
		return shellast.DupInput
	case syntax.ClbOut:
		return shellast.Clobber
	default:
		return shellast.Write
	}
}

// renderWord resolves a word to its literal text the way the original's
// resolve_node_text unquotes string/raw_string children: quote characters
// are stripped, but expansions and command substitutions keep their source
// form so they stay visible for matching and for argv display.
func renderWord(w *syntax.Word) string {
	if w == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range w.Parts {
		sb.WriteString(literalPart(part))
	}
	return sb.String()
}

func literalPart(part syntax.WordPart) string {
	switch p := part.(type) {
	case *syntax.Lit:
		return p.Value
	case *syntax.SglQuoted:
		return p.Value
	case *syntax.DblQuoted:
		var sb strings.Builder
		for _, inner := range p.Parts {
			sb.WriteString(literalPart(inner))
		}
		return sb.String()
	default:
		var sb strings.Builder
		syntax.NewPrinter().Print(&sb, part)
		return sb.String()
	}
}

func renderStmt(stmt *syntax.Stmt) string {
	var sb strings.Builder
	syntax.NewPrinter().Print(&sb, stmt)
	return strings.TrimSpace(sb.String())
}

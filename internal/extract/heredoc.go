package extract

import (
	"strings"
)

// extractHeredocWrittenScript recognises "cat > script.py <<'EOF' ... EOF"
// or "cat <<'EOF' > script.py", returning the heredoc body only when it
// can confidently be tied to scriptPath.
func extractHeredocWrittenScript(rawCommand, scriptPath string) (string, bool) {
	candidates := []string{scriptPath}
	if rest, ok := strings.CutPrefix(scriptPath, "./"); ok {
		candidates = append(candidates, rest)
	}

	lines := strings.Split(rawCommand, "\n")
	for i, line := range lines {
		opIdx, kind, ok := findHeredocOpOutsideQuotes(line)
		if !ok {
			continue
		}
		delim, stripTabs, ok := parseHeredocDelim(line[opIdx:], kind)
		if !ok {
			return "", false
		}

		found := false
		for _, c := range candidates {
			if strings.Contains(line, c) {
				found = true
				break
			}
		}
		if !found {
			continue
		}

		before := strings.TrimLeft(line[:opIdx], " \t")
		fields := strings.Fields(before)
		if len(fields) == 0 {
			return "", false
		}
		consumer := basename(fields[0])
		if consumer != "cat" && consumer != "tee" {
			continue
		}

		var body []string
		for _, bodyLine := range lines[i+1:] {
			candidate := strings.TrimRight(bodyLine, "\r")
			if stripTabs {
				candidate = strings.TrimLeft(candidate, "\t")
			}
			if candidate == delim {
				code := strings.Join(body, "\n")
				if len(code) > MaxExtractedCodeBytes {
					return "", false
				}
				return code, true
			}
			body = append(body, strings.TrimRight(bodyLine, "\r"))
			total := 0
			for _, b := range body {
				total += len(b) + 1
			}
			if total > MaxExtractedCodeBytes {
				return "", false
			}
		}
	}
	return "", false
}

// extractFromHeredocOrHerestring recognises a python/manage.py-shell
// heredoc or here-string anywhere in the raw command text.
func extractFromHeredocOrHerestring(rawCommand string) (ExtractedCode, bool) {
	code, language, context, ok := extractHeredoc(rawCommand)
	if !ok {
		return ExtractedCode{}, false
	}
	return ExtractedCode{Language: language, Code: code, Context: context}, true
}

func extractHeredoc(rawCommand string) (code, language, context string, ok bool) {
	lines := strings.Split(rawCommand, "\n")
	for i, line := range lines {
		opIdx, kind, found := findHeredocOpOutsideQuotes(line)
		if !found {
			continue
		}
		delim, stripTabs, ok := parseHeredocDelim(line[opIdx:], kind)
		if !ok {
			return "", "", "", false
		}
		before := line[:opIdx]
		language, context, classified := classifyHeredocConsumer(before)
		if !classified {
			return "", "", "", false
		}

		var body []string
		for _, bodyLine := range lines[i+1:] {
			candidate := strings.TrimRight(bodyLine, "\r")
			if stripTabs {
				candidate = strings.TrimLeft(candidate, "\t")
			}
			if candidate == delim {
				return strings.Join(body, "\n"), language, context, true
			}
			body = append(body, strings.TrimRight(bodyLine, "\r"))
			total := 0
			for _, b := range body {
				total += len(b) + 1
			}
			if total > MaxExtractedCodeBytes {
				return "", "", "", false
			}
		}
	}

	return extractHerestring(rawCommand)
}

func extractHerestring(rawCommand string) (code, language, context string, ok bool) {
	for _, line := range strings.Split(rawCommand, "\n") {
		opIdx, kind, found := findHerestringOpOutsideQuotes(line)
		if !found {
			continue
		}
		before := line[:opIdx]
		language, context, classified := classifyHeredocConsumer(before)
		if !classified {
			return "", "", "", false
		}
		payload, ok := parseHerestringPayload(line[opIdx:], kind)
		if !ok {
			return "", "", "", false
		}
		if len(payload) > MaxExtractedCodeBytes {
			return "", "", "", false
		}
		return payload, language, context, true
	}
	return "", "", "", false
}

// classifyHeredocConsumer is a small heuristic: only heredocs feeding
// python or a Django manage.py shell are recognised.
func classifyHeredocConsumer(beforeOp string) (language, context string, ok bool) {
	if strings.Contains(beforeOp, "manage.py") &&
		(strings.Contains(beforeOp, " shell") || strings.Contains(beforeOp, " shell_plus")) {
		return "python", djangoContext("heredoc/here-string stdin"), true
	}
	if strings.Contains(beforeOp, "python3") {
		return "python3", "", true
	}
	if strings.Contains(beforeOp, "python") {
		return "python", "", true
	}
	return "", "", false
}

type hereOpKind int

const (
	hereOpHeredocKeep hereOpKind = iota
	hereOpHeredocStripTabs
	hereOpHerestring
)

func findHeredocOpOutsideQuotes(line string) (int, hereOpKind, bool) {
	return findHereOpOutsideQuotes(line, false)
}

func findHerestringOpOutsideQuotes(line string) (int, hereOpKind, bool) {
	return findHereOpOutsideQuotes(line, true)
}

func findHereOpOutsideQuotes(line string, wantHerestring bool) (int, hereOpKind, bool) {
	b := []byte(line)
	inSingle, inDouble := false, false
	i := 0
	for i < len(b) {
		c := b[i]
		switch {
		case c == '\'' && !inDouble:
			inSingle = !inSingle
			i++
			continue
		case c == '"' && !inSingle:
			inDouble = !inDouble
			i++
			continue
		case c == '\\' && inDouble:
			i += 2
			continue
		}
		if !inSingle && !inDouble {
			if wantHerestring {
				if i+3 <= len(b) && string(b[i:i+3]) == "<<<" {
					return i, hereOpHerestring, true
				}
			} else if i+2 <= len(b) && string(b[i:i+2]) == "<<" {
				if i+2 < len(b) && b[i+2] == '<' {
					i += 3
					continue
				}
				if i+3 <= len(b) && string(b[i:i+3]) == "<<-" {
					return i, hereOpHeredocStripTabs, true
				}
				return i, hereOpHeredocKeep, true
			}
		}
		i++
	}
	return 0, 0, false
}

func parseHeredocDelim(opAndRest string, kind hereOpKind) (string, bool, bool) {
	if kind == hereOpHerestring {
		return "", false, false
	}
	stripTabs := kind == hereOpHeredocStripTabs
	rest := opAndRest
	switch {
	case strings.HasPrefix(rest, "<<-"):
		rest = rest[3:]
	case strings.HasPrefix(rest, "<<"):
		rest = rest[2:]
	default:
		return "", false, false
	}
	rest = strings.TrimLeft(rest, " \t")
	if rest == "" {
		return "", false, false
	}
	if inner, ok := strings.CutPrefix(rest, "'"); ok {
		end := strings.IndexByte(inner, '\'')
		if end < 0 {
			return "", false, false
		}
		return inner[:end], stripTabs, true
	}
	if inner, ok := strings.CutPrefix(rest, `"`); ok {
		end := strings.IndexByte(inner, '"')
		if end < 0 {
			return "", false, false
		}
		return inner[:end], stripTabs, true
	}
	end := strings.IndexFunc(rest, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ';' || r == '&' || r == '|'
	})
	if end < 0 {
		end = len(rest)
	}
	delim := rest[:end]
	if delim == "" {
		return "", false, false
	}
	return delim, stripTabs, true
}

func parseHerestringPayload(opAndRest string, kind hereOpKind) (string, bool) {
	if kind != hereOpHerestring {
		return "", false
	}
	rest, ok := strings.CutPrefix(opAndRest, "<<<")
	if !ok {
		return "", false
	}
	rest = strings.TrimLeft(rest, " \t")
	if inner, ok := strings.CutPrefix(rest, "'"); ok {
		end := strings.IndexByte(inner, '\'')
		if end < 0 {
			return "", false
		}
		return inner[:end], true
	}
	if inner, ok := strings.CutPrefix(rest, `"`); ok {
		end := strings.IndexByte(inner, '"')
		if end < 0 {
			return "", false
		}
		payload := inner[:end]
		if strings.ContainsAny(payload, "$`") {
			return "", false
		}
		return payload, true
	}
	return "", false
}

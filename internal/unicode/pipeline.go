package unicode

// ScanCommandName runs Scan over raw and reports whether a confusable
// character appears in or before the first whitespace-delimited token —
// the position that would be the executable name. Flags and arguments after
// that token are not screened. The pipeline folds a true result into an Ask
// candidate; it never produces a Deny on its own.
func ScanCommandName(raw string) (flagged bool, reason string) {
	result := Scan(raw)
	if result.Clean {
		return false, ""
	}

	nameEnd := len(raw)
	for i, r := range raw {
		if r == ' ' || r == '\t' {
			nameEnd = i
			break
		}
	}

	for _, threat := range result.Threats {
		if threat.Position > nameEnd {
			continue
		}
		switch threat.Category {
		case "zero-width", "bidi-override", "tag-char",
			"homoglyph-cyrillic", "homoglyph-greek":
			return true, "Unicode confusable characters detected near command name"
		}
	}

	return false, ""
}

package diagnostics

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/nix-mox/moxlint/internal/domain"
)

const (
	tryOpen    = "try {"
	catchBlock = "catch {"
)

var (
	todoPattern  = regexp.MustCompile(`(?i)#\s*TODO`)
	fixmePattern = regexp.MustCompile(`(?i)#\s*FIXME`)

	dangerousCommands = []string{"rm -rf /", "sudo rm -rf"}
	hardcodedPrefixes = []string{"/home/", "/root/"}
)

// scanContext carries the document-wide facts some rules need. It is
// computed once per scan.
type scanContext struct {
	hasCatch bool
}

// rule inspects one line and returns at most one finding.
type rule struct {
	code        domain.Code
	severity    domain.Severity
	description string
	fixable     bool
	check       func(ctx scanContext, index int, line string) (domain.Finding, bool)
}

// RuleInfo describes a rule for documentation and configuration.
type RuleInfo struct {
	Code        domain.Code     `json:"code"`
	Severity    domain.Severity `json:"severity"`
	Description string          `json:"description"`
	Fixable     bool            `json:"fixable"`
}

var rules = []rule{
	{
		code:        domain.CodeTrailingWhitespace,
		severity:    domain.SeverityInfo,
		description: "line ends with a space or tab",
		fixable:     true,
		check:       checkTrailingWhitespace,
	},
	{
		code:        domain.CodeSecurity,
		severity:    domain.SeverityError,
		description: "line runs a command that can wipe the filesystem",
		check:       checkSecurity,
	},
	{
		code:        domain.CodeMissingErrorHandling,
		severity:    domain.SeverityWarning,
		description: "try block in a document that never catches",
		fixable:     true,
		check:       checkMissingErrorHandling,
	},
	{
		code:        domain.CodeHardcodedPath,
		severity:    domain.SeverityWarning,
		description: "line hardcodes a home directory",
		check:       checkHardcodedPath,
	},
	{
		code:        domain.CodeTodo,
		severity:    domain.SeverityInfo,
		description: "TODO comment",
		check:       checkTodo,
	},
	{
		code:        domain.CodeFixme,
		severity:    domain.SeverityWarning,
		description: "FIXME comment",
		check:       checkFixme,
	},
}

// Rules returns the rule table in evaluation order.
func Rules() []RuleInfo {
	out := make([]RuleInfo, 0, len(rules))
	for _, r := range rules {
		out = append(out, RuleInfo{
			Code:        r.code,
			Severity:    r.severity,
			Description: r.description,
			Fixable:     r.fixable,
		})
	}
	return out
}

// Scan runs every rule over every line of text. Findings are ordered by line
// and, within a line, by rule order. Scan keeps no state between calls.
func Scan(text string) []domain.Finding {
	return ScanDocument(domain.NewDocument(text))
}

// ScanDocument is Scan over an already split document.
func ScanDocument(doc domain.Document) []domain.Finding {
	if doc.LineCount() == 0 {
		return nil
	}

	ctx := scanContext{hasCatch: strings.Contains(doc.Text(), catchBlock)}

	var findings []domain.Finding
	for i, line := range doc.Lines() {
		for _, r := range rules {
			f, ok := r.check(ctx, i, line)
			if !ok {
				continue
			}
			f.Code = r.code
			f.Severity = r.severity
			findings = append(findings, f)
		}
	}
	return findings
}

func checkTrailingWhitespace(_ scanContext, index int, line string) (domain.Finding, bool) {
	if !strings.HasSuffix(line, " ") && !strings.HasSuffix(line, "\t") {
		return domain.Finding{}, false
	}
	trimmed := strings.TrimRightFunc(line, unicode.IsSpace)
	return domain.Finding{
		Line:    index,
		Start:   len(trimmed),
		End:     len(line),
		Message: "Trailing whitespace detected",
	}, true
}

func checkSecurity(_ scanContext, index int, line string) (domain.Finding, bool) {
	if !containsAny(line, dangerousCommands) {
		return domain.Finding{}, false
	}
	return fullLine(index, line, "Dangerous command detected: this could delete system files"), true
}

func checkMissingErrorHandling(ctx scanContext, index int, line string) (domain.Finding, bool) {
	if ctx.hasCatch || !strings.Contains(line, tryOpen) {
		return domain.Finding{}, false
	}
	return fullLine(index, line, "Try block without catch - consider adding error handling"), true
}

func checkHardcodedPath(_ scanContext, index int, line string) (domain.Finding, bool) {
	if !containsAny(line, hardcodedPrefixes) {
		return domain.Finding{}, false
	}
	return fullLine(index, line, "Hardcoded path detected - consider using environment variables"), true
}

func checkTodo(_ scanContext, index int, line string) (domain.Finding, bool) {
	return markerFinding(todoPattern, index, line, "TODO comment found")
}

func checkFixme(_ scanContext, index int, line string) (domain.Finding, bool) {
	return markerFinding(fixmePattern, index, line, "FIXME comment found - needs attention")
}

func markerFinding(re *regexp.Regexp, index int, line, msg string) (domain.Finding, bool) {
	loc := re.FindStringIndex(line)
	if loc == nil {
		return domain.Finding{}, false
	}
	return domain.Finding{Line: index, Start: loc[0], End: len(line), Message: msg}, true
}

func fullLine(index int, line, msg string) domain.Finding {
	return domain.Finding{Line: index, Start: 0, End: len(line), Message: msg}
}

func containsAny(line string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(line, n) {
			return true
		}
	}
	return false
}

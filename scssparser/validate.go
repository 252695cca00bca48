package scssparser

import (
	"fmt"
	"strings"
)

// Severity represents the severity level of a validation diagnostic.
type Severity int

const (
	// Error means the stylesheet will not compile cleanly.
	Error Severity = iota
	// Warning means the compiler will emit a deprecation or lint warning.
	Warning
	// Info is an informational note.
	Info
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "ERROR"
	case Warning:
		return "WARNING"
	case Info:
		return "INFO"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Diagnostic is a single validation finding.
type Diagnostic struct {
	Rule     string   // rule identifier (e.g., "mixed_decls")
	Severity Severity // ERROR, WARNING, or INFO
	Message  string   // human-readable description
	Pos      Position // location of the offending item
	Selector string   // enclosing selector (optional)
	Fix      string   // suggested fix (optional)
}

func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: %s", d.Severity, d.Rule, d.Message)
	if d.Pos.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", d.Pos.Line)
	}
	if d.Selector != "" {
		fmt.Fprintf(&b, " (selector: %s)", d.Selector)
	}
	if d.Fix != "" {
		fmt.Fprintf(&b, " -- fix: %s", d.Fix)
	}
	return b.String()
}

// LintRule is the interface for a single validation rule.
type LintRule interface {
	Name() string
	Apply(s *Stylesheet) []Diagnostic
}

// ValidationError is returned by ValidateOrError when error-severity diagnostics exist.
type ValidationError struct {
	Diagnostics []Diagnostic
}

func (e *ValidationError) Error() string {
	var msgs []string
	for _, d := range e.Diagnostics {
		msgs = append(msgs, d.String())
	}
	return fmt.Sprintf("validation failed with %d error(s):\n  %s", len(e.Diagnostics), strings.Join(msgs, "\n  "))
}

// Validate runs all built-in rules (and any extra rules) against the stylesheet.
// Returns all diagnostics regardless of severity.
func Validate(s *Stylesheet, extraRules ...LintRule) []Diagnostic {
	rules := builtInRules()
	rules = append(rules, extraRules...)

	var diagnostics []Diagnostic
	for _, rule := range rules {
		diagnostics = append(diagnostics, rule.Apply(s)...)
	}
	return diagnostics
}

// ValidateOrError runs Validate and returns an error if any error-severity
// diagnostics are found. Non-error diagnostics are still returned.
func ValidateOrError(s *Stylesheet, extraRules ...LintRule) ([]Diagnostic, error) {
	diagnostics := Validate(s, extraRules...)

	var errors []Diagnostic
	for _, d := range diagnostics {
		if d.Severity == Error {
			errors = append(errors, d)
		}
	}
	if len(errors) > 0 {
		return diagnostics, &ValidationError{Diagnostics: errors}
	}
	return diagnostics, nil
}

func builtInRules() []LintRule {
	return []LintRule{
		mixedDeclsRule{},
		declAfterIncludeRule{},
	}
}

// enclosingSelector returns the selector of the nearest rule containing n.
func enclosingSelector(n *Node) string {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind == NodeRule {
			return p.Selector()
		}
	}
	return ""
}

// --- mixed_decls ---

// mixedDeclsRule flags declarations that appear after a nested rule in the
// same block. Sass is changing how such declarations are ordered in the output.
type mixedDeclsRule struct{}

func (mixedDeclsRule) Name() string { return "mixed_decls" }

func (r mixedDeclsRule) Apply(s *Stylesheet) []Diagnostic {
	var diags []Diagnostic
	check := func(children []*Node) {
		seenNested := false
		for _, c := range children {
			switch {
			case c.Block:
				seenNested = true
			case c.Kind == NodeDeclaration && seenNested:
				diags = append(diags, Diagnostic{
					Rule:     r.Name(),
					Severity: Warning,
					Message:  fmt.Sprintf("declaration %q appears after a nested rule", c.Name),
					Pos:      c.Span.Start,
					Selector: enclosingSelector(c),
					Fix:      "move declarations above nested rules",
				})
			}
		}
	}
	check(s.Nodes)
	s.Walk(func(n *Node) bool {
		if n.Block {
			check(n.Children)
		}
		return true
	})
	return diags
}

// --- decl_after_include ---

type declAfterIncludeRule struct{}

func (declAfterIncludeRule) Name() string { return "decl_after_include" }

func (r declAfterIncludeRule) Apply(s *Stylesheet) []Diagnostic {
	var diags []Diagnostic
	s.Walk(func(n *Node) bool {
		if !n.Block {
			return true
		}
		seenInclude := false
		for _, c := range n.Children {
			switch {
			case c.Kind == NodeInclude:
				seenInclude = true
			case c.Kind == NodeDeclaration && seenInclude:
				diags = append(diags, Diagnostic{
					Rule:     r.Name(),
					Severity: Info,
					Message:  fmt.Sprintf("declaration %q follows an @include", c.Name),
					Pos:      c.Span.Start,
					Selector: enclosingSelector(c),
				})
			}
		}
		return true
	})
	return diags
}

// --- deprecated function ---

// DeprecatedFunctionRule flags every call to Function outside comments and strings.
type DeprecatedFunctionRule struct {
	Function    string
	Replacement string
}

// Name implements LintRule.
func (r DeprecatedFunctionRule) Name() string { return "deprecated_" + r.Function }

// Apply implements LintRule.
func (r DeprecatedFunctionRule) Apply(s *Stylesheet) []Diagnostic {
	tokens, err := Tokenize(s.Src)
	if err != nil {
		return []Diagnostic{{Rule: r.Name(), Severity: Error, Message: err.Error()}}
	}
	var diags []Diagnostic
	for _, tok := range tokens {
		if tok.Kind != TokenFunction || !strings.EqualFold(tok.FunctionName(), r.Function) {
			continue
		}
		d := Diagnostic{
			Rule:     r.Name(),
			Severity: Warning,
			Message:  fmt.Sprintf("%s() is deprecated", r.Function),
			Pos:      tok.Pos,
		}
		if r.Replacement != "" {
			d.Fix = fmt.Sprintf("use %s()", r.Replacement)
		}
		diags = append(diags, d)
	}
	return diags
}

package migrate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/martinemde/scssmigrate/scssparser"
)

// OpacityRewriter replaces calls to a deprecated color-with-opacity function
// (rgba) with a color-mutation call taking the base color and a named
// opacity argument:
//
//	rgba(255, 0, 0, 0.5)          -> color-mutate(#ff0000, opacity: 0.5)
//	rgba(vars.$accent-gold, 0.1)  -> color-mutate(vars.$accent-gold, opacity: 0.1)
//	rgba(#ffffff, 0.95)           -> color-mutate(#ffffff, opacity: 0.95)
//
// Calls of any other shape are left untouched and reported as findings.
type OpacityRewriter struct {
	Source string // deprecated function name, matched case-insensitively
	Target string // replacement function name
	Param  string // name of the opacity argument
	// EnsureUse names a module that must be loaded with @use when at least
	// one call was rewritten (e.g. "sass:color"). Empty disables the check.
	EnsureUse string
}

// Name implements Pass.
func (r *OpacityRewriter) Name() string { return "rewrite_opacity" }

// Apply implements Pass.
func (r *OpacityRewriter) Apply(doc *Document) error {
	tokens, err := scssparser.Tokenize(doc.Src)
	if err != nil {
		return fmt.Errorf("tokenizing %s: %w", doc.Path, err)
	}

	var edits []edit
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok.Kind != scssparser.TokenFunction || !strings.EqualFold(tok.FunctionName(), r.Source) {
			continue
		}
		args, closeIdx, ok := splitArgs(tokens, i)
		if !ok {
			r.reportUnrecognized(doc, tok, "unterminated call")
			continue
		}
		original := string(doc.Src[tok.Pos.Offset:tokens[closeIdx].End.Offset])
		color, opacity, reason := r.classify(args)
		if reason != "" {
			// Leave the call as is, but keep scanning inside it so nested
			// calls still get a chance to match.
			r.reportUnrecognized(doc, tok, fmt.Sprintf("%s in %s", reason, original))
			continue
		}
		replacement := fmt.Sprintf("%s(%s, %s: %s)", r.Target, color, r.Param, opacity)
		edits = append(edits, edit{start: tok.Pos.Offset, end: tokens[closeIdx].End.Offset, text: replacement})
		doc.emit(CallRewrittenEvent(tok.Pos.Line, original, replacement))
		i = closeIdx
	}

	doc.Src = applyEdits(doc.Src, edits)
	doc.Stats.CallsRewritten += len(edits)

	if len(edits) > 0 && r.EnsureUse != "" {
		return r.ensureUse(doc)
	}
	return nil
}

func (r *OpacityRewriter) reportUnrecognized(doc *Document, tok scssparser.Token, detail string) {
	doc.Report(Finding{
		Pass: r.Name(),
		Diagnostic: scssparser.Diagnostic{
			Rule:     "unrecognized_call",
			Severity: scssparser.Warning,
			Message:  fmt.Sprintf("%s() left unchanged: %s", tok.FunctionName(), detail),
			Pos:      tok.Pos,
		},
	})
}

// splitArgs collects the comma-separated arguments of the call whose function
// token is at tokens[start]. It returns the index of the closing paren.
func splitArgs(tokens []scssparser.Token, start int) ([][]scssparser.Token, int, bool) {
	var args [][]scssparser.Token
	var current []scssparser.Token
	depth := 0
	for i := start + 1; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok.Kind {
		case scssparser.TokenEOF:
			return nil, 0, false
		case scssparser.TokenFunction, scssparser.TokenLParen, scssparser.TokenLBracket:
			depth++
		case scssparser.TokenRParen, scssparser.TokenRBracket:
			if depth == 0 {
				return append(args, current), i, true
			}
			depth--
		case scssparser.TokenComma:
			if depth == 0 {
				args = append(args, current)
				current = nil
				continue
			}
		}
		current = append(current, tok)
	}
	return nil, 0, false
}

// classify returns the color and opacity text for a recognized call, or a
// non-empty reason when the arguments have an unsupported shape.
func (r *OpacityRewriter) classify(args [][]scssparser.Token) (string, string, string) {
	var color string
	switch len(args) {
	case 4:
		var channels [3]int
		for i := 0; i < 3; i++ {
			v, ok := channelValue(args[i])
			if !ok {
				return "", "", fmt.Sprintf("channel %d is not an integer in [0,255]", i+1)
			}
			channels[i] = v
		}
		color = fmt.Sprintf("#%02x%02x%02x", channels[0], channels[1], channels[2])
	case 2:
		c, ok := baseColor(args[0])
		if !ok {
			return "", "", "color is neither a hex literal nor a namespaced variable"
		}
		color = c
	default:
		return "", "", fmt.Sprintf("%d arguments", len(args))
	}

	opacity, ok := opacityValue(args[len(args)-1])
	if !ok {
		return "", "", "opacity is not a number in [0,1]"
	}
	return color, opacity, ""
}

func singleToken(arg []scssparser.Token, kind scssparser.TokenKind) (string, bool) {
	if len(arg) != 1 || arg[0].Kind != kind {
		return "", false
	}
	return arg[0].Literal, true
}

func channelValue(arg []scssparser.Token) (int, bool) {
	lit, ok := singleToken(arg, scssparser.TokenNumber)
	if !ok || !isDigits(lit) {
		return 0, false
	}
	v, err := strconv.Atoi(lit)
	if err != nil || v > 255 {
		return 0, false
	}
	return v, true
}

// opacityValue accepts unitless numbers in [0,1] and returns them verbatim.
func opacityValue(arg []scssparser.Token) (string, bool) {
	lit, ok := singleToken(arg, scssparser.TokenNumber)
	if !ok || strings.Trim(lit, "0123456789.") != "" {
		return "", false
	}
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil || v > 1 {
		return "", false
	}
	return lit, true
}

// baseColor accepts a #rgb or #rrggbb literal, or a namespaced variable
// reference (ns.$name) written without spaces.
func baseColor(arg []scssparser.Token) (string, bool) {
	if lit, ok := singleToken(arg, scssparser.TokenHash); ok {
		hex := lit[1:]
		if (len(hex) == 3 || len(hex) == 6) && isHex(hex) {
			return lit, true
		}
		return "", false
	}
	if len(arg) != 3 ||
		arg[0].Kind != scssparser.TokenIdent ||
		arg[1].Kind != scssparser.TokenDot ||
		arg[2].Kind != scssparser.TokenVariable {
		return "", false
	}
	if arg[0].End.Offset != arg[1].Pos.Offset || arg[1].End.Offset != arg[2].Pos.Offset {
		return "", false
	}
	return arg[0].Literal + "." + arg[2].Literal, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'f') && !(c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

// ensureUse inserts `@use "<module>";` at the top of the document unless a
// top-level @use already loads the module.
func (r *OpacityRewriter) ensureUse(doc *Document) error {
	sheet, err := doc.Parse()
	if err != nil {
		return err
	}
	for _, n := range sheet.Nodes {
		if n.Kind != scssparser.NodeAtRule || n.Name != "use" {
			continue
		}
		if strings.Contains(n.Prelude, `"`+r.EnsureUse+`"`) || strings.Contains(n.Prelude, `'`+r.EnsureUse+`'`) {
			return nil
		}
	}
	line := fmt.Sprintf("@use %q;\n", r.EnsureUse)
	doc.Src = append([]byte(line), doc.Src...)
	doc.Stats.UsesInserted++
	return nil
}

package markup

import (
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Declaration is one property: value pair from an inline style attribute.
type Declaration struct {
	Property string
	Value    string
}

// ParseDeclarations tokenizes an inline style attribute. Property names are lowercased;
// values keep their case but lose surrounding whitespace and any !important suffix.
// Malformed input yields the declarations parsed before the error.
func ParseDeclarations(style string) []Declaration {
	if strings.TrimSpace(style) == "" {
		return nil
	}
	p := css.NewParser(parse.NewInputString(style), true)
	var out []Declaration
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			return out
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			var sb strings.Builder
			for _, v := range p.Values() {
				sb.Write(v.Data)
			}
			val := strings.TrimSpace(sb.String())
			val = strings.TrimSpace(strings.TrimSuffix(val, "!important"))
			out = append(out, Declaration{
				Property: strings.ToLower(strings.TrimSpace(string(data))),
				Value:    val,
			})
		}
	}
}

// FormatDeclarations is the inverse of ParseDeclarations.
func FormatDeclarations(decls []Declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.Property+": "+d.Value)
	}
	return strings.Join(parts, "; ")
}

// StyleValue returns the last value declared for property.
func StyleValue(decls []Declaration, property string) (string, bool) {
	for i := len(decls) - 1; i >= 0; i-- {
		if decls[i].Property == property {
			return decls[i].Value, true
		}
	}
	return "", false
}

// SetStyle replaces (or appends) property in the style attribute of n.
// An empty value removes the property.
func SetStyle(n *Node, property, value string) {
	decls := ParseDeclarations(AttrVal(n, "style"))
	kept := decls[:0]
	for _, d := range decls {
		if d.Property != property {
			kept = append(kept, d)
		}
	}
	if value != "" {
		kept = append(kept, Declaration{Property: property, Value: value})
	}
	if len(kept) == 0 {
		RemoveAttr(n, "style")
		return
	}
	SetAttr(n, "style", FormatDeclarations(kept))
}

// RemoveStyles drops every listed property from the style attribute of n.
func RemoveStyles(n *Node, properties ...string) {
	for _, p := range properties {
		SetStyle(n, p, "")
	}
}

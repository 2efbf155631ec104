// condition/template.go
package condition

import "regexp"

/*
 * Template-syntax transformer.
 *
 * Converts between a JSONLogic variable reference and its {{path}} display
 * form. Consulted by both directions only when Options.UseTemplateSyntax is
 * set: the serializer demotes {{path}} operands to raw string literals
 * (substitution deferred to the consumer's template engine) and the parser
 * promotes var nodes back to display form for data authored before template
 * mode existed.
 */

// displayPattern matches the {{path}} display form, tolerating whitespace
// inside the braces.
var displayPattern = regexp.MustCompile(`^\{\{\s*(.+?)\s*\}\}$`)

// ToDisplayString wraps a variable path in the {{path}} display form.
func ToDisplayString(varPath string) string {
	return "{{" + varPath + "}}"
}

// FromDisplayString extracts the variable path from a {{path}} display
// string. Reports ok=false when text is not in display form.
func FromDisplayString(text string) (string, bool) {
	m := displayPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

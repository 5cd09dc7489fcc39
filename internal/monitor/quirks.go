package monitor

import "strings"

// Quirks are per-model behavior flags, evaluated once at detection. Call
// sites branch on the flags, never on model strings.
type Quirks struct {
	// UnreliableRead marks models that misreport their active input after a
	// software-initiated switch; the record's tracked value is ground truth.
	UnreliableRead bool
	// BlindMacroOnly marks models with no direct input API at all, reachable
	// only through remote-control emulation or the cloud.
	BlindMacroOnly bool
}

type quirkRule struct {
	match  func(model string) bool
	quirks Quirks
}

// quirkRules is the declarative model→quirks table. Matching on free-text
// model names is fragile but functionally required: the hardware offers no
// better identity.
var quirkRules = []quirkRule{
	// Samsung Odyssey G8 class: smart-TV OS, lies about (or hides) its input.
	{match: modelContains("ODYSSEY", "G8", "LS32BG85"), quirks: Quirks{UnreliableRead: true, BlindMacroOnly: true}},
	// AOC C24G2U reports the pre-switch input for a while after switching.
	{match: modelContains("C24G2U"), quirks: Quirks{UnreliableRead: true}},
}

// QuirksFor evaluates the rule table for a model string.
func QuirksFor(model string) Quirks {
	for _, rule := range quirkRules {
		if rule.match(model) {
			return rule.quirks
		}
	}
	return Quirks{}
}

// modelContains matches when any of the substrings appears in the model
// name, case-insensitively.
func modelContains(subs ...string) func(string) bool {
	return func(model string) bool {
		upper := strings.ToUpper(model)
		for _, sub := range subs {
			if strings.Contains(upper, sub) {
				return true
			}
		}
		return false
	}
}

// Package match pairs the diagnostics of two scans of the same project,
// typically at two commits, deciding which warnings survived, which are new
// and which went away.
package match

import (
	"sort"
	"strings"

	"github.com/morozRed/sigtrack/internal/diagnostic"
)

// Comparer decides whether an old and a new diagnostic report the same
// problem. Callers only hand it pairs whose files already correspond.
type Comparer interface {
	AreSame(old, new diagnostic.Diagnostic) bool
}

// ComparerFunc adapts a function to Comparer.
type ComparerFunc func(old, new diagnostic.Diagnostic) bool

func (f ComparerFunc) AreSame(old, new diagnostic.Diagnostic) bool {
	return f(old, new)
}

// Exact matches diagnostics that did not move: same type, same position and
// same message. File names are not compared so renamed files still match.
func Exact() Comparer {
	return ComparerFunc(func(old, new diagnostic.Diagnostic) bool {
		if old.Line == diagnostic.NoPosition || new.Line == diagnostic.NoPosition {
			return false
		}
		if !old.SameType(new) {
			return false
		}
		return old.RefersToSameSource(new)
	})
}

// BySignature matches diagnostics of the same type whose signatures are
// the same under the old signature's policy. Unsigned diagnostics never
// match.
func BySignature() Comparer {
	return ComparerFunc(func(old, new diagnostic.Diagnostic) bool {
		if old.Signature == nil || new.Signature == nil {
			return false
		}
		if !old.SameType(new) {
			return false
		}
		return old.Signature.AreSame(new.Signature)
	})
}

// Problem matches diagnostics of the same type by their first message line,
// ignoring position. Some checks need their message normalized first.
func Problem() Comparer {
	return ComparerFunc(func(old, new diagnostic.Diagnostic) bool {
		if !old.SameType(new) {
			return false
		}
		if old.Type() == "MissingOverride" {
			return sameMissingOverride(briefMessage(old), briefMessage(new))
		}
		return normalizedMessage(old) == normalizedMessage(new)
	})
}

// Any matches when at least one of comparers does.
func Any(comparers ...Comparer) Comparer {
	return ComparerFunc(func(old, new diagnostic.Diagnostic) bool {
		for _, c := range comparers {
			if c.AreSame(old, new) {
				return true
			}
		}
		return false
	})
}

// Conditional uses ifTrue for old diagnostics accepted by pred and ifFalse
// for the rest.
func Conditional(pred func(diagnostic.Diagnostic) bool, ifTrue, ifFalse Comparer) Comparer {
	return ComparerFunc(func(old, new diagnostic.Diagnostic) bool {
		if pred(old) {
			return ifTrue.AreSame(old, new)
		}
		return ifFalse.AreSame(old, new)
	})
}

// OfType is a Conditional predicate selecting diagnostics by check name.
func OfType(types ...string) func(diagnostic.Diagnostic) bool {
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return func(d diagnostic.Diagnostic) bool {
		_, ok := set[d.Type()]
		return ok
	}
}

func briefMessage(d diagnostic.Diagnostic) string {
	return d.Description().Message
}

func normalizedMessage(d diagnostic.Diagnostic) string {
	switch d.Type() {
	case "FunctionalInterfaceClash":
		lines := strings.Split(d.Message, "\n")
		sort.Strings(lines)
		return strings.Join(lines, "\n")
	case "UngroupedOverloads":
		// The message embeds line numbers.
		return ""
	default:
		return briefMessage(d)
	}
}

// sameMissingOverride treats "AbstractCollection" and "Set" flavors of the
// message as the same problem when they name the same method.
func sameMissingOverride(oldMsg, newMsg string) bool {
	flipped := (strings.Contains(oldMsg, "AbstractCollection") && strings.Contains(newMsg, "Set")) ||
		(strings.Contains(oldMsg, "Set") && strings.Contains(newMsg, "AbstractCollection"))
	if !flipped {
		return oldMsg == newMsg
	}
	return firstWord(oldMsg) == firstWord(newMsg)
}

// firstWord is the method name in a MissingOverride message.
func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

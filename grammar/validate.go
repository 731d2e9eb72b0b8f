package grammar

import grammarschool "github.com/Conceptual-Machines/grammar-school-go"

// validate records every structural problem of the grammar: a missing start
// rule, dangling references, regexes in rule bodies, terminals that cannot
// compile or that match nothing, and left recursion the parser could not
// terminate on.
func validate(d *Definition, problems *findings) {
	if d.Rule(StartRuleName) == nil {
		problems.add(grammarschool.Position{}, "missing start rule %q", StartRuleName)
	}

	ignored := make(map[string]bool, len(d.ignored))
	for _, name := range d.ignored {
		ignored[name] = true
	}

	for _, r := range d.rules {
		r.Expr.walk(func(e *Expr) bool {
			switch e.Kind {
			case ExprRef:
				switch {
				case d.ruleIndex[e.Name] != nil:
				case d.termIndex[e.Name] != nil:
					if ignored[e.Name] {
						problems.add(e.Pos, "rule %s references ignored terminal %s, which the tokenizer never emits", r.Name, e.Name)
					}
				default:
					problems.add(e.Pos, "rule %s references undefined name %s", r.Name, e.Name)
				}
			case ExprRegex:
				problems.add(e.Pos, "rule %s embeds a regex; regexes are only allowed in terminal definitions", r.Name)
			}
			return true
		})
		if leftRecursive(r) {
			problems.add(r.Pos, "rule %s is left-recursive; use repetition instead", r.Name)
		}
	}

	for _, t := range d.terminals {
		refFree := true
		t.Expr.walk(func(e *Expr) bool {
			if e.Kind == ExprRef {
				problems.add(e.Pos, "terminal %s may not reference other definitions", t.Name)
				refFree = false
			}
			return true
		})
		if !refFree {
			continue
		}
		re, err := compileTerminal(t.Expr)
		if err != nil {
			problems.add(t.Pos, "terminal %s has an invalid pattern: %v", t.Name, err)
			continue
		}
		if re.MatchString("") {
			problems.add(t.Pos, "terminal %s matches the empty string", t.Name)
		}
	}
}

// leftRecursive reports whether r can reach itself without consuming a
// token at the leftmost position. Indirect cycles through other rules are
// caught by the parser's recursion guard instead.
func leftRecursive(r *Rule) bool {
	found := false
	leftmost(r.Expr, func(name string) {
		if name == r.Name {
			found = true
		}
	})
	return found
}

// leftmost reports every name that can begin a match of e, looking past
// nullable prefixes.
func leftmost(e *Expr, report func(string)) {
	switch e.Kind {
	case ExprRef:
		report(e.Name)
	case ExprSeq:
		for _, sub := range e.Subs {
			leftmost(sub, report)
			if !nullable(sub) {
				return
			}
		}
	case ExprAlt:
		for _, sub := range e.Subs {
			leftmost(sub, report)
		}
	case ExprOpt, ExprStar, ExprPlus:
		leftmost(e.Subs[0], report)
	}
}

// nullable reports whether e can match zero tokens. References count as
// consuming, which keeps the analysis local to one rule.
func nullable(e *Expr) bool {
	switch e.Kind {
	case ExprOpt, ExprStar:
		return true
	case ExprSeq:
		for _, sub := range e.Subs {
			if !nullable(sub) {
				return false
			}
		}
		return true
	case ExprAlt:
		for _, sub := range e.Subs {
			if nullable(sub) {
				return true
			}
		}
		return false
	case ExprPlus:
		return nullable(e.Subs[0])
	default:
		return false
	}
}

package grammar

import (
	"sync"

	grammarschool "github.com/Conceptual-Machines/grammar-school-go"
)

// Default returns the built-in call-chain grammar, parsed once from
// grammarschool.DefaultGrammarSource. Definitions are read-only, so the
// shared instance is safe to hand to any number of engines.
var Default = sync.OnceValue(func() *Definition {
	return MustParse(grammarschool.DefaultGrammarSource)
})

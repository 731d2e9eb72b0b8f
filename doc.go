// Package grammarschool holds the shared model of the Grammar School
// engine: source positions, the Value variant carried by every argument,
// the CallChain/Call/Arg AST that parsing produces, the Args map and Func
// handle passed to host methods, and the YAML grammar config loader.
//
// The stage packages (grammar, tokenizer, parser, resolver, interpreter)
// all build on this one. Hosts normally import the gs facade instead,
// which re-exports these types under shorter names.
package grammarschool

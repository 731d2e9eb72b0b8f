package grammarschool

// DefaultGrammarSource is the grammar hosts get when they do not bring their
// own: a script is a sequence of statements, each statement a dot-chained
// sequence of calls with positional and keyword arguments.
//
// Hosts extend it through GrammarConfig or replace it wholesale with their
// own grammar text. The grammar package parses this constant into the
// ready-made definition returned by grammar.Default.
const DefaultGrammarSource = `// Default call-chain grammar.
start: statement+
statement: call_chain
call_chain: call (DOT call)*
call: IDENTIFIER "(" args? ")"
args: arg (COMMA arg)*
arg: IDENTIFIER "=" value | value
value: function_ref | call | NUMBER | STRING | BOOLEAN | IDENTIFIER
function_ref: AT IDENTIFIER

DOT: "."
COMMA: ","
AT: "@"
NUMBER: /-?\d+(\.\d+)?/
STRING: /"([^"\\]|\\.)*"|'([^'\\]|\\.)*'/
BOOLEAN: "true" | "false"
IDENTIFIER: /[a-zA-Z_][a-zA-Z0-9_]*/

%import common.WS
%ignore WS
`

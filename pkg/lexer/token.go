package lexer

import "fmt"

// TokenType identifies the lexical category of a token.
type TokenType int

const (
	// Delimiters.
	LeftParen TokenType = iota
	RightParen
	LeftBrace
	RightBrace
	Comma
	Dot
	Semicolon
	Colon

	// One or two character operators.
	Minus
	MinusEqual
	Plus
	PlusEqual
	Slash
	SlashEqual
	Star
	StarEqual
	Percent
	PercentEqual
	Bang
	BangEqual
	Equal
	EqualEqual
	Greater
	GreaterEqual
	Less
	LessEqual
	AndAnd
	OrOr
	Question
	QuestionQuestion
	QuestionQuestionEqual

	// Literals.
	Identifier
	String
	Number

	// Keywords.
	And
	Between
	Break
	Class
	Const
	Continue
	Debug
	Else
	False
	For
	Fun
	If
	Loop
	Nil
	Pure
	Return
	Super
	This
	True
	Var
	While

	// Type names.
	TypeNumber
	TypeBool
	TypeString

	EOF
)

var tokenNames = map[TokenType]string{
	LeftParen:             "(",
	RightParen:            ")",
	LeftBrace:             "{",
	RightBrace:            "}",
	Comma:                 ",",
	Dot:                   ".",
	Semicolon:             ";",
	Colon:                 ":",
	Minus:                 "-",
	MinusEqual:            "-=",
	Plus:                  "+",
	PlusEqual:             "+=",
	Slash:                 "/",
	SlashEqual:            "/=",
	Star:                  "*",
	StarEqual:             "*=",
	Percent:               "%",
	PercentEqual:          "%=",
	Bang:                  "!",
	BangEqual:             "!=",
	Equal:                 "=",
	EqualEqual:            "==",
	Greater:               ">",
	GreaterEqual:          ">=",
	Less:                  "<",
	LessEqual:             "<=",
	AndAnd:                "&&",
	OrOr:                  "||",
	Question:              "?",
	QuestionQuestion:      "??",
	QuestionQuestionEqual: "??=",
	Identifier:            "identifier",
	String:                "string",
	Number:                "number",
	And:                   "and",
	Between:               "between",
	Break:                 "break",
	Class:                 "class",
	Const:                 "const",
	Continue:              "continue",
	Debug:                 "debug",
	Else:                  "else",
	False:                 "false",
	For:                   "for",
	Fun:                   "fun",
	If:                    "if",
	Loop:                  "loop",
	Nil:                   "nil",
	Pure:                  "pure",
	Return:                "return",
	Super:                 "super",
	This:                  "this",
	True:                  "true",
	Var:                   "var",
	While:                 "while",
	TypeNumber:            "Number",
	TypeBool:              "Bool",
	TypeString:            "String",
	EOF:                   "end of file",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token_%d", int(t))
}

var keywords = map[string]TokenType{
	"and":      And,
	"between":  Between,
	"break":    Break,
	"class":    Class,
	"const":    Const,
	"continue": Continue,
	"debug":    Debug,
	"else":     Else,
	"false":    False,
	"for":      For,
	"fun":      Fun,
	"if":       If,
	"loop":     Loop,
	"nil":      Nil,
	"pure":     Pure,
	"return":   Return,
	"super":    Super,
	"this":     This,
	"true":     True,
	"var":      Var,
	"while":    While,
	"Number":   TypeNumber,
	"Bool":     TypeBool,
	"String":   TypeString,
}

// Token is a single lexeme. Literal holds a float64 for numbers and the
// unquoted text for strings.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal any
	Line    int
}

func (t Token) String() string {
	if t.Literal != nil {
		return fmt.Sprintf("%d %s %q %v", t.Line, t.Type, t.Lexeme, t.Literal)
	}
	return fmt.Sprintf("%d %s %q", t.Line, t.Type, t.Lexeme)
}

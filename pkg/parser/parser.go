// Package parser builds klox syntax trees from lexer tokens.
package parser

import (
	"fmt"

	"klox/interpreter-go/pkg/ast"
	"klox/interpreter-go/pkg/lexer"
)

// ParseError reports malformed syntax. Where describes the offending token,
// e.g. "at end" or "at ')'".
type ParseError struct {
	Line    int
	Where   string
	Message string
}

func (e *ParseError) Error() string {
	if e.Where == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("line %d %s: %s", e.Line, e.Where, e.Message)
}

const maxArguments = 255

// Parser is a recursive-descent parser over a token slice. The loop and
// function depth counters gate break, continue and return.
type Parser struct {
	tokens        []lexer.Token
	current       int
	errors        []*ParseError
	loopDepth     int
	functionDepth int
}

// Parse consumes tokens (which must end with EOF) and returns the program.
// A statement that fails to parse is replaced by an EmptyStatement.
func Parse(tokens []lexer.Token) ([]ast.Statement, []*ParseError) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != lexer.EOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens, lexer.Token{Type: lexer.EOF, Line: line})
	}
	p := &Parser{tokens: tokens}
	var stmts []ast.Statement
	for !p.isAtEnd() {
		stmts = append(stmts, p.declaration())
	}
	return stmts, p.errors
}

// ParseSource scans and parses src in one step.
func ParseSource(src string) ([]ast.Statement, []*lexer.ScanError, []*ParseError) {
	tokens, scanErrs := lexer.Scan(src)
	stmts, parseErrs := Parse(tokens)
	return stmts, scanErrs, parseErrs
}

func (p *Parser) declaration() ast.Statement {
	line := p.peek().Line
	stmt, err := p.declarationOrStatement()
	if err != nil {
		p.errors = append(p.errors, err)
		p.synchronize()
		return ast.NewEmptyStatement(line)
	}
	return stmt
}

// synchronize discards tokens until a likely statement boundary.
func (p *Parser) synchronize() {
	p.advance()
	for !p.isAtEnd() {
		if p.previous().Type == lexer.Semicolon {
			return
		}
		switch p.peek().Type {
		case lexer.Class, lexer.Fun, lexer.Pure, lexer.Var, lexer.Const, lexer.For, lexer.If,
			lexer.While, lexer.Loop, lexer.Return, lexer.Break, lexer.Continue, lexer.Debug:
			return
		}
		p.advance()
	}
}

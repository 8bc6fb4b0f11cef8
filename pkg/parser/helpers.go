package parser

import (
	"fmt"

	"klox/interpreter-go/pkg/lexer"
	"klox/interpreter-go/pkg/types"
)

func (p *Parser) match(kinds ...lexer.TokenType) bool {
	for _, kind := range kinds {
		if p.check(kind) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) check(kind lexer.TokenType) bool {
	if p.isAtEnd() {
		return kind == lexer.EOF
	}
	return p.peek().Type == kind
}

func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) isAtEnd() bool { return p.peek().Type == lexer.EOF }

func (p *Parser) peek() lexer.Token { return p.tokens[p.current] }

func (p *Parser) previous() lexer.Token {
	if p.current == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.current-1]
}

func (p *Parser) consume(kind lexer.TokenType, message string) (lexer.Token, *ParseError) {
	if p.check(kind) {
		return p.advance(), nil
	}
	return lexer.Token{}, p.errorAt(p.peek(), message)
}

func (p *Parser) errorAt(tok lexer.Token, message string) *ParseError {
	where := fmt.Sprintf("at '%s'", tok.Lexeme)
	if tok.Type == lexer.EOF {
		where = "at end"
	}
	return &ParseError{Line: tok.Line, Where: where, Message: message}
}

// report records an error that does not require resynchronizing.
func (p *Parser) report(tok lexer.Token, message string) {
	p.errors = append(p.errors, p.errorAt(tok, message))
}

// annotation parses an optional `: Type` suffix.
func (p *Parser) annotation() (types.Type, *ParseError) {
	if !p.match(lexer.Colon) {
		return nil, nil
	}
	if p.match(lexer.TypeNumber, lexer.TypeBool, lexer.TypeString, lexer.Nil) {
		t, _ := types.FromAnnotation(p.previous().Lexeme)
		return t, nil
	}
	return nil, p.errorAt(p.peek(), "expected type name after ':'")
}

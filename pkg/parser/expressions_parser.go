package parser

import (
	"strings"

	"klox/interpreter-go/pkg/ast"
	"klox/interpreter-go/pkg/lexer"
)

func (p *Parser) expression() (ast.Expression, *ParseError) {
	return p.assignment()
}

// assignment is right associative. Compound operators desugar into a plain
// assignment of a binary (or ??) expression over the target.
func (p *Parser) assignment() (ast.Expression, *ParseError) {
	expr, err := p.ternary()
	if err != nil {
		return nil, err
	}
	if !p.match(lexer.Equal, lexer.PlusEqual, lexer.MinusEqual, lexer.StarEqual,
		lexer.SlashEqual, lexer.PercentEqual, lexer.QuestionQuestionEqual) {
		return expr, nil
	}
	op := p.previous()
	value, err := p.assignment()
	if err != nil {
		return nil, err
	}
	target, ok := expr.(*ast.Variable)
	if !ok {
		return nil, p.errorAt(op, "invalid assignment target")
	}
	switch op.Type {
	case lexer.Equal:
	case lexer.QuestionQuestionEqual:
		value = ast.NewLogical("??", ast.NewVariable(target.Name, target.Line()), value, op.Line)
	default:
		operator := strings.TrimSuffix(op.Lexeme, "=")
		value = ast.NewBinary(operator, ast.NewVariable(target.Name, target.Line()), value, op.Line)
	}
	return ast.NewAssign(target.Name, value, op.Line), nil
}

// ternary parses `a ? b : c` and `a between b and c`. Neither form chains.
func (p *Parser) ternary() (ast.Expression, *ParseError) {
	expr, err := p.coalesce()
	if err != nil {
		return nil, err
	}
	switch {
	case p.match(lexer.Question):
		op := p.previous()
		middle, err := p.coalesce()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.Colon, "expected ':' in conditional expression"); err != nil {
			return nil, err
		}
		right, err := p.coalesce()
		if err != nil {
			return nil, err
		}
		if p.check(lexer.Question) {
			return nil, p.errorAt(p.peek(), "conditional expressions cannot be chained")
		}
		return ast.NewConditional(expr, middle, right, op.Line), nil
	case p.match(lexer.Between):
		op := p.previous()
		lower, err := p.coalesce()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.And, "expected 'and' in between expression"); err != nil {
			return nil, err
		}
		upper, err := p.coalesce()
		if err != nil {
			return nil, err
		}
		if p.check(lexer.Between) {
			return nil, p.errorAt(p.peek(), "between expressions cannot be chained")
		}
		return ast.NewBetween(expr, lower, upper, op.Line), nil
	}
	return expr, nil
}

type operandParser func() (ast.Expression, *ParseError)

type nodeBuilder func(op string, left, right ast.Expression, line int) ast.Expression

func logical(op string, left, right ast.Expression, line int) ast.Expression {
	return ast.NewLogical(op, left, right, line)
}

func binary(op string, left, right ast.Expression, line int) ast.Expression {
	return ast.NewBinary(op, left, right, line)
}

// leftAssoc parses one left-associative precedence level.
func (p *Parser) leftAssoc(next operandParser, build nodeBuilder, ops ...lexer.TokenType) (ast.Expression, *ParseError) {
	expr, err := next()
	if err != nil {
		return nil, err
	}
	for p.match(ops...) {
		op := p.previous()
		right, err := next()
		if err != nil {
			return nil, err
		}
		expr = build(op.Lexeme, expr, right, op.Line)
	}
	return expr, nil
}

func (p *Parser) coalesce() (ast.Expression, *ParseError) {
	return p.leftAssoc(p.or, logical, lexer.QuestionQuestion)
}

func (p *Parser) or() (ast.Expression, *ParseError) {
	return p.leftAssoc(p.and, logical, lexer.OrOr)
}

func (p *Parser) and() (ast.Expression, *ParseError) {
	return p.leftAssoc(p.equality, logical, lexer.AndAnd)
}

func (p *Parser) equality() (ast.Expression, *ParseError) {
	return p.leftAssoc(p.comparison, binary, lexer.EqualEqual, lexer.BangEqual)
}

func (p *Parser) comparison() (ast.Expression, *ParseError) {
	return p.leftAssoc(p.additive, binary, lexer.Less, lexer.LessEqual, lexer.Greater, lexer.GreaterEqual)
}

func (p *Parser) additive() (ast.Expression, *ParseError) {
	return p.leftAssoc(p.multiplicative, binary, lexer.Plus, lexer.Minus)
}

func (p *Parser) multiplicative() (ast.Expression, *ParseError) {
	return p.leftAssoc(p.unary, binary, lexer.Star, lexer.Slash, lexer.Percent)
}

func (p *Parser) unary() (ast.Expression, *ParseError) {
	if p.match(lexer.Bang, lexer.Minus) {
		op := p.previous()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(op.Lexeme, operand, op.Line), nil
	}
	return p.call()
}

func (p *Parser) call() (ast.Expression, *ParseError) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.match(lexer.LeftParen) {
		if expr, err = p.finishCall(expr); err != nil {
			return nil, err
		}
	}
	return expr, nil
}

func (p *Parser) finishCall(callee ast.Expression) (ast.Expression, *ParseError) {
	args := []ast.Expression{}
	if !p.check(lexer.RightParen) {
		for {
			if len(args) >= maxArguments {
				p.report(p.peek(), "can't have more than 255 arguments")
			}
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(lexer.Comma) {
				break
			}
		}
	}
	paren, err := p.consume(lexer.RightParen, "expected ')' after arguments")
	if err != nil {
		return nil, err
	}
	return ast.NewCall(callee, args, paren.Line), nil
}

func (p *Parser) primary() (ast.Expression, *ParseError) {
	tok := p.peek()
	switch tok.Type {
	case lexer.False:
		p.advance()
		return ast.NewLiteral(false, tok.Line), nil
	case lexer.True:
		p.advance()
		return ast.NewLiteral(true, tok.Line), nil
	case lexer.Nil:
		p.advance()
		return ast.NewLiteral(nil, tok.Line), nil
	case lexer.Number, lexer.String:
		p.advance()
		return ast.NewLiteral(tok.Literal, tok.Line), nil
	case lexer.Identifier:
		p.advance()
		return ast.NewVariable(tok.Lexeme, tok.Line), nil
	case lexer.LeftParen:
		p.advance()
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.RightParen, "expected ')' after expression"); err != nil {
			return nil, err
		}
		return ast.NewGrouping(inner, tok.Line), nil
	case lexer.This, lexer.Super:
		return nil, p.errorAt(tok, "'"+tok.Lexeme+"' is reserved")
	}
	return nil, p.errorAt(tok, "expected expression")
}

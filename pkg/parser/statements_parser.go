package parser

import (
	"klox/interpreter-go/pkg/ast"
	"klox/interpreter-go/pkg/lexer"
)

func (p *Parser) declarationOrStatement() (ast.Statement, *ParseError) {
	switch {
	case p.match(lexer.Var):
		return p.varDeclaration()
	case p.match(lexer.Const):
		return p.constDeclaration()
	case p.match(lexer.Pure):
		if _, err := p.consume(lexer.Fun, "expected 'fun' after 'pure'"); err != nil {
			return nil, err
		}
		return p.function(true)
	case p.match(lexer.Fun):
		return p.function(false)
	case p.match(lexer.Class):
		return nil, p.errorAt(p.previous(), "classes are not supported")
	}
	return p.statement()
}

func (p *Parser) varDeclaration() (ast.Statement, *ParseError) {
	name, err := p.consume(lexer.Identifier, "expected variable name")
	if err != nil {
		return nil, err
	}
	annotation, err := p.annotation()
	if err != nil {
		return nil, err
	}
	var init ast.Expression
	if p.match(lexer.Equal) {
		if init, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(lexer.Semicolon, "expected ';' after variable declaration"); err != nil {
		return nil, err
	}
	return ast.NewVar(name.Lexeme, init, annotation, name.Line), nil
}

func (p *Parser) constDeclaration() (ast.Statement, *ParseError) {
	name, err := p.consume(lexer.Identifier, "expected constant name")
	if err != nil {
		return nil, err
	}
	annotation, err := p.annotation()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.Equal, "const declaration requires an initializer"); err != nil {
		return nil, err
	}
	init, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.Semicolon, "expected ';' after constant declaration"); err != nil {
		return nil, err
	}
	return ast.NewConst(name.Lexeme, init, annotation, name.Line), nil
}

func (p *Parser) function(pure bool) (ast.Statement, *ParseError) {
	name, err := p.consume(lexer.Identifier, "expected function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.LeftParen, "expected '(' after function name"); err != nil {
		return nil, err
	}
	var params []*ast.Parameter
	if !p.check(lexer.RightParen) {
		for {
			if len(params) >= maxArguments {
				p.report(p.peek(), "can't have more than 255 parameters")
			}
			param, err := p.consume(lexer.Identifier, "expected parameter name")
			if err != nil {
				return nil, err
			}
			annotation, err := p.annotation()
			if err != nil {
				return nil, err
			}
			params = append(params, ast.NewParameter(param.Lexeme, annotation, param.Line))
			if !p.match(lexer.Comma) {
				break
			}
		}
	}
	if _, err := p.consume(lexer.RightParen, "expected ')' after parameters"); err != nil {
		return nil, err
	}
	returns, err := p.annotation()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.LeftBrace, "expected '{' before function body"); err != nil {
		return nil, err
	}

	enclosingLoops := p.loopDepth
	p.loopDepth = 0
	p.functionDepth++
	defer func() {
		p.functionDepth--
		p.loopDepth = enclosingLoops
	}()

	body, err := p.block()
	if err != nil {
		return nil, err
	}
	fn := ast.NewFunction(name.Lexeme, params, body, pure, name.Line)
	fn.ReturnAnnotation = returns
	return fn, nil
}

func (p *Parser) statement() (ast.Statement, *ParseError) {
	switch {
	case p.match(lexer.If):
		return p.ifStatement()
	case p.match(lexer.While):
		return p.whileStatement()
	case p.match(lexer.For):
		return p.forStatement()
	case p.match(lexer.Loop):
		return p.loopStatement()
	case p.match(lexer.Break):
		return p.jump(func(line int) ast.Statement { return ast.NewBreak(line) }, "'break'")
	case p.match(lexer.Continue):
		return p.jump(func(line int) ast.Statement { return ast.NewContinue(line) }, "'continue'")
	case p.match(lexer.Return):
		return p.returnStatement()
	case p.match(lexer.Debug):
		keyword := p.previous()
		if _, err := p.consume(lexer.Semicolon, "expected ';' after 'debug'"); err != nil {
			return nil, err
		}
		return ast.NewDebug(keyword.Line), nil
	case p.match(lexer.LeftBrace):
		line := p.previous().Line
		stmts, err := p.block()
		if err != nil {
			return nil, err
		}
		return ast.NewBlock(stmts, line), nil
	}
	return p.expressionStatement()
}

// block parses declarations up to and including the closing brace.
func (p *Parser) block() ([]ast.Statement, *ParseError) {
	stmts := []ast.Statement{}
	for !p.check(lexer.RightBrace) && !p.isAtEnd() {
		stmts = append(stmts, p.declaration())
	}
	if _, err := p.consume(lexer.RightBrace, "expected '}' after block"); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) ifStatement() (ast.Statement, *ParseError) {
	line := p.previous().Line
	if _, err := p.consume(lexer.LeftParen, "expected '(' after 'if'"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.RightParen, "expected ')' after if condition"); err != nil {
		return nil, err
	}
	then, err := p.statement()
	if err != nil {
		return nil, err
	}
	var otherwise ast.Statement
	if p.match(lexer.Else) {
		if otherwise, err = p.statement(); err != nil {
			return nil, err
		}
	}
	return ast.NewIf(cond, then, otherwise, line), nil
}

func (p *Parser) whileStatement() (ast.Statement, *ParseError) {
	line := p.previous().Line
	if _, err := p.consume(lexer.LeftParen, "expected '(' after 'while'"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.RightParen, "expected ')' after condition"); err != nil {
		return nil, err
	}
	body, err := p.loopBody()
	if err != nil {
		return nil, err
	}
	return ast.NewWhile(cond, body, nil, line), nil
}

// forStatement desugars `for (init; cond; incr) body` into an optional block
// holding init followed by a While that carries incr.
func (p *Parser) forStatement() (ast.Statement, *ParseError) {
	line := p.previous().Line
	if _, err := p.consume(lexer.LeftParen, "expected '(' after 'for'"); err != nil {
		return nil, err
	}

	var init ast.Statement
	var err *ParseError
	switch {
	case p.match(lexer.Semicolon):
	case p.match(lexer.Var):
		init, err = p.varDeclaration()
	default:
		init, err = p.expressionStatement()
	}
	if err != nil {
		return nil, err
	}

	var cond ast.Expression
	if !p.check(lexer.Semicolon) {
		if cond, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(lexer.Semicolon, "expected ';' after loop condition"); err != nil {
		return nil, err
	}
	if cond == nil {
		cond = ast.NewLiteral(true, line)
	}

	var increment ast.Expression
	if !p.check(lexer.RightParen) {
		if increment, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(lexer.RightParen, "expected ')' after for clauses"); err != nil {
		return nil, err
	}

	body, err := p.loopBody()
	if err != nil {
		return nil, err
	}
	loop := ast.NewWhile(cond, body, increment, line)
	if init == nil {
		return loop, nil
	}
	return ast.NewBlock([]ast.Statement{init, loop}, line), nil
}

func (p *Parser) loopStatement() (ast.Statement, *ParseError) {
	line := p.previous().Line
	body, err := p.loopBody()
	if err != nil {
		return nil, err
	}
	return ast.NewWhile(ast.NewLiteral(true, line), body, nil, line), nil
}

func (p *Parser) loopBody() (ast.Statement, *ParseError) {
	p.loopDepth++
	defer func() { p.loopDepth-- }()
	return p.statement()
}

func (p *Parser) jump(build func(int) ast.Statement, keyword string) (ast.Statement, *ParseError) {
	tok := p.previous()
	if p.loopDepth == 0 {
		return nil, p.errorAt(tok, keyword+" used outside of a loop")
	}
	if _, err := p.consume(lexer.Semicolon, "expected ';' after "+keyword); err != nil {
		return nil, err
	}
	return build(tok.Line), nil
}

func (p *Parser) returnStatement() (ast.Statement, *ParseError) {
	keyword := p.previous()
	if p.functionDepth == 0 {
		return nil, p.errorAt(keyword, "cannot return from top-level code")
	}
	var value ast.Expression = ast.NewLiteral(nil, keyword.Line)
	if !p.check(lexer.Semicolon) {
		var err *ParseError
		if value, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(lexer.Semicolon, "expected ';' after return value"); err != nil {
		return nil, err
	}
	return ast.NewReturn(value, keyword.Line), nil
}

func (p *Parser) expressionStatement() (ast.Statement, *ParseError) {
	line := p.peek().Line
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.Semicolon, "expected ';' after expression"); err != nil {
		return nil, err
	}
	return ast.NewExpressionStatement(expr, line), nil
}

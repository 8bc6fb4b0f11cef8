// Package lexer turns klox source text into tokens.
package lexer

import (
	"fmt"
	"strconv"
)

// ScanError is a lexical problem. Scanning continues after one is recorded.
type ScanError struct {
	Line    int
	Message string
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

type scanner struct {
	source  []rune
	start   int
	current int
	line    int
	tokens  []Token
	errors  []*ScanError
}

// Scan tokenizes source in a single pass. The returned tokens always end with
// an EOF token.
func Scan(source string) ([]Token, []*ScanError) {
	s := &scanner{source: []rune(source), line: 1}
	for !s.atEnd() {
		s.start = s.current
		s.scanToken()
	}
	s.tokens = append(s.tokens, Token{Type: EOF, Line: s.line})
	return s.tokens, s.errors
}

func (s *scanner) scanToken() {
	c := s.advance()
	switch c {
	case '(':
		s.add(LeftParen)
	case ')':
		s.add(RightParen)
	case '{':
		s.add(LeftBrace)
	case '}':
		s.add(RightBrace)
	case ',':
		s.add(Comma)
	case '.':
		s.add(Dot)
	case ';':
		s.add(Semicolon)
	case ':':
		s.add(Colon)
	case '-':
		s.addEither('=', MinusEqual, Minus)
	case '+':
		s.addEither('=', PlusEqual, Plus)
	case '*':
		s.addEither('=', StarEqual, Star)
	case '%':
		s.addEither('=', PercentEqual, Percent)
	case '!':
		s.addEither('=', BangEqual, Bang)
	case '=':
		s.addEither('=', EqualEqual, Equal)
	case '<':
		s.addEither('=', LessEqual, Less)
	case '>':
		s.addEither('=', GreaterEqual, Greater)
	case '&':
		if s.match('&') {
			s.add(AndAnd)
		} else {
			s.error("expected second '&'")
		}
	case '|':
		if s.match('|') {
			s.add(OrOr)
		} else {
			s.error("expected second '|'")
		}
	case '?':
		switch {
		case s.match('?'):
			s.addEither('=', QuestionQuestionEqual, QuestionQuestion)
		default:
			s.add(Question)
		}
	case '/':
		switch {
		case s.match('/'):
			for s.peek() != '\n' && !s.atEnd() {
				s.advance()
			}
		case s.match('='):
			s.add(SlashEqual)
		default:
			s.add(Slash)
		}
	case ' ', '\r', '\t':
	case '\n':
		s.line++
	case '"':
		s.string()
	default:
		switch {
		case isDigit(c):
			s.number()
		case isAlpha(c):
			s.identifier()
		default:
			s.error(fmt.Sprintf("unexpected character %q", c))
		}
	}
}

func (s *scanner) string() {
	startLine := s.line
	for s.peek() != '"' && !s.atEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.atEnd() {
		s.errors = append(s.errors, &ScanError{Line: startLine, Message: "unterminated string"})
		return
	}
	s.advance()
	value := string(s.source[s.start+1 : s.current-1])
	s.addLiteral(String, value)
}

func (s *scanner) number() {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	text := string(s.source[s.start:s.current])
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		s.error(fmt.Sprintf("invalid number %q", text))
		return
	}
	s.addLiteral(Number, value)
}

func (s *scanner) identifier() {
	for isAlphaNumeric(s.peek()) {
		s.advance()
	}
	text := string(s.source[s.start:s.current])
	if kind, ok := keywords[text]; ok {
		s.add(kind)
		return
	}
	s.add(Identifier)
}

func (s *scanner) atEnd() bool { return s.current >= len(s.source) }

func (s *scanner) advance() rune {
	c := s.source[s.current]
	s.current++
	return c
}

func (s *scanner) match(expected rune) bool {
	if s.atEnd() || s.source[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *scanner) peek() rune {
	if s.atEnd() {
		return 0
	}
	return s.source[s.current]
}

func (s *scanner) peekNext() rune {
	if s.current+1 >= len(s.source) {
		return 0
	}
	return s.source[s.current+1]
}

func (s *scanner) add(kind TokenType) {
	s.addLiteral(kind, nil)
}

func (s *scanner) addEither(next rune, matched, single TokenType) {
	if s.match(next) {
		s.add(matched)
		return
	}
	s.add(single)
}

func (s *scanner) addLiteral(kind TokenType, literal any) {
	s.tokens = append(s.tokens, Token{
		Type:    kind,
		Lexeme:  string(s.source[s.start:s.current]),
		Literal: literal,
		Line:    s.line,
	})
}

func (s *scanner) error(message string) {
	s.errors = append(s.errors, &ScanError{Line: s.line, Message: message})
}

func isDigit(c rune) bool { return c >= '0' && c <= '9' }

func isAlpha(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isAlphaNumeric(c rune) bool { return isAlpha(c) || isDigit(c) }

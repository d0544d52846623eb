package kicadsexp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// TokenType represents the type of a token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenLeftParen
	TokenRightParen
	TokenSymbol
	TokenString
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenLeftParen:
		return "'('"
	case TokenRightParen:
		return "')'"
	case TokenSymbol:
		return "symbol"
	case TokenString:
		return "string"
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Token is a lexical token with the line it started on.
type Token struct {
	Type  TokenType
	Value string
	Line  int
}

// Lexer tokenizes S-expressions from an io.Reader without buffering the
// whole input.
type Lexer struct {
	reader *bufio.Reader
	line   int
}

// NewLexer creates a new lexer
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{reader: bufio.NewReader(r), line: 1}
}

// NextToken reads the next token from the input.
func (l *Lexer) NextToken() (Token, error) {
	if err := l.skipBlank(); err != nil {
		if errors.Is(err, io.EOF) {
			return Token{Type: TokenEOF, Line: l.line}, nil
		}
		return Token{}, err
	}

	ch, err := l.read()
	if err != nil {
		return Token{}, err
	}

	switch ch {
	case '(':
		return Token{Type: TokenLeftParen, Value: "(", Line: l.line}, nil
	case ')':
		return Token{Type: TokenRightParen, Value: ")", Line: l.line}, nil
	case '"':
		return l.readString()
	}

	l.unread()
	return l.readSymbol()
}

// skipBlank consumes whitespace. '#' starts an ordinary atom ("#PWR01",
// "#NC"), never a comment.
func (l *Lexer) skipBlank() error {
	for {
		ch, err := l.read()
		if err != nil {
			return err
		}
		if !unicode.IsSpace(ch) {
			l.unread()
			return nil
		}
	}
}

func (l *Lexer) read() (rune, error) {
	ch, _, err := l.reader.ReadRune()
	if err == nil && ch == '\n' {
		l.line++
	}
	return ch, err
}

func (l *Lexer) unread() {
	_ = l.reader.UnreadRune()
}

// readString reads the body of a quoted string; the opening quote is
// already consumed.
func (l *Lexer) readString() (Token, error) {
	start := l.line
	var b strings.Builder
	for {
		ch, err := l.read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Token{}, fmt.Errorf("line %d: unterminated string", start)
			}
			return Token{}, err
		}

		switch ch {
		case '"':
			return Token{Type: TokenString, Value: b.String(), Line: start}, nil
		case '\\':
			next, err := l.read()
			if err != nil {
				return Token{}, fmt.Errorf("line %d: unexpected EOF after backslash", l.line)
			}
			switch next {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteRune(next)
			}
		default:
			b.WriteRune(ch)
		}
	}
}

// readSymbol reads an unquoted atom up to the next delimiter.
func (l *Lexer) readSymbol() (Token, error) {
	var b strings.Builder
	for {
		ch, err := l.read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Token{}, err
		}
		if unicode.IsSpace(ch) || ch == '(' || ch == ')' || ch == '"' {
			if ch == '\n' {
				l.line--
			}
			l.unread()
			break
		}
		b.WriteRune(ch)
	}
	return Token{Type: TokenSymbol, Value: b.String(), Line: l.line}, nil
}

package size

import (
	"strings"

	"github.com/canopy-ui/canopy/pkg/errors"
)

// calcNode is one node of a parsed calc() expression: either a leaf size
// value or a binary operation.
type calcNode struct {
	op    byte // 0 for leaves, otherwise one of + - * /
	leaf  Value
	left  *calcNode
	right *calcNode
	pos   int // byte offset in the full expression, for errors
}

// calcToken kinds.
const (
	tokenNumber = iota
	tokenOp
	tokenLParen
	tokenRParen
	tokenKeyword
)

type calcToken struct {
	kind int
	text string
	pos  int
}

// tokenizeCalc splits the inner expression of calc() into tokens.
// offset is the position of the inner expression within the full source,
// so reported positions point into the original "calc(...)" text.
func tokenizeCalc(inner, src string, offset int) ([]calcToken, error) {
	var tokens []calcToken
	i := 0
	for i < len(inner) {
		c := inner[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(':
			tokens = append(tokens, calcToken{kind: tokenLParen, text: "(", pos: offset + i})
			i++
		case c == ')':
			tokens = append(tokens, calcToken{kind: tokenRParen, text: ")", pos: offset + i})
			i++
		case c == '+' || c == '*' || c == '/':
			tokens = append(tokens, calcToken{kind: tokenOp, text: string(c), pos: offset + i})
			i++
		case c == '-':
			// A minus directly followed by a digit after an operator or at
			// the start is a negative number, not a subtraction.
			prevIsOperand := len(tokens) > 0 &&
				(tokens[len(tokens)-1].kind == tokenNumber ||
					tokens[len(tokens)-1].kind == tokenKeyword ||
					tokens[len(tokens)-1].kind == tokenRParen)
			if prevIsOperand {
				tokens = append(tokens, calcToken{kind: tokenOp, text: "-", pos: offset + i})
				i++
				break
			}
			start := i
			i++
			i = scanTerm(inner, i)
			tokens = append(tokens, calcToken{kind: tokenNumber, text: inner[start:i], pos: offset + start})
		case c >= '0' && c <= '9' || c == '.':
			start := i
			i = scanTerm(inner, i)
			tokens = append(tokens, calcToken{kind: tokenNumber, text: inner[start:i], pos: offset + start})
		case isAlpha(c):
			start := i
			for i < len(inner) && isAlpha(inner[i]) {
				i++
			}
			tokens = append(tokens, calcToken{kind: tokenKeyword, text: inner[start:i], pos: offset + start})
		default:
			return nil, &errors.SizeParseError{
				Input:  src,
				Pos:    offset + i,
				Reason: "unexpected character " + string(c),
			}
		}
	}
	return tokens, nil
}

// scanTerm advances past the digits and unit suffix of a numeric term.
func scanTerm(s string, i int) int {
	for i < len(s) {
		c := s[i]
		if c >= '0' && c <= '9' || c == '.' || c == '%' || isAlpha(c) {
			i++
			continue
		}
		break
	}
	return i
}

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// calcParser is a recursive-descent parser over the token stream.
type calcParser struct {
	tokens []calcToken
	next   int
	src    string
}

// parseCalc parses the inner text of a calc() expression.
func parseCalc(inner, src string) (*calcNode, error) {
	tokens, err := tokenizeCalc(inner, src, len("calc("))
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, &errors.SizeParseError{Input: src, Pos: len("calc("), Reason: "empty expression"}
	}
	p := &calcParser{tokens: tokens, src: src}
	node, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if p.next != len(p.tokens) {
		tok := p.tokens[p.next]
		return nil, &errors.SizeParseError{
			Input:  src,
			Pos:    tok.pos,
			Reason: "unexpected " + tok.text,
		}
	}
	return node, nil
}

// parseSum handles + and -, the lowest precedence level.
func (p *calcParser) parseSum() (*calcNode, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for p.next < len(p.tokens) {
		tok := p.tokens[p.next]
		if tok.kind != tokenOp || (tok.text != "+" && tok.text != "-") {
			break
		}
		p.next++
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		left = &calcNode{op: tok.text[0], left: left, right: right, pos: tok.pos}
	}
	return left, nil
}

// parseProduct handles * and /, binding tighter than + and -.
func (p *calcParser) parseProduct() (*calcNode, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	for p.next < len(p.tokens) {
		tok := p.tokens[p.next]
		if tok.kind != tokenOp || (tok.text != "*" && tok.text != "/") {
			break
		}
		p.next++
		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		left = &calcNode{op: tok.text[0], left: left, right: right, pos: tok.pos}
	}
	return left, nil
}

func (p *calcParser) parseOperand() (*calcNode, error) {
	if p.next >= len(p.tokens) {
		return nil, &errors.SizeParseError{
			Input:  p.src,
			Pos:    len(p.src),
			Reason: "expression ends with an operator",
		}
	}
	tok := p.tokens[p.next]
	p.next++
	switch tok.kind {
	case tokenLParen:
		node, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if p.next >= len(p.tokens) || p.tokens[p.next].kind != tokenRParen {
			return nil, &errors.SizeParseError{Input: p.src, Pos: tok.pos, Reason: "unclosed parenthesis"}
		}
		p.next++
		return node, nil
	case tokenNumber:
		leaf, err := parseScalar(tok.text, p.src, tok.pos)
		if err != nil {
			return nil, err
		}
		return &calcNode{leaf: leaf, pos: tok.pos}, nil
	case tokenKeyword:
		switch strings.ToLower(tok.text) {
		case "fill":
			return &calcNode{leaf: Fill, pos: tok.pos}, nil
		case "auto":
			return &calcNode{leaf: Auto, pos: tok.pos}, nil
		}
		return nil, &errors.SizeParseError{
			Input:  p.src,
			Pos:    tok.pos,
			Reason: "unknown unit or keyword " + tok.text,
		}
	default:
		return nil, &errors.SizeParseError{
			Input:  p.src,
			Pos:    tok.pos,
			Reason: "unexpected " + tok.text,
		}
	}
}

// eval resolves each operand against the context, then applies the
// arithmetic. Unit mixing is allowed because operands are reduced to pixels
// before combination.
func (n *calcNode) eval(ctx Context, src string) (float64, error) {
	if n == nil {
		return 0, &errors.SizeParseError{Input: src, Pos: -1, Reason: "empty expression"}
	}
	if n.op == 0 {
		return n.leaf.Resolve(ctx)
	}
	left, err := n.left.eval(ctx, src)
	if err != nil {
		return 0, err
	}
	right, err := n.right.eval(ctx, src)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case '+':
		return left + right, nil
	case '-':
		return left - right, nil
	case '*':
		return left * right, nil
	case '/':
		if right == 0 {
			return 0, &errors.SizeParseError{Input: src, Pos: n.pos, Reason: "division by zero"}
		}
		return left / right, nil
	}
	return 0, &errors.SizeParseError{Input: src, Pos: n.pos, Reason: "unknown operator"}
}

// Package parser implements a recursive-descent parser that turns a
// LedgerLite SQL token stream into one of the five ast.Statement
// variants (spec §4.2).
package parser

import (
	"fmt"
	"strconv"

	"ledgerlite/internal/ast"
	"ledgerlite/internal/lexer"
	"ledgerlite/internal/token"
	"ledgerlite/internal/types"
)

// Error is a parse failure carrying a human-readable reason. No
// partial AST is ever returned alongside it.
type Error struct {
	Line    int
	Column  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// Parser consumes a token stream and produces an ast.Statement.
type Parser struct {
	tokens []token.Token
	pos    int
}

// Parse tokenizes and parses a single SQL statement.
func Parse(sql string) (ast.Statement, error) {
	tokens, err := lexer.Tokenize(sql)
	if err != nil {
		if lexErr, ok := err.(*lexer.Error); ok {
			return nil, &Error{Line: lexErr.Line, Column: lexErr.Column, Message: lexErr.Message}
		}
		return nil, err
	}
	p := &Parser{tokens: tokens}
	return p.parseStatement()
}

func (p *Parser) current() token.Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return token.Token{Type: token.EOF}
}

func (p *Parser) advance() token.Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) errorf(format string, args ...any) error {
	cur := p.current()
	return &Error{Line: cur.Line, Column: cur.Column, Message: fmt.Sprintf(format, args...)}
}

func (p *Parser) expect(tt token.Type) (token.Token, error) {
	cur := p.current()
	if cur.Type != tt {
		return token.Token{}, p.errorf("expected %s, got %s", tt, cur.Type)
	}
	return p.advance(), nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	if p.current().Type == token.EOF {
		return nil, p.errorf("empty input")
	}
	switch p.current().Type {
	case token.CREATE:
		return p.parseCreateTable()
	case token.INSERT:
		return p.parseInsert()
	case token.SELECT:
		return p.parseSelect()
	case token.UPDATE:
		return p.parseUpdate()
	case token.DELETE:
		return p.parseDelete()
	default:
		return nil, p.errorf("unexpected statement type: %s", p.current().Type)
	}
}

var dataTypeTokens = map[token.Type]types.DataType{
	token.INT:         types.Int,
	token.TEXT:        types.Text,
	token.FLOAT_T:     types.Float,
	token.BOOLEAN:     types.Boolean,
	token.TIMESTAMP_T: types.Timestamp,
}

var dataTypeNames = map[string]types.DataType{
	"INT":       types.Int,
	"TEXT":      types.Text,
	"FLOAT":     types.Float,
	"BOOLEAN":   types.Boolean,
	"TIMESTAMP": types.Timestamp,
}

func (p *Parser) parseDataType() (types.DataType, error) {
	cur := p.current()
	if dt, ok := dataTypeTokens[cur.Type]; ok {
		p.advance()
		return dt, nil
	}
	if cur.Type == token.IDENT {
		if dt, ok := dataTypeNames[upper(cur.Literal)]; ok {
			p.advance()
			return dt, nil
		}
		return "", p.errorf("invalid data type: %s", cur.Literal)
	}
	return "", p.errorf("expected data type, got %s", cur.Type)
}

func upper(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

func (p *Parser) parseCreateTable() (*ast.CreateTable, error) {
	if _, err := p.expect(token.CREATE); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.TABLE); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	var columns []ast.ColumnDef
	for {
		colTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		dt, err := p.parseDataType()
		if err != nil {
			return nil, err
		}

		col := ast.ColumnDef{Name: colTok.Literal, DataType: dt}
		for p.current().Type != token.COMMA && p.current().Type != token.RPAREN {
			switch p.current().Type {
			case token.PRIMARY:
				p.advance()
				if _, err := p.expect(token.KEY); err != nil {
					return nil, err
				}
				col.IsPrimaryKey = true
			case token.UNIQUE:
				p.advance()
				col.IsUnique = true
			default:
				return nil, p.errorf("unexpected token in column definition: %s", p.current().Type)
			}
		}
		columns = append(columns, col)

		if p.current().Type == token.RPAREN {
			break
		}
		if _, err := p.expect(token.COMMA); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	p.consumeOptionalSemicolon()

	return &ast.CreateTable{Table: nameTok.Literal, Columns: columns}, nil
}

func (p *Parser) consumeOptionalSemicolon() {
	if p.current().Type == token.SEMICOLON {
		p.advance()
	}
}

func (p *Parser) parseValue() (any, error) {
	cur := p.current()
	switch cur.Type {
	case token.STRING:
		p.advance()
		return cur.Literal, nil
	case token.NUMBER:
		p.advance()
		n, err := strconv.Atoi(cur.Literal)
		if err != nil {
			return nil, p.errorf("invalid integer literal %q", cur.Literal)
		}
		return n, nil
	case token.FLOAT_LIT:
		p.advance()
		f, err := strconv.ParseFloat(cur.Literal, 64)
		if err != nil {
			return nil, p.errorf("invalid float literal %q", cur.Literal)
		}
		return f, nil
	case token.NULL:
		p.advance()
		return nil, nil
	case token.IDENT:
		switch upper(cur.Literal) {
		case "TRUE":
			p.advance()
			return true, nil
		case "FALSE":
			p.advance()
			return false, nil
		}
		return nil, p.errorf("unexpected value token: %s", cur.Type)
	default:
		return nil, p.errorf("unexpected value token: %s", cur.Type)
	}
}

func (p *Parser) parseInsert() (*ast.Insert, error) {
	if _, err := p.expect(token.INSERT); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.INTO); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.VALUES); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	var values []any
	for {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
		if p.current().Type == token.RPAREN {
			break
		}
		if _, err := p.expect(token.COMMA); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	p.consumeOptionalSemicolon()

	return &ast.Insert{Table: nameTok.Literal, Values: values}, nil
}

// parseQualifiable parses either a bare identifier or a table.column
// qualified identifier.
func (p *Parser) parseQualifiable() (ast.SelectColumn, error) {
	first, err := p.expect(token.IDENT)
	if err != nil {
		return ast.SelectColumn{}, err
	}
	if p.current().Type == token.DOT {
		p.advance()
		col, err := p.expect(token.IDENT)
		if err != nil {
			return ast.SelectColumn{}, err
		}
		return ast.SelectColumn{Table: first.Literal, Name: col.Literal}, nil
	}
	return ast.SelectColumn{Name: first.Literal}, nil
}

func (p *Parser) parseSelect() (*ast.Select, error) {
	if _, err := p.expect(token.SELECT); err != nil {
		return nil, err
	}

	stmt := &ast.Select{}
	if p.current().Type == token.ASTERISK {
		p.advance()
		stmt.Star = true
	} else {
		for {
			col, err := p.parseQualifiable()
			if err != nil {
				return nil, err
			}
			stmt.Columns = append(stmt.Columns, col)
			if p.current().Type != token.COMMA {
				break
			}
			p.advance()
		}
	}

	if _, err := p.expect(token.FROM); err != nil {
		return nil, err
	}
	tableTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	stmt.Table = tableTok.Literal

	if p.current().Type == token.WHERE {
		where, err := p.parseWhereClause()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	for p.current().Type == token.INNER || p.current().Type == token.JOIN {
		join, err := p.parseJoin()
		if err != nil {
			return nil, err
		}
		stmt.Joins = append(stmt.Joins, join)
	}

	p.consumeOptionalSemicolon()
	return stmt, nil
}

func (p *Parser) parseJoin() (ast.Join, error) {
	if p.current().Type == token.INNER {
		p.advance()
	}
	if _, err := p.expect(token.JOIN); err != nil {
		return ast.Join{}, err
	}
	tableTok, err := p.expect(token.IDENT)
	if err != nil {
		return ast.Join{}, err
	}
	if _, err := p.expect(token.ON); err != nil {
		return ast.Join{}, err
	}
	left, err := p.parseQualifiable()
	if err != nil {
		return ast.Join{}, err
	}
	if _, err := p.expect(token.EQ); err != nil {
		return ast.Join{}, err
	}
	right, err := p.parseQualifiable()
	if err != nil {
		return ast.Join{}, err
	}
	return ast.Join{Table: tableTok.Literal, Left: left, Right: right}, nil
}

func (p *Parser) parseWhereClause() (ast.WhereNode, error) {
	if _, err := p.expect(token.WHERE); err != nil {
		return nil, err
	}
	return p.parseOrExpr()
}

func (p *Parser) parseOrExpr() (ast.WhereNode, error) {
	left, err := p.parseAndExpr()
	if err != nil {
		return nil, err
	}
	for p.current().Type == token.OR {
		p.advance()
		right, err := p.parseAndExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.BoolExpr{Op: ast.Or, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAndExpr() (ast.WhereNode, error) {
	left, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	for p.current().Type == token.AND {
		p.advance()
		right, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		left = &ast.BoolExpr{Op: ast.And, Left: left, Right: right}
	}
	return left, nil
}

var cmpOps = map[token.Type]ast.CmpOp{
	token.EQ:  ast.OpEq,
	token.NEQ: ast.OpNeq,
	token.LT:  ast.OpLt,
	token.LTE: ast.OpLte,
	token.GT:  ast.OpGt,
	token.GTE: ast.OpGte,
}

func (p *Parser) parseCondition() (ast.WhereNode, error) {
	colTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	op, ok := cmpOps[p.current().Type]
	if !ok {
		return nil, p.errorf("unsupported operator in WHERE clause: %s", p.current().Type)
	}
	p.advance()
	val, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return &ast.Condition{Column: colTok.Literal, Operator: op, Value: val}, nil
}

func (p *Parser) parseUpdate() (*ast.Update, error) {
	if _, err := p.expect(token.UPDATE); err != nil {
		return nil, err
	}
	tableTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SET); err != nil {
		return nil, err
	}

	var sets []ast.SetClause
	for {
		colTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.EQ); err != nil {
			return nil, err
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		sets = append(sets, ast.SetClause{Column: colTok.Literal, Value: val})
		if p.current().Type != token.COMMA {
			break
		}
		p.advance()
	}

	stmt := &ast.Update{Table: tableTok.Literal, Set: sets}
	if p.current().Type == token.WHERE {
		where, err := p.parseWhereClause()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	p.consumeOptionalSemicolon()
	return stmt, nil
}

func (p *Parser) parseDelete() (*ast.Delete, error) {
	if _, err := p.expect(token.DELETE); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.FROM); err != nil {
		return nil, err
	}
	tableTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}

	stmt := &ast.Delete{Table: tableTok.Literal}
	if p.current().Type == token.WHERE {
		where, err := p.parseWhereClause()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	p.consumeOptionalSemicolon()
	return stmt, nil
}

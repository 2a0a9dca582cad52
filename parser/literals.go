package parser

import (
	"strconv"

	"github.com/jarrettbillingsley/croc/lexer"
)

// parseIntLexeme/parseFloatLexeme decode the decimal form the lexer
// already computed into tok.PostComment (lexer.go normalizes hex/binary/
// decimal integers and exponent floats there to avoid re-parsing the raw
// lexeme twice).
func parseIntLexeme(tok lexer.Token) (int64, error) {
	return strconv.ParseInt(tok.PostComment, 10, 64)
}

func parseFloatLexeme(tok lexer.Token) (float64, error) {
	return strconv.ParseFloat(tok.PostComment, 64)
}

package parser

import "strings"

// Classify determines the statement kind from its leading significant
// tokens.  It scans for CREATE [OR REPLACE] [EDITIONABLE|NONEDITIONABLE]
// PROCEDURE/FUNCTION/PACKAGE/TRIGGER/TYPE, DECLARE, BEGIN and <<label>>.
// object names the created unit for CreateUnit ("PACKAGE BODY", ...).
// ok is false when the statement does not start with a word at all.
func Classify(tokens []Token) (kind StatementKind, object string, ok bool) {
	if len(tokens) == 0 {
		return Unclassified, "", true
	}

	switch tokens[0].Type {
	case KDeclare, KBegin, LabelOpen:
		return AnonymousBlock, "", true
	case KCreate:
		if object := createdUnit(tokens[1:]); object != "" {
			return CreateUnit, object, true
		}
		return SimpleStatement, "", true
	}

	if !tokens[0].IsWord() {
		return SimpleStatement, "", false
	}
	return SimpleStatement, "", true
}

// createdUnit skips past [OR REPLACE] [EDITIONABLE|NONEDITIONABLE] and
// returns the PL/SQL unit being created, or "" for any other CREATE.
func createdUnit(tokens []Token) string {
	i := 0
	if i < len(tokens) && tokens[i].Type == KOr {
		i++
		if i < len(tokens) && tokens[i].Type == KReplace {
			i++
		}
	}
	if i < len(tokens) && (tokens[i].Type == KEditionable || tokens[i].Type == KNoneditionable) {
		i++
	}
	if i >= len(tokens) {
		return ""
	}

	unit := strings.ToUpper(tokens[i].Text)
	switch tokens[i].Type {
	case KProcedure, KFunction, KTrigger:
		return unit
	case KPackage, KType:
		if i+1 < len(tokens) && tokens[i+1].Type == KBody {
			return unit + " BODY"
		}
		return unit
	default:
		return ""
	}
}

/*
 * FindDynamicSQL returns the token run of every EXECUTE IMMEDIATE statement
 * in a block body.  Each run starts at EXECUTE and ends before the first
 * ';' at parenthesis depth 0.
 *
 * This stands in for the generic PL/SQL statement parser: the body is not
 * otherwise interpreted.
 */
func FindDynamicSQL(tokens []Token) [][]Token {
	var runs [][]Token
	for i := 0; i+1 < len(tokens); i++ {
		if tokens[i].Type != KExecute || tokens[i+1].Type != KImmediate {
			continue
		}
		end := statementEnd(tokens, i+2)
		runs = append(runs, tokens[i:end])
		i = end
	}
	return runs
}

// statementEnd returns the index of the ';' at paren depth 0 at or after
// from, or len(tokens).
func statementEnd(tokens []Token, from int) int {
	depth := 0
	for i := from; i < len(tokens); i++ {
		switch tokens[i].Type {
		case TokenType('('):
			depth++
		case TokenType(')'):
			depth--
		case TokenType(';'):
			if depth <= 0 {
				return i
			}
		}
	}
	return len(tokens)
}

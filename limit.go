package proligent

import (
	"regexp"
	"strconv"
	"strings"

	perrors "github.com/jacoelho/proligent/errors"
)

// LimitExpression selects how a limit's bounds relate to the measured value X.
type LimitExpression uint8

const (
	LowerBoundLEQXLEQHigherBound LimitExpression = iota
	LowerBoundLEXLEQHigherBound
	LowerBoundLEQXLEHigherBound
	LowerBoundLEXLEHigherBound
	LowerBoundLEQX
	LowerBoundLEX
	XLEQHigherBound
	XLEHigherBound
	XEQHigherBound
	XNEQHigherBound
	XLEQLowerBoundOrHigherBoundLEQX
	XLELowerBoundOrHigherBoundLEQX
	XLEQLowerBoundOrHigherBoundLEX
	XLELowerBoundOrHigherBoundLEX
)

type limitForm struct {
	name     string
	template string
}

// Templates use the LOWERBOUND and HIGHERBOUND tokens. The mixed "OR"/"or"
// spelling is part of the document format.
var limitForms = [...]limitForm{
	LowerBoundLEQXLEQHigherBound:    {"LOWERBOUND_LEQ_X_LEQ_HIGHER_BOUND", "LOWERBOUND <= X <= HIGHERBOUND"},
	LowerBoundLEXLEQHigherBound:     {"LOWERBOUND_LE_X_LEQ_HIGHER_BOUND", "LOWERBOUND < X <= HIGHERBOUND"},
	LowerBoundLEQXLEHigherBound:     {"LOWERBOUND_LEQ_X_LE_HIGHER_BOUND", "LOWERBOUND <= X < HIGHERBOUND"},
	LowerBoundLEXLEHigherBound:      {"LOWERBOUND_LE_X_LE_HIGHER_BOUND", "LOWERBOUND < X < HIGHERBOUND"},
	LowerBoundLEQX:                  {"LOWERBOUND_LEQ_X", "LOWERBOUND <= X"},
	LowerBoundLEX:                   {"LOWERBOUND_LE_X", "LOWERBOUND < X"},
	XLEQHigherBound:                 {"X_LEQ_HIGHER_BOUND", "X <= HIGHERBOUND"},
	XLEHigherBound:                  {"X_LE_HIGHER_BOUND", "X < HIGHERBOUND"},
	XEQHigherBound:                  {"X_EQ_HIGHER_BOUND", "X == HIGHERBOUND"},
	XNEQHigherBound:                 {"X_NEQ_HIGHER_BOUND", "X != HIGHERBOUND"},
	XLEQLowerBoundOrHigherBoundLEQX: {"X_LEQ_LOWERBOUND_OR_HIGHERBOUND_LEQ_X", "X <= LOWERBOUND OR HIGHERBOUND <= X"},
	XLELowerBoundOrHigherBoundLEQX:  {"X_LE_LOWERBOUND_or_HIGHERBOUND_LEQ_X", "X < LOWERBOUND or HIGHERBOUND <= X"},
	XLEQLowerBoundOrHigherBoundLEX:  {"X_LEQ_LOWERBOUND_or_HIGHERBOUND_LE_X", "X <= LOWERBOUND or HIGHERBOUND < X"},
	XLELowerBoundOrHigherBoundLEX:   {"X_LE_LOWERBOUND_or_HIGHERBOUND_LE_X", "X < LOWERBOUND or HIGHERBOUND < X"},
}

var boundToken = regexp.MustCompile(`(?i)LOWERBOUND|HIGHERBOUND`)

// String returns the enumeration name of the expression.
func (e LimitExpression) String() string {
	if int(e) < len(limitForms) {
		return limitForms[e].name
	}
	return "LimitExpression(" + strconv.Itoa(int(e)) + ")"
}

// Template returns the expression template with its bound tokens.
func (e LimitExpression) Template() (string, error) {
	if int(e) >= len(limitForms) {
		return "", perrors.Newf(perrors.ErrInvalidExpression, "unknown limit expression %d", int(e))
	}
	return limitForms[e].template, nil
}

// ParseLimitExpression maps an enumeration name back to an expression, ignoring case.
func ParseLimitExpression(name string) (LimitExpression, error) {
	name = strings.TrimSpace(name)
	for i, form := range limitForms {
		if strings.EqualFold(form.name, name) {
			return LimitExpression(i), nil
		}
	}
	return 0, perrors.Newf(perrors.ErrInvalidExpression, "unknown limit expression %q", name)
}

// RenderLimit substitutes the bounds into the expression's template.
// An absent bound renders as an empty string.
func RenderLimit(expr LimitExpression, lower, higher Value) (string, error) {
	tmpl, err := expr.Template()
	if err != nil {
		return "", err
	}
	return boundToken.ReplaceAllStringFunc(tmpl, func(token string) string {
		if strings.EqualFold(token, "LOWERBOUND") {
			return lower.String()
		}
		return higher.String()
	}), nil
}

// Limit is the acceptance range attached to a measure.
type Limit struct {
	LowerBound  Value
	HigherBound Value
	Expression  LimitExpression
}

// NewLimit builds a limit from dynamically typed bounds; nil means absent.
func NewLimit(expr LimitExpression, lower, higher any) (Limit, error) {
	if _, err := expr.Template(); err != nil {
		return Limit{}, err
	}
	lo, err := ValueOf(lower)
	if err != nil {
		return Limit{}, err
	}
	hi, err := ValueOf(higher)
	if err != nil {
		return Limit{}, err
	}
	return Limit{Expression: expr, LowerBound: lo, HigherBound: hi}, nil
}

// Render returns the textual limit expression.
func (l Limit) Render() (string, error) {
	return RenderLimit(l.Expression, l.LowerBound, l.HigherBound)
}

// String renders the limit, or returns "" for an unknown expression.
func (l Limit) String() string {
	s, err := l.Render()
	if err != nil {
		return ""
	}
	return s
}

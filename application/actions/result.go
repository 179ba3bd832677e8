package actions

import (
	"strings"
	"unicode"

	pkgerrors "archive-backend/pkg/errors"
)

// Result is what every action returns. Errors never escape an action; they are carried here.
type Result struct {
	Data    any          `json:"data,omitempty"`
	Message string       `json:"message,omitempty"`
	Error   *ResultError `json:"error,omitempty"`
}

// ResultError is the structured failure of an action
type ResultError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Failed reports whether the action produced an error
func (r Result) Failed() bool {
	return r.Error != nil
}

// Failure converts err into a failed result for the given action.
// Application errors keep their code; anything else is reported as {ACTION}_FAILED.
func Failure(action string, err error) Result {
	code := FailureCode(action)
	if appErr := pkgerrors.GetAppError(err); appErr != nil && appErr.Code != "" {
		code = appErr.Code
	}
	msg := pkgerrors.Message(err)
	return Result{
		Message: msg,
		Error:   &ResultError{Code: code, Message: msg},
	}
}

// FailureCode turns an action name such as createArticle into CREATE_ARTICLE_FAILED
func FailureCode(action string) string {
	var b strings.Builder
	for i, r := range action {
		if unicode.IsUpper(r) && i > 0 {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	b.WriteString("_FAILED")
	return b.String()
}

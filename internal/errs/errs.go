// Package errs provides coded errors shared across recall's packages.
package errs

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/samber/oops"
)

// Code is the machine-readable identifier for an error, shaped
// area.object.reason.
type Code string

const (
	CodeStoreKindInvalid   Code = "store.kind.invalid"
	CodeStoreItemInvalid   Code = "store.item.invalid_input"
	CodeStoreIOFailure     Code = "store.io.failure"
	CodeStoreConfigInvalid Code = "store.config.invalid"

	CodeEmbedRequestInvalid  Code = "embed.request.invalid"
	CodeEmbedUpstreamFailure Code = "embed.upstream.failure"
	CodeEmbedResponseInvalid Code = "embed.response.invalid"

	CodeConfigLoadFailure          Code = "config.load.failure"
	CodeConfigValidateInvalidValue Code = "config.validate.invalid_value"
	CodeSecretInvalidInput         Code = "secret.uri.invalid"
	CodeSecretResolveFailure       Code = "secret.resolve.failure"

	CodePathOutsideRoot Code = "path.outside_root.denied"
	CodePathInvalid     Code = "path.resolve.invalid"

	CodeLegacyReadFailure Code = "legacy.read.failure"

	CodeRedactRulesInvalid Code = "redact.rules.invalid"

	CodeServerRequestInvalid Code = "server.request.invalid"
	CodeServerItemNotFound   Code = "server.item.not_found"
	CodeServerStartFailure   Code = "server.start.failure"
	CodeServerInternal       Code = "server.internal.failure"

	CodeCLIInputInvalid  Code = "cli.input.invalid"
	CodeCLIItemNotFound  Code = "cli.item.not_found"
	CodeCLIOutputFailure Code = "cli.output.failure"
)

// Attr is a structured key/value context attached to an error.
type Attr struct {
	Key   string
	Value any
}

// Field creates a structured error field.
func Field(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

func New(code Code, msg string, fields ...Attr) error {
	return oops.Code(code).With(flatten(fields)...).New(msg)
}

func Errorf(code Code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

func Wrap(err error, code Code, msg string, fields ...Attr) error {
	if err == nil {
		return nil
	}
	return oops.Code(code).With(flatten(fields)...).Wrapf(err, "%s", msg)
}

func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return oops.Code(code).Wrapf(err, format, args...)
}

// CodeOf returns the innermost code in err's chain, or "" for uncoded errors.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	switch c := oopsErr.Code().(type) {
	case Code:
		return c
	case string:
		return Code(c)
	case nil:
		return ""
	default:
		return Code(fmt.Sprintf("%v", c))
	}
}

// FieldsOf returns the structured context attached to err.
func FieldsOf(err error) map[string]any {
	if err == nil {
		return nil
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}
	return oopsErr.Context()
}

func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

func IsNotFound(err error) bool {
	return reason(CodeOf(err)) == "not_found"
}

func IsInvalidInput(err error) bool {
	switch reason(CodeOf(err)) {
	case "invalid", "invalid_input", "invalid_value":
		return true
	}
	return false
}

func IsDenied(err error) bool {
	return reason(CodeOf(err)) == "denied"
}

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	switch {
	case IsNotFound(err):
		return http.StatusNotFound
	case IsInvalidInput(err):
		return http.StatusBadRequest
	case IsDenied(err):
		return http.StatusForbidden
	case strings.HasSuffix(string(CodeOf(err)), "upstream.failure"):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func reason(code Code) string {
	s := string(code)
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[i+1:]
	}
	return s
}

func flatten(fields []Attr) []any {
	out := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		if f.Key == "" {
			continue
		}
		out = append(out, f.Key, f.Value)
	}
	return out
}

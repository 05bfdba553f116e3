// Package apierr は各機能パッケージで共通のエラーモデル
package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	mysql "github.com/go-sql-driver/mysql"
)

type Code string

const (
	CodeInvalidArgument  Code = "INVALID_ARGUMENT"
	CodeUnauthenticated  Code = "UNAUTHENTICATED"
	CodePermissionDenied Code = "PERMISSION_DENIED"
	CodeNotFound         Code = "NOT_FOUND"
	CodeConflict         Code = "CONFLICT"
	CodeInternal         Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func ErrInvalid(msg string) *APIError         { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrUnauthenticated(msg string) *APIError { return &APIError{Code: CodeUnauthenticated, Message: msg} }
func ErrForbidden(msg string) *APIError       { return &APIError{Code: CodePermissionDenied, Message: msg} }
func ErrNotFound(msg string) *APIError        { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError        { return &APIError{Code: CodeConflict, Message: msg} }
func ErrInternal(msg string) *APIError        { return &APIError{Code: CodeInternal, Message: msg} }

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var api *APIError
	return errors.As(err, &api) && api.Code == code
}

func ToHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return http.StatusBadRequest
		case CodeUnauthenticated:
			return http.StatusUnauthorized
		case CodePermissionDenied:
			return http.StatusForbidden
		case CodeNotFound:
			return http.StatusNotFound
		case CodeConflict:
			return http.StatusConflict
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

// FromMySQL は制約違反を APIError に変換する。該当しなければ err をそのまま返す
func FromMySQL(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case 1062: // duplicate key
			return ErrConflict("duplicate key")
		case 1451: // row is referenced by a child row
			return ErrConflict("row is still referenced")
		case 1452: // foreign key constraint fails
			return ErrInvalid("referenced row does not exist")
		}
	}
	return err
}

// ---------- handler helpers ----------

// ErrorBody は全ハンドラ共通のエラーレスポンス {"error":{"code","message"}}
type ErrorBody struct {
	Error APIError `json:"error"`
}

func Body(code Code, msg string) ErrorBody {
	return ErrorBody{Error: APIError{Code: code, Message: msg}}
}

// BodyFrom は内部エラーの詳細をクライアントに出さない
func BodyFrom(err error) ErrorBody {
	var api *APIError
	if errors.As(err, &api) {
		return Body(api.Code, api.Message)
	}
	return Body(CodeInternal, "internal error")
}

// Abort writes the error body with the mapped status and stops the chain.
func Abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(ToHTTPStatus(err), BodyFrom(err))
}

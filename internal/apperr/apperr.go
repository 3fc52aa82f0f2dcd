// Package apperr holds the numbered error catalog shared by every API route.
// Codes are grouped by thousands: 1xxx system, 2xxx network, 3xxx database,
// 4xxx user input, 5xxx auth, 6xxx external service, 7xxx resource, 9xxx unknown.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type Code int

const (
	SystemError          Code = 1000
	SystemInitialization Code = 1001
	SystemConfigMissing  Code = 1002
	SystemTimeout        Code = 1003

	NetworkError            Code = 2000
	NetworkConnectionFailed Code = 2001
	NetworkTimeout          Code = 2002

	DatabaseError          Code = 3000
	DatabaseQueryFailed    Code = 3001
	DatabaseRecordNotFound Code = 3002
	DatabaseDuplicateEntry Code = 3003

	InputInvalid          Code = 4000
	InputValidationFailed Code = 4001
	InputRequiredMissing  Code = 4002
	InputTooLong          Code = 4003

	AuthError            Code = 5000
	AuthUnauthorized     Code = 5001
	AuthPermissionDenied Code = 5002

	ExternalServiceError       Code = 6000
	ExternalServiceUnavailable Code = 6001
	ExternalRateLimited        Code = 6002

	ResourceError     Code = 7000
	ResourceNotFound  Code = 7001
	ResourceExhausted Code = 7002

	UnknownError Code = 9000
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Details is the catalog entry for a code.
type Details struct {
	Code            Code     `json:"code"`
	Message         string   `json:"message"`
	Description     string   `json:"description"`
	Severity        Severity `json:"severity"`
	SuggestedAction string   `json:"suggestedAction,omitempty"`
}

var catalog = map[Code]Details{
	SystemError:                {SystemError, "시스템 오류가 발생했습니다.", "Unexpected internal failure", SeverityHigh, "잠시 후 다시 시도해 주세요."},
	SystemInitialization:       {SystemInitialization, "시스템 초기화에 실패했습니다.", "A component failed to start", SeverityCritical, "서버 로그를 확인하세요."},
	SystemConfigMissing:        {SystemConfigMissing, "필수 설정이 누락되었습니다.", "A required environment variable is not set", SeverityHigh, "환경 변수를 확인하세요."},
	SystemTimeout:              {SystemTimeout, "작업 시간이 초과되었습니다.", "The operation did not finish in time", SeverityMedium, "잠시 후 다시 시도해 주세요."},
	NetworkError:               {NetworkError, "네트워크 오류가 발생했습니다.", "Generic network failure", SeverityMedium, "네트워크 연결을 확인하세요."},
	NetworkConnectionFailed:    {NetworkConnectionFailed, "서버에 연결할 수 없습니다.", "Connection to a remote host failed", SeverityMedium, "네트워크 연결을 확인하세요."},
	NetworkTimeout:             {NetworkTimeout, "네트워크 요청 시간이 초과되었습니다.", "A remote call timed out", SeverityMedium, "잠시 후 다시 시도해 주세요."},
	DatabaseError:              {DatabaseError, "데이터베이스 오류가 발생했습니다.", "Generic storage failure", SeverityHigh, "잠시 후 다시 시도해 주세요."},
	DatabaseQueryFailed:        {DatabaseQueryFailed, "데이터베이스 조회에 실패했습니다.", "A query returned an error", SeverityHigh, ""},
	DatabaseRecordNotFound:     {DatabaseRecordNotFound, "해당 ID의 응답을 찾을 수 없습니다.", "No record with the given id", SeverityLow, "ID를 확인하세요."},
	DatabaseDuplicateEntry:     {DatabaseDuplicateEntry, "이미 존재하는 항목입니다.", "A record with the same id exists", SeverityLow, ""},
	InputInvalid:               {InputInvalid, "잘못된 입력입니다.", "The request could not be parsed", SeverityLow, "입력값을 확인하세요."},
	InputValidationFailed:      {InputValidationFailed, "입력값 검증에 실패했습니다.", "A field failed validation", SeverityLow, "입력값을 확인하세요."},
	InputRequiredMissing:       {InputRequiredMissing, "필수 항목이 누락되었습니다.", "A required field is missing", SeverityLow, "필수 항목을 입력하세요."},
	InputTooLong:               {InputTooLong, "입력이 너무 깁니다.", "A field exceeds its maximum length", SeverityLow, "입력을 줄여 주세요."},
	AuthError:                  {AuthError, "인증 오류가 발생했습니다.", "Generic authentication failure", SeverityMedium, ""},
	AuthUnauthorized:           {AuthUnauthorized, "인증이 필요합니다.", "Missing or invalid credentials", SeverityMedium, "관리자 키를 확인하세요."},
	AuthPermissionDenied:       {AuthPermissionDenied, "권한이 없습니다.", "The caller may not perform this action", SeverityMedium, ""},
	ExternalServiceError:       {ExternalServiceError, "외부 서비스 오류가 발생했습니다.", "A third-party API returned an error", SeverityMedium, "잠시 후 다시 시도해 주세요."},
	ExternalServiceUnavailable: {ExternalServiceUnavailable, "외부 서비스를 사용할 수 없습니다.", "A third-party API is not configured or is down", SeverityMedium, ""},
	ExternalRateLimited:        {ExternalRateLimited, "외부 서비스 요청 한도를 초과했습니다.", "A third-party API rate limited the request", SeverityMedium, "잠시 후 다시 시도해 주세요."},
	ResourceError:              {ResourceError, "리소스 오류가 발생했습니다.", "Generic resource failure", SeverityMedium, ""},
	ResourceNotFound:           {ResourceNotFound, "요청한 리소스를 찾을 수 없습니다.", "The resource does not exist", SeverityLow, ""},
	ResourceExhausted:          {ResourceExhausted, "리소스가 부족합니다.", "A limit was reached", SeverityMedium, ""},
	UnknownError:               {UnknownError, "알 수 없는 오류가 발생했습니다.", "Unclassified failure", SeverityMedium, "잠시 후 다시 시도해 주세요."},
}

// Lookup returns the catalog entry for code, or the UnknownError entry.
func Lookup(code Code) Details {
	if d, ok := catalog[code]; ok {
		return d
	}
	return catalog[UnknownError]
}

// Category is the thousands bucket, e.g. 4 for every input error.
func (c Code) Category() int {
	return int(c) / 1000
}

// Error is an application error carrying a catalog code.
type Error struct {
	Code      Code
	Message   string
	Info      map[string]interface{}
	Cause     error
	Timestamp time.Time
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds an Error using the catalog message for code.
func New(code Code, cause error, info map[string]interface{}) *Error {
	return &Error{
		Code:      code,
		Message:   Lookup(code).Message,
		Info:      info,
		Cause:     cause,
		Timestamp: time.Now().UTC(),
	}
}

// Newf builds an Error with a custom message.
func Newf(code Code, format string, args ...interface{}) *Error {
	e := New(code, nil, nil)
	e.Message = fmt.Sprintf(format, args...)
	return e
}

// From converts any error into an *Error. Existing app errors pass through;
// context errors map to timeouts; anything else gets the fallback code.
func From(err error, fallback Code) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return New(NetworkTimeout, err, nil)
	}
	return New(fallback, err, nil)
}

// Classify maps an external-service error message onto a code.
func Classify(err error) Code {
	if err == nil {
		return UnknownError
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NetworkTimeout
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key"):
		return ExternalServiceError
	case strings.Contains(msg, "timeout"):
		return NetworkTimeout
	case strings.Contains(msg, "network"), strings.Contains(msg, "connection refused"), strings.Contains(msg, "no such host"):
		return NetworkConnectionFailed
	default:
		return ExternalServiceError
	}
}

// HTTPStatus returns the status code an API response should use for err.
func HTTPStatus(err error) int {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	return StatusForCode(appErr.Code)
}

func StatusForCode(code Code) int {
	switch {
	case code == AuthPermissionDenied:
		return http.StatusForbidden
	case code == DatabaseRecordNotFound, code == ResourceNotFound:
		return http.StatusNotFound
	case code == ExternalServiceUnavailable:
		return http.StatusServiceUnavailable
	case code.Category() == 4:
		return http.StatusBadRequest
	case code.Category() == 5:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

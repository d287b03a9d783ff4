package core

import (
	"encoding/json"
	"net/http"
)

// Error codes. The code is stable, the message is for humans.
const (
	CodeErrorInvalidRequest         = "err_invalid_input"
	CodeErrorInvalidContentType     = "err_invalid_content_type"
	CodeErrorMissingCredential      = "err_missing_credential"
	CodeErrorMissingEmail           = "err_missing_email"
	CodeErrorInvalidIdToken         = "err_invalid_id_token"
	CodeErrorInvalidAccessToken     = "err_invalid_access_token"
	CodeErrorAccountLocked          = "err_account_locked"
	CodeErrorLoginFailed            = "err_login_failed"
	CodeErrorInvalidCredentials     = "err_invalid_credentials"
	CodeErrorPasswordComplexity     = "err_password_complexity"
	CodeErrorPasswordTooLong        = "err_password_too_long"
	CodeErrorEmailConflict          = "err_email_conflict"
	CodeErrorRegistrationFailed     = "err_registration_failed"
	CodeErrorNoAuthHeader           = "err_no_auth_header"
	CodeErrorInvalidTokenFormat     = "err_invalid_token_format"
	CodeErrorJwtTokenExpired        = "err_token_expired"
	CodeErrorJwtInvalidToken        = "err_invalid_token"
	CodeErrorForbidden              = "err_forbidden"
	CodeErrorNotFound               = "err_not_found"
	CodeErrorAuthDatabaseError      = "err_auth_database_error"
	CodeErrorInternal               = "err_internal"
	CodeErrorRedirectNotAllowed     = "err_redirect_not_allowed"
	CodeErrorGoogleNotConfigured    = "err_google_not_configured"
	CodeErrorIpBlocked              = "err_ip_blocked"
	CodeErrorCannotDeactivateSelf   = "err_cannot_deactivate_self"
	CodeErrorTokenGeneration        = "err_token_generation"
)

const (
	msgLoginOk    = "Đăng nhập thành công"
	msgRegisterOk = "Đăng ký thành công"

	// prefix of the dynamic id token error, followed by the provider text
	msgInvalidIdToken = "Google ID Token không hợp lệ: "
)

type jsonResponse struct {
	status int
	body   []byte
}

// JsonError is the body of every failed request.
type JsonError struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Error   string `json:"error"`
}

// JsonWithData is the body of successful requests.
type JsonWithData struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// newJsonError marshals an error body. Used at init for the precomputed
// responses and at request time for messages carrying dynamic text.
func newJsonError(status int, code, message string) jsonResponse {
	body, _ := json.Marshal(JsonError{
		Success: false,
		Code:    code,
		Error:   message,
	})
	return jsonResponse{status: status, body: body}
}

// Precomputed error responses with status codes
var (
	errorInvalidRequest         = newJsonError(http.StatusBadRequest, CodeErrorInvalidRequest, "Dữ liệu không hợp lệ")
	errorInvalidContentType     = newJsonError(http.StatusUnsupportedMediaType, CodeErrorInvalidContentType, "Content-Type không được hỗ trợ")
	errorMissingCredential      = newJsonError(http.StatusBadRequest, CodeErrorMissingCredential, "Vui lòng cung cấp idToken hoặc accessToken")
	errorMissingEmail           = newJsonError(http.StatusBadRequest, CodeErrorMissingEmail, "Không thể lấy email từ Google")
	errorInvalidAccessToken     = newJsonError(http.StatusUnauthorized, CodeErrorInvalidAccessToken, "Token Google không hợp lệ")
	errorAccountLocked          = newJsonError(http.StatusForbidden, CodeErrorAccountLocked, "Tài khoản đã bị khóa")
	errorLoginFailed            = newJsonError(http.StatusInternalServerError, CodeErrorLoginFailed, "Đã xảy ra lỗi khi đăng nhập")
	errorInvalidCredentials     = newJsonError(http.StatusUnauthorized, CodeErrorInvalidCredentials, "Email hoặc mật khẩu không đúng")
	errorPasswordComplexity     = newJsonError(http.StatusBadRequest, CodeErrorPasswordComplexity, "Mật khẩu phải có ít nhất 8 ký tự")
	errorPasswordTooLong        = newJsonError(http.StatusBadRequest, CodeErrorPasswordTooLong, "Mật khẩu không được dài quá 72 byte")
	errorEmailConflict          = newJsonError(http.StatusConflict, CodeErrorEmailConflict, "Email đã được sử dụng")
	errorRegistrationFailed     = newJsonError(http.StatusInternalServerError, CodeErrorRegistrationFailed, "Đã xảy ra lỗi khi đăng ký")
	errorNoAuthHeader           = newJsonError(http.StatusUnauthorized, CodeErrorNoAuthHeader, "Thiếu token xác thực")
	errorInvalidTokenFormat     = newJsonError(http.StatusUnauthorized, CodeErrorInvalidTokenFormat, "Token xác thực sai định dạng")
	errorJwtTokenExpired        = newJsonError(http.StatusUnauthorized, CodeErrorJwtTokenExpired, "Phiên đăng nhập đã hết hạn")
	errorJwtInvalidToken        = newJsonError(http.StatusUnauthorized, CodeErrorJwtInvalidToken, "Token không hợp lệ")
	errorForbidden              = newJsonError(http.StatusForbidden, CodeErrorForbidden, "Không có quyền truy cập")
	errorNotFound               = newJsonError(http.StatusNotFound, CodeErrorNotFound, "Không tìm thấy")
	errorAuthDatabaseError      = newJsonError(http.StatusInternalServerError, CodeErrorAuthDatabaseError, "Lỗi cơ sở dữ liệu khi xác thực")
	errorInternal               = newJsonError(http.StatusInternalServerError, CodeErrorInternal, "Đã xảy ra lỗi máy chủ")
	errorTokenGeneration        = newJsonError(http.StatusInternalServerError, CodeErrorTokenGeneration, "Không thể tạo token đăng nhập")
	errorRedirectNotAllowed     = newJsonError(http.StatusBadRequest, CodeErrorRedirectNotAllowed, "redirect_uri không được phép")
	errorGoogleNotConfigured    = newJsonError(http.StatusInternalServerError, CodeErrorGoogleNotConfigured, "GOOGLE_CLIENT_ID is not defined")
	errorCannotDeactivateSelf   = newJsonError(http.StatusBadRequest, CodeErrorCannotDeactivateSelf, "Không thể tự khóa tài khoản của mình")
	ErrorIpBlocked              = newJsonError(http.StatusTooManyRequests, CodeErrorIpBlocked, "Quá nhiều yêu cầu, vui lòng thử lại sau")
)

// WriteJsonError writes a precomputed JSON error response
func WriteJsonError(w http.ResponseWriter, resp jsonResponse) {
	SetHeaders(w, HeadersJson)
	w.WriteHeader(resp.status)
	w.Write(resp.body)
}

// writeJsonWithData writes a success body with the given status.
func writeJsonWithData(w http.ResponseWriter, status int, resp JsonWithData) {
	resp.Success = true
	SetHeaders(w, HeadersJson)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// NotFoundHandler answers unmatched routes.
func (a *App) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteJsonError(w, errorNotFound)
}

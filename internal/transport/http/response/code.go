package response

import "net/http"

// defaultMsg 各状态码的默认提示语
var defaultMsg = map[int]string{
	http.StatusBadRequest:            "Bad Request",
	http.StatusUnauthorized:          "Unauthorized",
	http.StatusForbidden:             "Forbidden",
	http.StatusNotFound:              "Not Found",
	http.StatusRequestEntityTooLarge: "Request body too large",
	http.StatusTooManyRequests:       "Too many requests",
	http.StatusInternalServerError:   "Something went wrong",
	http.StatusServiceUnavailable:    "Server busy",
	http.StatusGatewayTimeout:        "Request timeout",
}

func DefaultMsg(code int) string {
	if m, ok := defaultMsg[code]; ok {
		return m
	}
	return http.StatusText(code)
}

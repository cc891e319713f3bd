package relay

import "net/http"

// upstreamStatus maps the upstream's ad-hoc error codes to HTTP statuses.
// Codes outside the table are treated as gateway failures.
var upstreamStatus = map[string]int{
	"unauthorized":     http.StatusUnauthorized,
	"forbidden_domain": http.StatusForbidden,
	"bad_request":      http.StatusBadRequest,
}

const upstreamStatusDefault = http.StatusBadGateway

func mapUpstreamError(code string) int {
	if status, ok := upstreamStatus[code]; ok {
		return status
	}
	return upstreamStatusDefault
}

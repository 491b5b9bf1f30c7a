package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

const defaultMaxBodyBytes int64 = 1 << 20

var (
	errEmptyBody    = errors.New("request body is empty")
	errBodyTooLarge = errors.New("request body too large")
)

func readLimitedBody(r *http.Request, limit int64) ([]byte, error) {
	if r == nil || r.Body == nil {
		return nil, errEmptyBody
	}
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errEmptyBody
	}
	if int64(len(data)) > limit {
		return nil, errBodyTooLarge
	}
	return data, nil
}

// decodeJSONBody reads a size-limited JSON object into dst.
func decodeJSONBody(r *http.Request, limit int64, dst any) error {
	data, err := readLimitedBody(r, limit)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func bodyErrorStatus(err error) int {
	if errors.Is(err, errBodyTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func writeJSONResponse(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError writes {"error": message} plus any extra fields.
func writeError(w http.ResponseWriter, status int, message string, extra map[string]any) {
	payload := map[string]any{"error": message}
	for k, v := range extra {
		payload[k] = v
	}
	writeJSONResponse(w, status, payload)
}

// writeFailure writes the {"success": false, ...} envelope used by the
// chat, pronunciation and lesson endpoints.
func writeFailure(w http.ResponseWriter, status int, errMsg, userMsg string, extra map[string]any) {
	payload := map[string]any{
		"success": false,
		"error":   errMsg,
	}
	if userMsg != "" {
		payload["message"] = userMsg
	}
	for k, v := range extra {
		payload[k] = v
	}
	writeJSONResponse(w, status, payload)
}

type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSONResponse(w, status, successEnvelope{Success: true, Data: data})
}

package attendance

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
)

// genericRejectedMsg is the fallback when a rejection carries no usable message.
const genericRejectedMsg = "Failed to mark attendance"

// httpMarker submits mark requests to a remote mark-attendance function
// (deployments that kept the legacy serverless function). The first-party
// service is used instead when no function URL is configured.
type httpMarker struct {
	url    string
	client *http.Client
	logger core.Logger
}

var _ Marker = (*httpMarker)(nil)

func NewHTTPMarker(conf *core.Config, logger core.Logger) *httpMarker {
	return &httpMarker{
		url:    conf.Attendance.MarkFuncURL,
		client: &http.Client{Timeout: conf.Attendance.MarkTimeout},
		logger: logger,
	}
}

func (m *httpMarker) MarkAttendance(ctx context.Context, req MarkRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return errors.Wrap(err, "marshalling mark request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "building mark request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 500 {
		return &TransportError{Err: errors.Errorf("mark-attendance function returned %d", resp.StatusCode)}
	}
	return &RejectedError{Msg: ResolveErrorMessage(data)}
}

// fnError mirrors the remote function's error shape. Context, when present,
// is itself a serialized JSON object that may carry the most specific message
// in an "error" field.
type fnError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Context string `json:"context"`
}

// ResolveErrorMessage extracts the most specific human-readable message from a
// remote rejection body. Strategies are tried in order: the nested `error`
// field inside the serialized `context`, the top-level `error`, the top-level
// `message`, then a generic fallback. Unparseable input falls through
// gracefully.
func ResolveErrorMessage(body []byte) string {
	var fe fnError
	if err := json.Unmarshal(body, &fe); err != nil {
		return genericRejectedMsg
	}

	if fe.Context != "" {
		var nested struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal([]byte(fe.Context), &nested); err == nil && nested.Error != "" {
			return nested.Error
		}
	}
	if fe.Error != "" {
		return fe.Error
	}
	if fe.Message != "" {
		return fe.Message
	}
	return genericRejectedMsg
}

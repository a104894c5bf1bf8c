package attendance

import (
	"net/url"
	"strings"
)

// ExtractSessionID pulls the session id out of a scanned QR payload.
//
// The payload must be an absolute http(s) URL. Two shapes are accepted: a
// `session_id` query parameter, or a path segment following "/attend" (the
// shape session.ServiceInterface.ScanURL emits). Anything else is
// ErrInvalidPayload; no collaborator is contacted for such payloads.
func ExtractSessionID(payload string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(payload))
	if err != nil {
		return "", ErrInvalidPayload
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrInvalidPayload
	}

	if id := u.Query().Get("session_id"); id != "" {
		return id, nil
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, seg := range segments {
		if seg == "attend" && i+1 < len(segments) && segments[i+1] != "" {
			return segments[i+1], nil
		}
	}
	return "", ErrInvalidPayload
}

package attendance

import "testing"

func TestExtractSessionID(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
		wantErr error
	}{
		{name: "path shape", payload: "https://app.example/attend/abc123", want: "abc123"},
		{name: "path shape with prefix", payload: "https://app.example/portal/attend/abc123", want: "abc123"},
		{name: "path shape trailing slash", payload: "https://app.example/attend/abc123/", want: "abc123"},
		{name: "query shape", payload: "https://app.example/mark?session_id=xyz789", want: "xyz789"},
		{name: "query wins over path", payload: "https://app.example/attend/abc123?session_id=xyz789", want: "xyz789"},
		{name: "http accepted", payload: "http://app.example/attend/abc123", want: "abc123"},
		{name: "whitespace trimmed", payload: "  https://app.example/attend/abc123\n", want: "abc123"},
		{name: "not a url", payload: "not a url", wantErr: ErrInvalidPayload},
		{name: "empty", payload: "", wantErr: ErrInvalidPayload},
		{name: "relative url", payload: "/attend/abc123", wantErr: ErrInvalidPayload},
		{name: "wrong scheme", payload: "ftp://app.example/attend/abc123", wantErr: ErrInvalidPayload},
		{name: "no session id", payload: "https://app.example/dashboard", wantErr: ErrInvalidPayload},
		{name: "attend without id", payload: "https://app.example/attend", wantErr: ErrInvalidPayload},
		{name: "attend with empty id", payload: "https://app.example/attend/", wantErr: ErrInvalidPayload},
		{name: "empty query param", payload: "https://app.example/mark?session_id=", wantErr: ErrInvalidPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractSessionID(tt.payload)
			if err != tt.wantErr {
				t.Fatalf("ExtractSessionID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ExtractSessionID() = %q, want %q", got, tt.want)
			}
		})
	}
}

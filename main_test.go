package httprs

import (
	"bytes"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ethanbai/httprs/input"
)

func mustURL(t *testing.T, rawurl string) *url.URL {
	u, err := url.Parse(rawurl)
	if err != nil {
		t.Fatalf("failed to parse URL: url=%s, err=%s", rawurl, err)
	}
	return u
}

func TestDropBodyOnBodylessMethod(t *testing.T) {
	field := input.Field{Name: "name", Value: "alice"}
	file := input.Field{Name: "photo", Value: "/tmp/img.jpg"}

	testCases := []struct {
		title            string
		method           input.Method
		fields           []input.Field
		files            []input.Field
		expectedBodyType input.BodyType
		expectWarning    bool
	}{
		{
			title:            "GET drops data fields",
			method:           "GET",
			fields:           []input.Field{field},
			expectedBodyType: input.EmptyBody,
			expectWarning:    true,
		},
		{
			title:            "HEAD drops data fields",
			method:           "HEAD",
			fields:           []input.Field{field},
			expectedBodyType: input.EmptyBody,
			expectWarning:    true,
		},
		{
			title:            "GET keeps file parts",
			method:           "GET",
			files:            []input.Field{file},
			expectedBodyType: input.MultipartBody,
		},
		{
			title:            "POST keeps data fields",
			method:           "POST",
			fields:           []input.Field{field},
			expectedBodyType: input.JSONBody,
		},
	}
	for _, tt := range testCases {
		t.Run(tt.title, func(t *testing.T) {
			in := &input.Request{
				Method: tt.method,
				URL:    mustURL(t, "http://example.com/hello"),
				Body: input.Body{
					BodyType: input.DetectBodyType(tt.fields, tt.files),
					Fields:   tt.fields,
					Files:    tt.files,
				},
			}
			var warnings bytes.Buffer

			dropBodyOnBodylessMethod(in, &warnings)

			if in.Body.BodyType != tt.expectedBodyType {
				t.Errorf("unexpected body type: expected=%v, actual=%v", tt.expectedBodyType, in.Body.BodyType)
			}
			if tt.expectWarning {
				if len(in.Body.Fields) != 0 {
					t.Errorf("data fields must be dropped: %+v", in.Body.Fields)
				}
				if !strings.Contains(warnings.String(), "name") || !strings.Contains(warnings.String(), string(tt.method)) {
					t.Errorf("unexpected warning: %q", warnings.String())
				}
			} else if warnings.Len() != 0 {
				t.Errorf("unexpected warning: %q", warnings.String())
			}
		})
	}
}

func TestMaskAuthorization(t *testing.T) {
	token := "Bearer " + strings.Repeat("x", 30)
	header := http.Header{}
	header.Set("Authorization", token)
	header.Set("X-Foo", "bar")

	masked := maskAuthorization(header)

	expected := "Bearer xxx...xxxxx"
	if got := masked.Get("Authorization"); got != expected {
		t.Errorf("unexpected masked value: expected=%q, actual=%q", expected, got)
	}
	if got := masked.Get("X-Foo"); got != "bar" {
		t.Errorf("other headers must pass through: %q", got)
	}
	// The header that goes out on the wire must keep the full credential.
	if got := header.Get("Authorization"); got != token {
		t.Errorf("original header must not be modified: %q", got)
	}
}

func TestMaskAuthorization_ShortValue(t *testing.T) {
	header := http.Header{}
	header.Set("Authorization", "Basic abc")

	masked := maskAuthorization(header)

	if got := masked.Get("Authorization"); got != "Basic abc" {
		t.Errorf("short values must stay unmasked: %q", got)
	}
}

func TestTimerSummary(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	tm := &timer{
		start:     start,
		firstByte: start.Add(120 * time.Millisecond),
	}

	ttfb, download, total := tm.summary(start.Add(300 * time.Millisecond))

	if ttfb != 120*time.Millisecond {
		t.Errorf("unexpected time to first byte: %v", ttfb)
	}
	if download != 180*time.Millisecond {
		t.Errorf("unexpected download time: %v", download)
	}
	if total != 300*time.Millisecond {
		t.Errorf("unexpected total time: %v", total)
	}
}

func TestTimerSummary_NoFirstByte(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	tm := &timer{start: start}

	ttfb, download, total := tm.summary(start.Add(50 * time.Millisecond))

	if ttfb != 50*time.Millisecond {
		t.Errorf("unexpected time to first byte: %v", ttfb)
	}
	if download != 0 {
		t.Errorf("unexpected download time: %v", download)
	}
	if total != 50*time.Millisecond {
		t.Errorf("unexpected total time: %v", total)
	}
}

func TestTimerPrintSummary(t *testing.T) {
	tm := newTimer()
	tm.markFirstByte()
	var buf bytes.Buffer

	tm.printSummary(&buf)

	out := buf.String()
	for _, label := range []string{"time to first byte:", "download:", "total:"} {
		if !strings.Contains(out, label) {
			t.Errorf("summary must report %q: %q", label, out)
		}
	}
}

package output

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func parseURL(t *testing.T, rawurl string) *url.URL {
	u, err := url.Parse(rawurl)
	if err != nil {
		t.Fatalf("failed to parse URL: url=%s, err=%s", u, err)
	}
	return u
}

func TestPrettyPrinter_PrintStatusLine(t *testing.T) {
	// Setup
	var buffer strings.Builder
	printer := NewPrettyPrinter(PrettyPrinterConfig{
		Writer:      &buffer,
		EnableColor: false,
	})
	response := &http.Response{
		Status:     "200 OK",
		StatusCode: 200,
		Proto:      "HTTP/1.1",
	}

	// Exercise
	err := printer.PrintStatusLine(response.Proto, response.Status, response.StatusCode)
	if err != nil {
		t.Fatalf("unexpected error: err=%+v", err)
	}

	// Verify
	expected := "HTTP/1.1 200 OK\n"
	if buffer.String() != expected {
		t.Errorf("unexpected output: expected=%s, actual=%s", expected, buffer.String())
	}
}

func TestPrettyPrinter_PrintRequestLine(t *testing.T) {
	// Setup
	var buffer strings.Builder
	printer := NewPrettyPrinter(PrettyPrinterConfig{
		Writer:      &buffer,
		EnableColor: false,
	})
	request := &http.Request{
		Method: "GET",
		URL:    parseURL(t, "http://example.com/hello?foo=bar&hoge=piyo"),
	}

	// Exercise
	err := printer.PrintRequestLine(request)
	if err != nil {
		t.Fatalf("unexpected error: err=%+v", err)
	}

	// Verify
	expected := "GET http://example.com/hello?foo=bar&hoge=piyo HTTP/1.1\n"
	if buffer.String() != expected {
		t.Errorf("unexpected output: expected=%s, actual=%s", expected, buffer.String())
	}
}

func TestPrettyPrinter_PrintHeader(t *testing.T) {
	// Setup
	var buffer strings.Builder
	printer := NewPrettyPrinter(PrettyPrinterConfig{
		Writer:      &buffer,
		EnableColor: false,
	})
	header := http.Header{
		"Content-Type": []string{"application/json"},
		"X-Foo":        []string{"hello", "world", "aaa"},
		"Date":         []string{"Tue, 12 Feb 2019 16:01:54 GMT"},
	}

	// Exercise
	err := printer.PrintHeader(header)
	if err != nil {
		t.Fatalf("unexpected error: err=%+v", err)
	}

	// Verify
	expected := strings.Join([]string{
		"Content-Type: application/json\n",
		"Date: Tue, 12 Feb 2019 16:01:54 GMT\n",
		"X-Foo: hello\n",
		"X-Foo: world\n",
		"X-Foo: aaa\n",
		"\n",
	}, "")
	if buffer.String() != expected {
		t.Errorf("unexpected output: expected=\n%s\n (len=%d)\nactual=\n%s\n (len=%d)",
			expected, len(expected), buffer.String(), len(buffer.String()))
	}
}

func TestPrettyPrinter_PrintBody(t *testing.T) {
	testCases := []struct {
		title       string
		body        string
		contentType string
		expected    string
	}{
		{
			title:       "Key order is preserved",
			body:        `{"zzz": "hello ⚡", "aaa": [3.14, true, false, "x"], "123": {}, "": [], "nul": null}`,
			contentType: "application/json",
			expected: strings.Join([]string{
				`{`,
				`    "zzz": "hello ⚡",`,
				`    "aaa": [`,
				`        3.14,`,
				`        true,`,
				`        false,`,
				`        "x"`,
				`    ],`,
				`    "123": {},`,
				`    "": [],`,
				`    "nul": null`,
				"}\n",
			}, "\n"),
		},
		{
			title:       "Escaped",
			body:        `{"\"": "aaa\nbbb"}`,
			contentType: "application/json",
			expected: strings.Join([]string{
				`{`,
				`    "\"": "aaa\nbbb"`,
				"}\n",
			}, "\n"),
		},
		{
			title:       "HTML is not escaped",
			body:        `{"a": "<b>&</b>"}`,
			contentType: "application/json",
			expected: strings.Join([]string{
				`{`,
				`    "a": "<b>&</b>"`,
				"}\n",
			}, "\n"),
		},
		{
			title:       "Number fidelity",
			body:        `{"big": 10000000000000000000000000}`,
			contentType: "application/json",
			expected: strings.Join([]string{
				`{`,
				`    "big": 10000000000000000000000000`,
				"}\n",
			}, "\n"),
		},
		{
			title:       "Top-level scalar",
			body:        `"hello"`,
			contentType: "application/json",
			expected:    "\"hello\"\n",
		},
		{
			title:       "Problem JSON media type",
			body:        `{"status": 404}`,
			contentType: "application/problem+json",
			expected: strings.Join([]string{
				`{`,
				`    "status": 404`,
				"}\n",
			}, "\n"),
		},
		{
			title:       "Body is empty",
			body:        "",
			contentType: "application/json",
			expected:    "",
		},
		{
			title:       "Body contains only whitespaces",
			body:        "    \n",
			contentType: "application/json",
			expected:    "    \n",
		},
		{
			title:       "Not a JSON",
			body:        "xyz",
			contentType: "application/json",
			expected:    "xyz",
		},
		{
			title:       "Malformed JSON is emitted untouched",
			body:        `{"hello": "world"`,
			contentType: "application/json",
			expected:    `{"hello": "world"`,
		},
		{
			title:       "HTML without color passes through",
			body:        "<html><body>hi</body></html>",
			contentType: "text/html; charset=utf-8",
			expected:    "<html><body>hi</body></html>",
		},
		{
			title:       "Other content types are raw",
			body:        `{"looks": "like json"}`,
			contentType: "text/plain",
			expected:    `{"looks": "like json"}`,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.title, func(t *testing.T) {
			// Setup
			var buffer strings.Builder
			printer := NewPrettyPrinter(PrettyPrinterConfig{
				Writer:      &buffer,
				EnableColor: false,
			})

			// Exercise
			err := printer.PrintBody(strings.NewReader(tt.body), tt.contentType)
			if err != nil {
				t.Fatalf("unexpected error: err=%+v", err)
			}

			// Verify
			if buffer.String() != tt.expected {
				t.Errorf("unexpected output: expected=\n%s\nactual=\n%s\n", tt.expected, buffer.String())
			}
		})
	}
}

func TestPrettyPrinter_DetectJSON(t *testing.T) {
	if !isJSON("application/json") {
		t.Errorf("didn't detect application/json as JSON")
	}
	if !isJSON("application/json; charset=utf-8") {
		t.Errorf("didn't detect application/json with parameters as JSON")
	}

	// See https://tools.ietf.org/html/rfc7807
	if !isJSON("application/problem+json") {
		t.Errorf("didn't detect application/problem+json as JSON")
	}

	if isJSON("text/html") {
		t.Errorf("text/html detected as JSON")
	}
	if !isHTML("text/html; charset=utf-8") {
		t.Errorf("didn't detect text/html as HTML")
	}
}

package input

import (
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var (
	reScheme    = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+-.]*://`)
	emptyMethod = Method("")

	knownMethods = map[Method]bool{
		"GET":     true,
		"POST":    true,
		"PUT":     true,
		"PATCH":   true,
		"DELETE":  true,
		"HEAD":    true,
		"OPTIONS": true,
	}
)

type itemType int

const (
	unknownItem itemType = iota
	httpHeaderItem
	urlParameterItem
	jsonFieldItem
	formFileItem
)

type UsageError string

func (e *UsageError) Error() string {
	return string(*e)
}

func newUsageError(message string) error {
	u := UsageError(message)
	return errors.WithStack(&u)
}

// ParseArgs turns the positional arguments (METHOD URL [REQUEST_ITEM ...])
// into a Request. Any malformed item aborts the whole invocation before a
// single byte goes out on the network.
func ParseArgs(args []string) (*Request, error) {
	if len(args) < 1 {
		return nil, newUsageError("METHOD is required")
	}
	if len(args) < 2 {
		return nil, newUsageError("URL is required")
	}

	method, err := parseMethod(args[0])
	if err != nil {
		return nil, err
	}

	u, err := parseURL(args[1])
	if err != nil {
		return nil, err
	}

	in := Request{Method: method, URL: u}
	for _, arg := range args[2:] {
		if err := parseItem(arg, &in); err != nil {
			return nil, err
		}
	}
	in.Body.BodyType = DetectBodyType(in.Body.Fields, in.Body.Files)

	return &in, nil
}

func parseMethod(s string) (Method, error) {
	method := Method(strings.ToUpper(s))
	if !knownMethods[method] {
		return emptyMethod, newUsageError("METHOD must be one of get, post, put, patch, delete, head, options: " + s)
	}
	return method, nil
}

func parseURL(s string) (*url.URL, error) {
	defaultScheme := "http"
	defaultHost := "localhost"

	// ex) :8080/hello or /hello
	if strings.HasPrefix(s, ":") || strings.HasPrefix(s, "/") {
		s = defaultHost + s
	}

	// ex) example.com/hello
	if !reScheme.MatchString(s) {
		s = defaultScheme + "://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return nil, newUsageError("Invalid URL: " + s)
	}
	u.Host = strings.TrimSuffix(u.Host, ":")
	if u.Path == "" {
		u.Path = "/"
	}
	return u, nil
}

func parseItem(s string, in *Request) error {
	itemType, name, value := splitItem(s)
	switch itemType {
	case jsonFieldItem:
		in.Body.Fields = append(in.Body.Fields, Field{Name: name, Value: value})
	case httpHeaderItem:
		in.Header.Fields = append(in.Header.Fields, Field{Name: name, Value: unquote(value)})
	case urlParameterItem:
		in.Parameters = append(in.Parameters, Field{Name: name, Value: value})
	case formFileItem:
		if err := checkReadableFile(value); err != nil {
			return errors.Wrapf(err, "form file item '%s'", s)
		}
		in.Body.Files = append(in.Body.Files, Field{Name: name, Value: value})
	default:
		return errors.Errorf("unknown request item: %s", s)
	}
	return nil
}

// splitItem classifies one raw token by a single left-to-right scan for the
// first delimiter. At a given position "==" takes precedence over "=";
// ":" and "@" cannot collide with the "="-family.
func splitItem(s string) (itemType, string, string) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '=':
			if i+1 < len(s) && s[i+1] == '=' {
				return urlParameterItem, s[:i], s[i+2:]
			}
			return jsonFieldItem, s[:i], s[i+1:]
		case ':':
			return httpHeaderItem, s[:i], s[i+1:]
		case '@':
			return formFileItem, s[:i], s[i+1:]
		}
	}
	return unknownItem, "", ""
}

// unquote strips one pair of matching quotes wrapping a header value, so
// that X-Foo:"a:b" carries the value a:b. Everything else passes verbatim.
func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

func checkReadableFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	return f.Close()
}

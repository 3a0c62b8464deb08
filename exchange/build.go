package exchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethanbai/httprs/input"
	"github.com/ethanbai/httprs/version"
	"github.com/pkg/errors"
)

func BuildHTTPRequest(in *input.Request, options *Options) (*http.Request, error) {
	u := buildURL(in)

	header := buildHTTPHeader(in, options)

	bodyTuple, err := buildHTTPBody(in)
	if err != nil {
		return nil, err
	}

	if header.Get("Content-Type") == "" && bodyTuple.contentType != "" {
		header.Set("Content-Type", bodyTuple.contentType)
	}
	if header.Get("User-Agent") == "" {
		header.Set("User-Agent", fmt.Sprintf("httprs/%s", version.Current()))
	}

	r := http.Request{
		Method:        string(in.Method),
		URL:           u,
		Header:        header,
		Host:          header.Get("Host"),
		Body:          bodyTuple.reader(),
		GetBody:       bodyTuple.getBody(),
		ContentLength: bodyTuple.contentLength(),
	}
	return &r, nil
}

// buildURL appends the query items to the URL's query string in insertion
// order. url.Values.Encode is unusable here: it sorts keys, and key order is
// user-observable.
func buildURL(in *input.Request) *url.URL {
	u := *in.URL
	if len(in.Parameters) == 0 {
		return &u
	}

	var b strings.Builder
	b.WriteString(u.RawQuery)
	for _, field := range in.Parameters {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(queryEscape(field.Name))
		b.WriteByte('=')
		b.WriteString(queryEscape(field.Value))
	}
	u.RawQuery = b.String()
	return &u
}

func queryEscape(s string) string {
	// QueryEscape emits "+" for spaces; the query string uses "%20".
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// buildHTTPHeader applies the derived Authorization value first and item
// headers after it, with later duplicate names overriding earlier ones.
// An explicit Authorization: item therefore always wins over -a.
func buildHTTPHeader(in *input.Request, options *Options) http.Header {
	header := make(http.Header)
	if options.Auth.Type != NoAuth {
		header.Set("Authorization", options.Auth.HeaderValue())
	}
	for _, field := range in.Header.Fields {
		header.Set(field.Name, field.Value)
	}
	return header
}

type bodyTuple struct {
	raw         []byte
	contentType string
}

func (b bodyTuple) reader() io.ReadCloser {
	if b.raw == nil {
		return nil
	}
	return ioutil.NopCloser(bytes.NewReader(b.raw))
}

func (b bodyTuple) getBody() func() (io.ReadCloser, error) {
	if b.raw == nil {
		return nil
	}
	raw := b.raw
	return func() (io.ReadCloser, error) {
		return ioutil.NopCloser(bytes.NewReader(raw)), nil
	}
}

func (b bodyTuple) contentLength() int64 {
	return int64(len(b.raw))
}

func buildHTTPBody(in *input.Request) (bodyTuple, error) {
	switch in.Body.BodyType {
	case input.EmptyBody:
		return bodyTuple{}, nil
	case input.JSONBody:
		return buildJSONBody(in)
	case input.MultipartBody:
		return buildMultipartBody(in)
	default:
		return bodyTuple{}, errors.Errorf("unknown body type: %v", in.Body.BodyType)
	}
}

// buildJSONBody serializes the data fields as a single JSON object in
// insertion order, coercing values that read as JSON literals.
func buildJSONBody(in *input.Request) (bodyTuple, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range dedupeFields(in.Body.Fields) {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(marshalJSONString(field.Name))
		buf.WriteByte(':')
		buf.Write(coerceJSONValue(field.Value))
	}
	buf.WriteByte('}')

	return bodyTuple{
		raw:         buf.Bytes(),
		contentType: "application/json",
	}, nil
}

// coerceJSONValue turns the literal tokens true/false/null and valid JSON
// numbers into the values they spell; everything else stays a string.
// Headers and query parameters never go through this.
func coerceJSONValue(s string) []byte {
	switch s {
	case "true", "false", "null":
		return []byte(s)
	}
	if isJSONNumber(s) {
		return []byte(s)
	}
	return marshalJSONString(s)
}

func isJSONNumber(s string) bool {
	if s == "" {
		return false
	}
	if c := s[0]; c != '-' && (c < '0' || c > '9') {
		return false
	}
	return json.Valid([]byte(s))
}

func marshalJSONString(s string) []byte {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(s); err != nil {
		// Encoding a plain string cannot fail.
		panic(err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n")
}

// buildMultipartBody writes data fields as text parts and files as file
// parts, all in insertion order, under one uniquely-bounded envelope.
func buildMultipartBody(in *input.Request) (bodyTuple, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, field := range dedupeFields(in.Body.Fields) {
		if err := writer.WriteField(field.Name, field.Value); err != nil {
			return bodyTuple{}, errors.Wrapf(err, "writing form field of '%s'", field.Name)
		}
	}
	for _, field := range in.Body.Files {
		if err := writeFilePart(writer, field); err != nil {
			return bodyTuple{}, err
		}
	}
	if err := writer.Close(); err != nil {
		return bodyTuple{}, errors.Wrap(err, "finishing multipart body")
	}

	return bodyTuple{
		raw:         buf.Bytes(),
		contentType: writer.FormDataContentType(),
	}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFilePart(writer *multipart.Writer, field input.Field) error {
	file, err := os.Open(field.Value)
	if err != nil {
		return errors.Wrapf(err, "opening form file of '%s'", field.Name)
	}
	defer file.Close()

	contentType := mime.TypeByExtension(filepath.Ext(field.Value))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field.Name), quoteEscaper.Replace(filepath.Base(field.Value))))
	h.Set("Content-Type", contentType)

	part, err := writer.CreatePart(h)
	if err != nil {
		return errors.Wrapf(err, "creating form file part of '%s'", field.Name)
	}
	if _, err := io.Copy(part, file); err != nil {
		return errors.Wrapf(err, "reading form file of '%s'", field.Name)
	}
	return nil
}

// dedupeFields applies the duplicate-key policy: the last value wins, kept
// at the position of the first occurrence.
func dedupeFields(fields []input.Field) []input.Field {
	index := make(map[string]int, len(fields))
	result := make([]input.Field, 0, len(fields))
	for _, field := range fields {
		if i, ok := index[field.Name]; ok {
			result[i].Value = field.Value
			continue
		}
		index[field.Name] = len(result)
		result = append(result, field)
	}
	return result
}

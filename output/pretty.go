package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"mime"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/logrusorgru/aurora"
	"github.com/pkg/errors"
)

const indentWidth = 4

type PrettyPrinter struct {
	writer        io.Writer
	plain         Printer
	aurora        aurora.Aurora
	enableColor   bool
	headerPalette *HeaderPalette
}

type PrettyPrinterConfig struct {
	Writer      io.Writer
	EnableColor bool
}

type HeaderPalette struct {
	Method         aurora.Color
	URL            aurora.Color
	Proto          aurora.Color
	Status         aurora.Color
	FieldName      aurora.Color
	FieldValue     aurora.Color
	FieldSeparator aurora.Color
}

var defaultHeaderPalette = HeaderPalette{
	Method:         aurora.CyanFg,
	URL:            aurora.CyanFg,
	Proto:          aurora.BlueFg,
	Status:         aurora.BrownFg | aurora.BoldFm,
	FieldName:      aurora.GrayFg,
	FieldValue:     aurora.CyanFg,
	FieldSeparator: aurora.GrayFg,
}

func NewPrettyPrinter(config PrettyPrinterConfig) Printer {
	return &PrettyPrinter{
		writer:        config.Writer,
		plain:         NewPlainPrinter(config.Writer),
		aurora:        aurora.NewAurora(config.EnableColor),
		enableColor:   config.EnableColor,
		headerPalette: &defaultHeaderPalette,
	}
}

func (p *PrettyPrinter) PrintStatusLine(proto string, status string, statusCode int) error {
	fmt.Fprintf(p.writer, "%s %s\n",
		p.aurora.Colorize(proto, p.headerPalette.Proto),
		p.aurora.Colorize(status, p.headerPalette.Status))
	return nil
}

func (p *PrettyPrinter) PrintRequestLine(request *http.Request) error {
	fmt.Fprintf(p.writer, "%s %s %s\n",
		p.aurora.Colorize(request.Method, p.headerPalette.Method),
		p.aurora.Colorize(request.URL, p.headerPalette.URL),
		p.aurora.Colorize(requestProto(request), p.headerPalette.Proto))
	return nil
}

func (p *PrettyPrinter) PrintHeader(header http.Header) error {
	// http.Header does not retain wire order, so sorted names are the only
	// deterministic rendering available.
	var names []string
	for name := range header {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, value := range header[name] {
			fmt.Fprintf(p.writer, "%s%s %s\n",
				p.aurora.Colorize(name, p.headerPalette.FieldName),
				p.aurora.Colorize(":", p.headerPalette.FieldSeparator),
				p.aurora.Colorize(value, p.headerPalette.FieldValue))
		}
	}

	fmt.Fprintln(p.writer)
	return nil
}

func (p *PrettyPrinter) PrintBody(body io.Reader, contentType string) error {
	switch {
	case isJSON(contentType):
		return p.printJSON(body)
	case isHTML(contentType):
		return p.printHighlighted(body, "html")
	default:
		// Fallback to PlainPrinter
		return p.plain.PrintBody(body, contentType)
	}
}

func (p *PrettyPrinter) printJSON(body io.Reader) error {
	raw, err := ioutil.ReadAll(body)
	if err != nil {
		return errors.Wrap(err, "reading response body")
	}
	if !json.Valid(raw) {
		// Not well-formed; emit the bytes untouched.
		_, err := p.writer.Write(raw)
		return err
	}

	var formatted bytes.Buffer
	if err := formatJSON(&formatted, raw); err != nil {
		_, err := p.writer.Write(raw)
		return err
	}
	return p.highlight(formatted.String(), "json")
}

func (p *PrettyPrinter) printHighlighted(body io.Reader, lexer string) error {
	raw, err := ioutil.ReadAll(body)
	if err != nil {
		return errors.Wrap(err, "reading response body")
	}
	return p.highlight(string(raw), lexer)
}

func (p *PrettyPrinter) highlight(source string, lexer string) error {
	if !p.enableColor {
		_, err := io.WriteString(p.writer, source)
		return err
	}
	if err := quick.Highlight(p.writer, source, lexer, "terminal256", "monokai"); err != nil {
		_, err := io.WriteString(p.writer, source)
		return err
	}
	return nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html"
}

// formatJSON re-indents a JSON document going through the token stream, so
// that object keys keep the order they arrived in. Unmarshalling into a map
// would re-sort them, which is user-observable.
func formatJSON(dst *bytes.Buffer, src []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(src))
	decoder.UseNumber()
	if err := formatValue(decoder, dst, 0); err != nil {
		return err
	}
	dst.WriteByte('\n')
	return nil
}

func formatValue(decoder *json.Decoder, dst *bytes.Buffer, depth int) error {
	token, err := decoder.Token()
	if err != nil {
		return err
	}
	switch token := token.(type) {
	case json.Delim:
		switch token {
		case '{':
			return formatObject(decoder, dst, depth)
		case '[':
			return formatArray(decoder, dst, depth)
		default:
			return errors.Errorf("unexpected token: %v", token)
		}
	case string:
		dst.Write(encodeJSONString(token))
	case json.Number:
		dst.WriteString(token.String())
	case bool:
		dst.WriteString(strconv.FormatBool(token))
	case nil:
		dst.WriteString("null")
	}
	return nil
}

func formatObject(decoder *json.Decoder, dst *bytes.Buffer, depth int) error {
	wroteAny := false
	for {
		token, err := decoder.Token()
		if err != nil {
			return err
		}
		if delim, ok := token.(json.Delim); ok && delim == '}' {
			if !wroteAny {
				dst.WriteString("{}")
				return nil
			}
			dst.WriteByte('\n')
			writeIndent(dst, depth)
			dst.WriteByte('}')
			return nil
		}
		if wroteAny {
			dst.WriteString(",\n")
		} else {
			dst.WriteString("{\n")
			wroteAny = true
		}
		writeIndent(dst, depth+1)
		dst.Write(encodeJSONString(token.(string)))
		dst.WriteString(": ")
		if err := formatValue(decoder, dst, depth+1); err != nil {
			return err
		}
	}
}

func formatArray(decoder *json.Decoder, dst *bytes.Buffer, depth int) error {
	wroteAny := false
	for {
		if !decoder.More() {
			// Consume the closing bracket.
			if _, err := decoder.Token(); err != nil {
				return err
			}
			if !wroteAny {
				dst.WriteString("[]")
				return nil
			}
			dst.WriteByte('\n')
			writeIndent(dst, depth)
			dst.WriteByte(']')
			return nil
		}
		if wroteAny {
			dst.WriteString(",\n")
		} else {
			dst.WriteString("[\n")
			wroteAny = true
		}
		writeIndent(dst, depth+1)
		if err := formatValue(decoder, dst, depth+1); err != nil {
			return err
		}
	}
}

func writeIndent(dst *bytes.Buffer, depth int) {
	for i := 0; i < depth*indentWidth; i++ {
		dst.WriteByte(' ')
	}
}

func encodeJSONString(s string) []byte {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(s); err != nil {
		// Encoding a plain string cannot fail.
		panic(err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n")
}

package output

import (
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/pkg/errors"
)

// PlainPrinter writes everything verbatim. It is the printer of choice when
// stdout is not a terminal: piped response bodies stay byte-for-byte intact.
type PlainPrinter struct {
	writer io.Writer
}

func NewPlainPrinter(writer io.Writer) Printer {
	return &PlainPrinter{
		writer: writer,
	}
}

func (p *PlainPrinter) PrintStatusLine(proto string, status string, statusCode int) error {
	fmt.Fprintf(p.writer, "%s %s\n", proto, status)
	return nil
}

func (p *PlainPrinter) PrintRequestLine(request *http.Request) error {
	fmt.Fprintf(p.writer, "%s %s %s\n", request.Method, request.URL, requestProto(request))
	return nil
}

func requestProto(request *http.Request) string {
	if request.Proto == "" {
		return "HTTP/1.1"
	}
	return request.Proto
}

func (p *PlainPrinter) PrintHeader(header http.Header) error {
	// http.Header does not retain wire order, so sorted names are the only
	// deterministic rendering available.
	var names []string
	for name := range header {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, value := range header[name] {
			fmt.Fprintf(p.writer, "%s: %s\n", name, value)
		}
	}
	fmt.Fprintln(p.writer)
	return nil
}

func (p *PlainPrinter) PrintBody(body io.Reader, contentType string) error {
	_, err := io.Copy(p.writer, body)
	if err != nil {
		return errors.Wrap(err, "printing response body")
	}
	return nil
}

package httprs

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/ethanbai/httprs/exchange"
	"github.com/ethanbai/httprs/flags"
	"github.com/ethanbai/httprs/input"
	"github.com/ethanbai/httprs/output"
	"github.com/pkg/errors"
)

func Main() error {
	// Parse flags
	args, usage, optionSet, err := flags.Parse(os.Args)
	if err != nil {
		return err
	}

	// Parse positional arguments
	in, err := input.ParseArgs(args)
	if _, ok := errors.Cause(err).(*input.UsageError); ok {
		usage.PrintUsage(os.Stderr)
		return err
	}
	if err != nil {
		return err
	}

	dropBodyOnBodylessMethod(in, os.Stderr)

	// Build request
	request, err := exchange.BuildHTTPRequest(in, &optionSet.ExchangeOptions)
	if err != nil {
		return err
	}

	writer := bufio.NewWriter(os.Stdout)
	defer writer.Flush()
	printer := newPrinter(writer, &optionSet.OutputOptions)

	// Echo the outgoing request before anything goes on the wire
	if err := printRequest(writer, printer, request, &optionSet.OutputOptions); err != nil {
		return err
	}
	writer.Flush()

	// Send request and receive response
	timer := newTimer()
	resp, err := exchange.SendRequest(request, &optionSet.ExchangeOptions)
	if err != nil {
		return err
	}
	timer.markFirstByte()
	defer resp.Body.Close()

	// Download mode routes the body to a file, never to the printer
	var renderErr error
	if optionSet.OutputOptions.Download {
		fileWriter := output.NewFileWriter(request.URL, &optionSet.OutputOptions)
		renderErr = fileWriter.Download(resp)
	} else {
		renderErr = printResponse(printer, resp, &optionSet.OutputOptions)
	}
	if renderErr != nil {
		return renderErr
	}

	writer.Flush()
	if optionSet.OutputOptions.PrintTiming {
		timer.printSummary(os.Stderr)
	}
	return nil
}

func newPrinter(writer io.Writer, options *output.Options) output.Printer {
	if options.EnableFormat {
		return output.NewPrettyPrinter(output.PrettyPrinterConfig{
			Writer:      writer,
			EnableColor: options.EnableColor,
		})
	}
	return output.NewPlainPrinter(writer)
}

// dropBodyOnBodylessMethod warns about and discards data fields on methods
// that do not carry a request body.
func dropBodyOnBodylessMethod(in *input.Request, warnOut io.Writer) {
	switch in.Method {
	case "GET", "HEAD", "OPTIONS":
	default:
		return
	}
	if len(in.Body.Fields) == 0 {
		return
	}
	for _, field := range in.Body.Fields {
		fmt.Fprintf(warnOut, "Warning: ignoring body field '%s' in %s request\n", field.Name, in.Method)
	}
	in.Body.Fields = nil
	in.Body.BodyType = input.DetectBodyType(nil, in.Body.Files)
}

func printRequest(writer io.Writer, printer output.Printer, request *http.Request, options *output.Options) error {
	if options.PrintRequestHeader {
		if err := printer.PrintRequestLine(request); err != nil {
			return err
		}
		if err := printer.PrintHeader(maskAuthorization(request.Header)); err != nil {
			return err
		}
	}
	if options.PrintRequestBody && request.GetBody != nil {
		body, err := request.GetBody()
		if err != nil {
			return err
		}
		defer body.Close()
		if err := printer.PrintBody(body, request.Header.Get("Content-Type")); err != nil {
			return err
		}
		fmt.Fprintln(writer)
	}
	return nil
}

// maskAuthorization hides the middle of long credentials in the echo.
func maskAuthorization(header http.Header) http.Header {
	value := header.Get("Authorization")
	if len(value) <= 20 {
		return header
	}
	masked := header.Clone()
	masked.Set("Authorization", value[:10]+"..."+value[len(value)-5:])
	return masked
}

func printResponse(printer output.Printer, resp *http.Response, options *output.Options) error {
	if options.PrintResponseHeader {
		if err := printer.PrintStatusLine(resp.Proto, resp.Status, resp.StatusCode); err != nil {
			return err
		}
		if err := printer.PrintHeader(resp.Header); err != nil {
			return err
		}
	}
	if options.PrintResponseBody {
		if err := printer.PrintBody(resp.Body, resp.Header.Get("Content-Type")); err != nil {
			return err
		}
	}
	return nil
}

package flags

import (
	"io"
	"os"
	"regexp"
	"time"

	"github.com/ethanbai/httprs/exchange"
	"github.com/ethanbai/httprs/output"
	"github.com/mattn/go-isatty"
	"github.com/pborman/getopt"
	"github.com/pkg/errors"
)

var reNumber = regexp.MustCompile(`^[0-9.]+$`)

type Usage interface {
	PrintUsage(w io.Writer)
}

type OptionSet struct {
	ExchangeOptions exchange.Options
	OutputOptions   output.Options
}

type terminalInfo struct {
	stdoutIsTerminal bool
}

func Parse(args []string) ([]string, Usage, *OptionSet, error) {
	return parse(args, terminalInfo{
		stdoutIsTerminal: isatty.IsTerminal(os.Stdout.Fd()),
	})
}

func parse(args []string, terminalInfo terminalInfo) ([]string, Usage, *OptionSet, error) {
	exchangeOptions := exchange.Options{}
	outputOptions := output.Options{}
	var authFlag string
	var verboseFlag bool
	var downloadFlag bool
	var headersFlag bool
	var bodyFlag bool
	maxRedirects := exchange.DefaultMaxRedirects
	timeout := "30"

	flagSet := getopt.New()
	flagSet.SetParameters("METHOD URL [REQUEST_ITEM [REQUEST_ITEM ...]]")
	flagSet.StringVarLong(&authFlag, "auth", 'a', "credentials: user:password for Basic, anything else is a bearer token")
	flagSet.BoolVarLong(&verboseFlag, "verbose", 'v', "also print the outgoing request")
	flagSet.BoolVarLong(&downloadFlag, "download", 'd', "save the response body to a file instead of printing it")
	flagSet.StringVarLong(&outputOptions.OutputFile, "output", 'o', "download target path (implies --download)")
	flagSet.BoolVarLong(&exchangeOptions.FollowRedirects, "follow", 'F', "follow redirects")
	flagSet.IntVarLong(&maxRedirects, "max-redirects", 0, "maximum number of redirect hops when following")
	flagSet.StringVarLong(&timeout, "timeout", 0, "request timeout in seconds")
	flagSet.BoolVarLong(&headersFlag, "headers", 0, "print only the response status line and headers")
	flagSet.BoolVarLong(&bodyFlag, "body", 0, "print only the response body")
	flagSet.Parse(args)

	if headersFlag && bodyFlag {
		return nil, nil, nil, errors.New("--headers and --body cannot be used together")
	}

	if authFlag != "" {
		exchangeOptions.Auth = exchange.ParseAuth(authFlag)
	}
	exchangeOptions.MaxRedirects = maxRedirects

	// Parse --timeout
	d, err := parseDurationOrSeconds(timeout)
	if err != nil {
		return nil, nil, nil, err
	}
	exchangeOptions.Timeout = d

	outputOptions.Download = downloadFlag || outputOptions.OutputFile != ""

	// Render mode
	switch {
	case headersFlag:
		outputOptions.PrintResponseHeader = true
	case bodyFlag:
		outputOptions.PrintResponseBody = true
	case terminalInfo.stdoutIsTerminal:
		outputOptions.PrintResponseHeader = true
		outputOptions.PrintResponseBody = true
	default:
		outputOptions.PrintResponseBody = true
	}
	if verboseFlag {
		outputOptions.PrintRequestHeader = true
		outputOptions.PrintRequestBody = true
		outputOptions.PrintTiming = true
	}

	// Color and formatting are decided once, here; printers never ask again.
	outputOptions.EnableColor = terminalInfo.stdoutIsTerminal
	outputOptions.EnableFormat = terminalInfo.stdoutIsTerminal

	optionSet := &OptionSet{
		ExchangeOptions: exchangeOptions,
		OutputOptions:   outputOptions,
	}
	return flagSet.Args(), flagSet, optionSet, nil
}

func parseDurationOrSeconds(timeout string) (time.Duration, error) {
	if reNumber.MatchString(timeout) {
		timeout += "s"
	}
	d, err := time.ParseDuration(timeout)
	if err != nil {
		return time.Duration(0), errors.Errorf("Value of --timeout must be a number or duration string: %v", timeout)
	}
	return d, nil
}

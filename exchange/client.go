package exchange

import (
	"net/http"

	"github.com/pkg/errors"
)

const DefaultMaxRedirects = 10

func BuildHTTPClient(options *Options) *http.Client {
	checkRedirect := func(req *http.Request, via []*http.Request) error {
		// Do not follow redirects
		return http.ErrUseLastResponse
	}
	if options.FollowRedirects {
		max := options.MaxRedirects
		if max <= 0 {
			max = DefaultMaxRedirects
		}
		checkRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= max {
				return errors.Errorf("stopped after %d redirects", max)
			}
			return nil
		}
	}

	return &http.Client{
		CheckRedirect: checkRedirect,
		Timeout:       options.Timeout,
	}
}

package exchange

import (
	"net/http"

	"github.com/pkg/errors"
)

func SendRequest(r *http.Request, options *Options) (*http.Response, error) {
	client := BuildHTTPClient(options)

	resp, err := client.Do(r)
	if err != nil {
		return nil, errors.Wrap(err, "sending HTTP request")
	}
	return resp, nil
}

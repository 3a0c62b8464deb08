package exchange

import "time"

type Options struct {
	Timeout         time.Duration
	FollowRedirects bool
	MaxRedirects    int
	Auth            Auth
}

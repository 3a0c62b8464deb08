package exchange

import (
	"encoding/base64"
	"strings"
)

type AuthType int

const (
	NoAuth AuthType = iota
	BasicAuth
	BearerAuth
)

// Auth is the resolved authorization scheme of one request.
type Auth struct {
	Type     AuthType
	UserName string
	Password string
	Token    string
}

// ParseAuth resolves the -a credential string: "user:password" means Basic,
// anything without a colon is a bearer token. This is a local heuristic;
// the server's WWW-Authenticate is never consulted.
func ParseAuth(credential string) Auth {
	if i := strings.IndexByte(credential, ':'); i >= 0 {
		return Auth{
			Type:     BasicAuth,
			UserName: credential[:i],
			Password: credential[i+1:],
		}
	}
	return Auth{Type: BearerAuth, Token: credential}
}

// HeaderValue serializes to exactly one Authorization header value.
func (a Auth) HeaderValue() string {
	switch a.Type {
	case BasicAuth:
		credentials := a.UserName + ":" + a.Password
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
	case BearerAuth:
		return "Bearer " + a.Token
	default:
		return ""
	}
}

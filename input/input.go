package input

import "net/url"

// Request is the fully assembled description of an outgoing HTTP request
// before it is handed to the transport. It is immutable after ParseArgs.
type Request struct {
	Method     Method
	URL        *url.URL
	Parameters []Field
	Header     Header
	Body       Body
}

type Method string

type Header struct {
	Fields []Field
}

type BodyType int

const (
	EmptyBody BodyType = iota
	JSONBody
	MultipartBody
)

type Body struct {
	BodyType BodyType
	Fields   []Field // JSON fields; sent as text parts when the body is multipart
	Files    []Field // file parts; Value is a path on disk
}

type Field struct {
	Name  string
	Value string
}

// DetectBodyType is the body-encoding decision table: any file part forces
// multipart for the whole body, otherwise any data field means a single JSON
// object, otherwise the body is empty.
func DetectBodyType(fields, files []Field) BodyType {
	switch {
	case len(files) > 0:
		return MultipartBody
	case len(fields) > 0:
		return JSONBody
	default:
		return EmptyBody
	}
}

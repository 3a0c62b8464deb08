package output

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"code.cloudfoundry.org/bytefmt"
	"github.com/pkg/errors"
)

const defaultFilename = "index.html"

// FileWriter streams a response body to a file on disk, reporting progress
// on stderr. When active, the body is never also rendered.
type FileWriter struct {
	url         *url.URL
	outputFile  string
	progressOut io.Writer
}

func NewFileWriter(u *url.URL, options *Options) *FileWriter {
	return &FileWriter{
		url:         u,
		outputFile:  options.OutputFile,
		progressOut: os.Stderr,
	}
}

// filename resolves the download target: explicit -o path, then the
// Content-Disposition filename, then the last non-empty URL path segment,
// then index.html. Derived names never clobber an existing file.
func (f *FileWriter) filename(resp *http.Response) string {
	if f.outputFile != "" {
		return f.outputFile
	}
	name := filenameFromHeader(resp.Header)
	if name == "" {
		name = filenameFromURL(f.url)
	}
	return makeNonOverlappingFilename(name)
}

func filenameFromHeader(header http.Header) string {
	contentDisposition := header.Get("Content-Disposition")
	if contentDisposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentDisposition)
	if err != nil {
		return ""
	}
	if name := params["filename"]; name != "" {
		// Strip any directory components a hostile server may send.
		return filepath.Base(name)
	}
	return ""
}

func filenameFromURL(u *url.URL) string {
	segments := strings.Split(u.Path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return defaultFilename
}

func makeNonOverlappingFilename(path string) string {
	_, err := os.Stat(path)
	if err == nil {
		re := regexp.MustCompile(`\.(\d+)$`)
		newPath := re.ReplaceAllStringFunc(path, func(index string) string {
			i, err := strconv.Atoi(strings.TrimPrefix(index, "."))
			if err != nil {
				panic(err)
			}
			i++
			return fmt.Sprintf(".%d", i)
		})
		if path == newPath {
			path = fmt.Sprintf("%s.%d", path, 1)
		} else {
			path = newPath
		}
		path = makeNonOverlappingFilename(path)
	}
	return path
}

// Download copies the response stream to the target file. On a write failure
// the partial file is left in place.
func (f *FileWriter) Download(resp *http.Response) error {
	name := f.filename(resp)

	file, err := os.Create(name)
	if err != nil {
		return errors.Wrapf(err, "creating '%s'", name)
	}
	defer file.Close()

	contentLength := resp.ContentLength
	buf := make([]byte, 32*1024)
	var total int64

	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := file.Write(buf[:n]); err != nil {
				return errors.Wrapf(err, "writing to '%s'", name)
			}
			total += int64(n)
			f.printProgress(name, total, contentLength)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return errors.Wrapf(readErr, "downloading '%s'", name)
		}
	}

	fmt.Fprintf(f.progressOut, "\nDone. %s written to '%s'\n", bytefmt.ByteSize(uint64(total)), name)
	return nil
}

func (f *FileWriter) printProgress(name string, total, contentLength int64) {
	if contentLength > 0 {
		percentage := total * 100 / contentLength
		fmt.Fprintf(f.progressOut, "\rDownloading '%s': %s / %s (%d%%)",
			name, bytefmt.ByteSize(uint64(total)), bytefmt.ByteSize(uint64(contentLength)), percentage)
	} else {
		fmt.Fprintf(f.progressOut, "\rDownloading '%s': %s",
			name, bytefmt.ByteSize(uint64(total)))
	}
}

package content

import (
	"bytes"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// candidateRe matches anything which could be a class name: a run of
// characters other than quotes, angle brackets and whitespace not ending
// with the separator.
var candidateRe = regexp.MustCompile("[^<>\"'`\\s]*[^<>\"'`\\s:]")

// Extract returns class candidates from file content. Markup is parsed and
// only class attributes are considered, everything else is scanned as text.
func Extract(name string, r io.Reader) ([]string, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".html", ".htm", ".xhtml":
		return ExtractHTML(r)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ExtractText(data), nil
}

// ExtractHTML returns words of every class attribute in the document.
func ExtractHTML(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	var out []string
	doc.Find("[class]").Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr("class"); ok {
			out = append(out, strings.Fields(v)...)
		}
	})
	return out, nil
}

// ExtractText returns every token of data which looks like a class name.
func ExtractText(data []byte) []string {
	matches := candidateRe.FindAll(data, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		m = bytes.TrimRight(m, ".,;")
		if len(m) > 0 {
			out = append(out, string(m))
		}
	}
	return out
}

package extract

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// pageSource yields the plain text of numbered pages (1-based).
type pageSource interface {
	NumPage() int
	PageText(i int) (string, error)
}

// openPDF is swapped in tests.
var openPDF = func(data []byte) (pageSource, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return ledongthucSource{r: r}, nil
}

type ledongthucSource struct {
	r *pdf.Reader
}

func (s ledongthucSource) NumPage() int { return s.r.NumPage() }

func (s ledongthucSource) PageText(i int) (string, error) {
	p := s.r.Page(i)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}

func pdfPageTexts(ctx context.Context, data []byte) (pages []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pages, err = nil, corrupt("pdf", fmt.Errorf("panic: %v", rec))
		}
	}()

	src, err := openPDF(data)
	if err != nil {
		return nil, corrupt("pdf", err)
	}
	n := src.NumPage()
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages = append(pages, pageText(src, i))
	}
	return pages, nil
}

// pageText never fails: an unreadable or image-only page yields "".
func pageText(src pageSource, i int) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
		}
	}()
	t, err := src.PageText(i)
	if err != nil {
		return ""
	}
	return t
}

package sources

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/docs/v1"
	"google.golang.org/api/option"
)

// DocSource reads the concept text from a Google Doc
type DocSource struct {
	service *docs.Service
	docID   string
}

// NewDocSource creates a read-only Docs client. Credentials are passed in opts.
func NewDocSource(ctx context.Context, docID string, opts ...option.ClientOption) (*DocSource, error) {
	opts = append(opts, option.WithScopes(docs.DocumentsReadonlyScope))
	service, err := docs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("docs.NewService > %w", err)
	}

	return &DocSource{service: service, docID: docID}, nil
}

// FetchText returns the document body as one string
func (s *DocSource) FetchText(ctx context.Context) (string, error) {
	doc, err := s.service.Documents.Get(s.docID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("documents.get > %w", err)
	}
	return DocumentText(doc), nil
}

// DocumentText concatenates the text runs of every body paragraph in order.
// Tables and other structural elements are skipped.
func DocumentText(doc *docs.Document) string {
	if doc == nil || doc.Body == nil {
		return ""
	}

	var b strings.Builder
	for _, item := range doc.Body.Content {
		if item == nil || item.Paragraph == nil {
			continue
		}
		for _, el := range item.Paragraph.Elements {
			if el == nil || el.TextRun == nil {
				continue
			}
			b.WriteString(el.TextRun.Content)
		}
	}
	return b.String()
}

package util

import (
	"fmt"
	"net/http"
	"path"
	"strings"
)

var deckContentTypes = map[string]string{
	".pdf":  "application/pdf",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// ObjectKey joins a slash-separated namespace and a file name into a storage
// key such as "decks/<id>/deck.pdf". Every segment is sanitized.
func ObjectKey(namespace, fileName string) (string, error) {
	var parts []string
	for _, seg := range strings.Split(strings.Trim(namespace, "/"), "/") {
		if seg == "" {
			continue
		}
		clean, err := SanitizeFileName(seg)
		if err != nil {
			return "", fmt.Errorf("namespace %q: %w", namespace, err)
		}
		parts = append(parts, clean)
	}
	name, err := SanitizeFileName(fileName)
	if err != nil {
		return "", err
	}
	return path.Join(append(parts, name)...), nil
}

// ContentType picks the MIME type for a stored upload. Deck extensions are
// mapped directly since sniffing reports a PPTX as a plain zip.
func ContentType(fileName string, head []byte) string {
	if ct, ok := deckContentTypes[strings.ToLower(path.Ext(fileName))]; ok {
		return ct
	}
	return http.DetectContentType(head)
}

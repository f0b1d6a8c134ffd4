package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	nsDrawing      = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPresentation = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsRelationship = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	presentationPart = "ppt/presentation.xml"
	presentationRels = "ppt/_rels/presentation.xml.rels"
)

var slidePartRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

func pptxShapeTexts(ctx context.Context, data []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, corrupt("pptx", err)
	}
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	order, err := slideOrder(files)
	if err != nil {
		return nil, corrupt("pptx", err)
	}

	var shapes []string
	for _, name := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, ok := files[name]
		if !ok {
			continue
		}
		slideShapes, err := readSlideShapes(f)
		if err != nil {
			return nil, corrupt("pptx", fmt.Errorf("%s: %w", name, err))
		}
		shapes = append(shapes, slideShapes...)
	}
	return shapes, nil
}

// slideOrder follows the presentation's slide id list. Decks without a
// readable list fall back to numeric part order.
func slideOrder(files map[string]*zip.File) ([]string, error) {
	if _, ok := files[presentationPart]; !ok {
		return nil, errors.New("missing " + presentationPart)
	}
	if order := orderFromPresentation(files); len(order) > 0 {
		return order, nil
	}

	type numbered struct {
		n    int
		name string
	}
	var parts []numbered
	for name := range files {
		m := slidePartRe.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		parts = append(parts, numbered{n: n, name: name})
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].n < parts[j].n })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, p.name)
	}
	return out, nil
}

type presentationXML struct {
	SlideIDs []struct {
		RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sldIdLst>sldId"`
}

type relationshipsXML struct {
	Relationships []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

func orderFromPresentation(files map[string]*zip.File) []string {
	var pres presentationXML
	if err := decodePart(files[presentationPart], &pres); err != nil {
		return nil
	}
	relsFile, ok := files[presentationRels]
	if !ok {
		return nil
	}
	var rels relationshipsXML
	if err := decodePart(relsFile, &rels); err != nil {
		return nil
	}
	targets := make(map[string]string, len(rels.Relationships))
	for _, r := range rels.Relationships {
		targets[r.ID] = resolvePartTarget(r.Target)
	}

	out := make([]string, 0, len(pres.SlideIDs))
	for _, s := range pres.SlideIDs {
		if target, ok := targets[s.RID]; ok {
			out = append(out, target)
		}
	}
	return out
}

// resolvePartTarget resolves a relationship target against the ppt/ folder.
func resolvePartTarget(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Join("ppt", target)
}

func decodePart(f *zip.File, v any) error {
	if f == nil {
		return errors.New("missing part")
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return xml.NewDecoder(rc).Decode(v)
}

// readSlideShapes returns the text of every p:sp on the slide in document
// order, including shapes nested in groups. Paragraphs join with "\n".
func readSlideShapes(f *zip.File) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var (
		shapes     []string
		depth      int
		paragraphs []string
		para       strings.Builder
		inPara     bool
		inText     bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Space == nsPresentation && t.Name.Local == "sp":
				if depth == 0 {
					paragraphs = paragraphs[:0]
				}
				depth++
			case depth > 0 && t.Name.Space == nsDrawing && t.Name.Local == "p":
				inPara = true
				para.Reset()
			case inPara && t.Name.Space == nsDrawing && t.Name.Local == "t":
				inText = true
			case inPara && t.Name.Space == nsDrawing && t.Name.Local == "br":
				para.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		case xml.EndElement:
			switch {
			case t.Name.Space == nsDrawing && t.Name.Local == "t":
				inText = false
			case inPara && t.Name.Space == nsDrawing && t.Name.Local == "p":
				inPara = false
				paragraphs = append(paragraphs, para.String())
			case depth > 0 && t.Name.Space == nsPresentation && t.Name.Local == "sp":
				depth--
				if depth == 0 {
					shapes = append(shapes, strings.Join(paragraphs, "\n"))
				}
			}
		}
	}
	return shapes, nil
}

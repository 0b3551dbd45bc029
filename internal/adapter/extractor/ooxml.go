package extractor

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"

	"kbrag/internal/domain"
)

// Both OOXML formats reduce to the same shape: zipped XML where visible
// text lives in <w:t>/<a:t> runs grouped into <w:p>/<a:p> paragraphs.

// DocxExtractor reads the main document part of Word files.
type DocxExtractor struct{}

func (e *DocxExtractor) Extract(filePath string) (string, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			text, err := collectTextRuns(f)
			if err != nil {
				return "", err
			}
			return text, nil
		}
	}
	return "", fmt.Errorf("%w: word/document.xml not found", domain.ErrExtractionFailed)
}

// PptxExtractor reads slide parts of PowerPoint files in slide order.
type PptxExtractor struct{}

func (e *PptxExtractor) Extract(filePath string) (string, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	defer zr.Close()

	var slides []*zip.File
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			slides = append(slides, f)
		}
	}
	if len(slides) == 0 {
		return "", fmt.Errorf("%w: no slides found", domain.ErrExtractionFailed)
	}

	// "slide10.xml" must sort after "slide2.xml".
	sort.Slice(slides, func(i, j int) bool {
		return slideNumber(slides[i].Name) < slideNumber(slides[j].Name)
	})

	var parts []string
	for _, f := range slides {
		text, err := collectTextRuns(f)
		if err != nil {
			return "", err
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n"), nil
}

func slideNumber(name string) int {
	base := path.Base(name)
	base = strings.TrimPrefix(base, "slide")
	base = strings.TrimSuffix(base, ".xml")
	n, err := strconv.Atoi(base)
	if err != nil {
		return 0
	}
	return n
}

// collectTextRuns streams an OOXML part, concatenating the character
// data of every <t> run and inserting a newline at each paragraph end.
func collectTextRuns(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	defer rc.Close()

	var sb strings.Builder
	dec := xml.NewDecoder(rc)
	inRun := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inRun = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inRun = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inRun {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil
}

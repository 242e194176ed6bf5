// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package document extracts plain text from chat attachments.
package document

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
)

// ErrUnsupportedType is returned for attachment types that cannot be
// extracted. The attachment is reported and ignored, never fatal.
var ErrUnsupportedType = errors.New("unsupported attachment type")

// SupportedExtensions lists the attachment types Extract handles.
var SupportedExtensions = []string{".txt", ".pdf", ".docx"}

// =============================================================================
// EXTRACTION
// =============================================================================

// Extract returns the plain text of the file at path, dispatching on its
// extension. Unknown extensions yield ErrUnsupportedType.
func Extract(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".txt":
		return extractTxt(path)
	case ".pdf":
		return extractPDF(path)
	case ".docx":
		return extractDocx(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}
}

// extractTxt reads a plain text file.
func extractTxt(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading text file: %w", err)
	}
	return string(data), nil
}

// extractPDF concatenates the plain text of every page, one page per line.
// Pages that fail to extract are skipped.
func extractPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			log.Warn().Str("path", path).Int("page", i).Err(err).Msg("skipping unreadable PDF page")
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// extractDocx pulls paragraph text out of word/document.xml. DOCX is a zip
// container; the main document part is WordprocessingML where runs of text
// live in <w:t> elements grouped into <w:p> paragraphs.
func extractDocx(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("opening DOCX container: %w", err)
	}
	defer archive.Close()

	var docFile *zip.File
	for _, file := range archive.File {
		if file.Name == "word/document.xml" {
			docFile = file
			break
		}
	}
	if docFile == nil {
		return "", errors.New("DOCX container has no word/document.xml")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("opening DOCX document part: %w", err)
	}
	defer rc.Close()

	return docxText(rc)
}

// docxText walks the WordprocessingML token stream, collecting text runs and
// emitting a newline at each paragraph end.
func docxText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var sb strings.Builder
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parsing DOCX document part: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(el)
			}
		}
	}

	return sb.String(), nil
}

package services

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github/itish2003/meetassist/transcripts"

	"github.com/ledongthuc/pdf"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

var ErrUnsupportedFile = errors.New("unsupported file type")

var (
	cueTiming  = regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})?[.,]\d{3}\s+-->`)
	cueNumber  = regexp.MustCompile(`^\d+$`)
	voiceTag   = regexp.MustCompile(`^<v(?:\.[^ >]*)?\s+([^>]+)>`)
	markupTags = regexp.MustCompile(`<[^>]+>`)
)

// Extractor turns transcript files into plain text.
type Extractor struct {
	unidocLicensed bool
}

// NewExtractor sets the UniDoc metered key when one is given. Without a
// valid key PDFs are read with the pure-Go ledongthuc/pdf reader instead.
func NewExtractor(unidocLicenseKey string) *Extractor {
	e := &Extractor{}
	if unidocLicenseKey == "" {
		return e
	}
	if err := license.SetMeteredKey(unidocLicenseKey); err != nil {
		log.Printf("EXTRACTOR WARN: Failed to set Unidoc license key: %v. Falling back to the basic PDF reader.", err)
		return e
	}
	e.unidocLicensed = true
	return e
}

// SupportedFile reports whether path has an extension the extractor reads.
func SupportedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".vtt", ".srt", ".pdf", ".json":
		return true
	default:
		return false
	}
}

// FormatForFile returns the transcript_format recorded for files of this type.
func FormatForFile(path string) string {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return transcripts.FormatCaptionsJSON
	case ".vtt", ".srt", ".pdf":
		return ext[1:]
	default:
		return "text"
	}
}

// ExtractTextFromFile reads a file and returns its text content.
// Caption JSON is returned raw; the ingest path formats it.
func (e *Extractor) ExtractTextFromFile(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".txt", ".md", ".json":
		content, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(content), nil
	case ".vtt", ".srt":
		content, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return StripSubtitleMarkup(string(content)), nil
	case ".pdf":
		if e.unidocLicensed {
			return extractTextWithUnidoc(path)
		}
		return extractTextWithPDFReader(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFile, ext)
	}
}

// StripSubtitleMarkup removes WEBVTT headers, cue numbers, timing lines and
// styling tags. A voice tag becomes a "Speaker: " prefix.
func StripSubtitleMarkup(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var out []string
	inNote := false
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(line, "\ufeff"))
		switch {
		case line == "":
			inNote = false
			continue
		case inNote:
			continue
		case strings.HasPrefix(line, "WEBVTT"), line == "NOTE", strings.HasPrefix(line, "NOTE "),
			line == "STYLE", line == "REGION":
			// header and comment blocks run until the next blank line
			inNote = true
			continue
		case cueNumber.MatchString(line), cueTiming.MatchString(line):
			continue
		}
		line = voiceTag.ReplaceAllString(line, "$1: ")
		line = strings.TrimSpace(markupTags.ReplaceAllString(line, ""))
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// extractTextWithUnidoc uses UniPDF to get all text from a PDF file.
func extractTextWithUnidoc(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	pdfReader, err := model.NewPdfReader(f)
	if err != nil {
		return "", err
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return "", err
		}
		ex, err := extractor.New(page)
		if err != nil {
			return "", err
		}
		text, err := ex.ExtractText()
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}
	return sb.String(), nil
}

func extractTextWithPDFReader(path string) (string, error) {
	f, rdr, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	plain, err := rdr.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

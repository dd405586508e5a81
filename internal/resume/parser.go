// Package resume stores uploaded resumes and extracts their plain text.
package resume

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
	"github.com/google/uuid"
)

// ErrUnsupportedType is returned for file extensions the parser cannot read.
var ErrUnsupportedType = errors.New("unsupported file type")

// ErrTooLarge is returned when an upload exceeds the size limit.
var ErrTooLarge = errors.New("file too large")

type Parser struct {
	uploadsDir string
	maxBytes   int64
}

type Document struct {
	Filename string
	FileType string
	Path     string
	Size     int64
	Text     string
}

// DefaultMaxBytes caps a single upload.
const DefaultMaxBytes = 10 << 20

func NewParser(uploadsDir string) *Parser {
	return &Parser{uploadsDir: uploadsDir, maxBytes: DefaultMaxBytes}
}

// Supported reports whether the extension of filename can be parsed.
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".docx", ".doc", ".rtf", ".odt", ".txt":
		return true
	}
	return false
}

// Parse saves the upload under a generated name and extracts its text.
func (p *Parser) Parse(filename string, reader io.Reader) (*Document, error) {
	fileType := strings.ToLower(filepath.Ext(filename))
	if !Supported(filename) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, fileType)
	}

	if err := os.MkdirAll(p.uploadsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}
	filePath := filepath.Join(p.uploadsDir, uuid.NewString()+fileType)

	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	size, err := io.Copy(file, io.LimitReader(reader, p.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}
	if size > p.maxBytes {
		os.Remove(filePath)
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrTooLarge, p.maxBytes)
	}

	var text string
	switch fileType {
	case ".txt":
		content, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read text file: %w", err)
		}
		text = string(content)
	default:
		res, err := docconv.ConvertPath(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to parse document: %w", err)
		}
		text = res.Body
	}

	return &Document{
		Filename: filepath.Base(filename),
		FileType: fileType,
		Path:     filePath,
		Size:     size,
		Text:     strings.TrimSpace(text),
	}, nil
}

// MatchSkills splits skills into those mentioned in text and those absent.
func MatchSkills(text string, skills []string) (found, missing []string) {
	lower := strings.ToLower(text)
	for _, skill := range skills {
		s := strings.TrimSpace(skill)
		if s == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(s)) {
			found = append(found, s)
		} else {
			missing = append(missing, s)
		}
	}
	return found, missing
}

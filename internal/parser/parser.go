package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rom111419/formtree/internal/errors" // Custom errors package
	"github.com/rom111419/formtree/internal/models"
	"github.com/rom111419/formtree/pkg/classifier"
)

// MaxNesting is the deepest nesting accepted in input documents. It matches the limit
// encoding/json enforces.
const MaxNesting = 10000

// Parse reads a JSON or YAML value from reader into a Document. With models.FormatAuto
// the format is detected from the content.
func Parse(reader io.Reader, format models.Format) (models.Document, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return models.Document{}, errors.NewInputError("failed to read input", err)
	}
	return ParseBytes(data, format)
}

// ParseBytes decodes data as format into a Document.
func ParseBytes(data []byte, format models.Format) (models.Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.Document{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}
	if format == "" || format == models.FormatAuto {
		format = DetectFormat(data)
	}

	var (
		root any
		err  error
	)
	switch format {
	case models.FormatJSON:
		root, err = decodeJSON(data)
	case models.FormatYAML:
		root, err = decodeYAML(data)
	default:
		return models.Document{}, errors.NewInputError(fmt.Sprintf("unsupported input format %q", format), errors.ErrUnsupportedFormat)
	}
	if err != nil {
		return models.Document{}, err
	}

	return models.Document{
		Root:     root,
		RootKind: classifier.Classify(root),
		Format:   format,
	}, nil
}

// ParseString parses a value from a string
func ParseString(input string, format models.Format) (models.Document, error) {
	if strings.TrimSpace(input) == "" {
		return models.Document{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return ParseBytes([]byte(input), format)
}

// ParseFile parses a value from a file path. With models.FormatAuto the format comes
// from the file extension, falling back to content detection.
func ParseFile(filePath string, format models.Format) (models.Document, error) {
	if strings.TrimSpace(filePath) == "" {
		return models.Document{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Document{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	if format == "" || format == models.FormatAuto {
		format = FormatFromPath(filePath)
	}
	doc, err := Parse(file, format)
	if err != nil {
		return models.Document{}, err
	}
	doc.Source = filePath
	return doc, nil
}

// FormatFromPath maps a file extension to a format, or FormatAuto if unknown.
func FormatFromPath(path string) models.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return models.FormatJSON
	case ".yaml", ".yml":
		return models.FormatYAML
	}
	return models.FormatAuto
}

// DetectFormat guesses the format from the first non-space byte. JSON documents start
// with an object, array or string; anything else is treated as YAML, which also covers
// bare JSON scalars.
func DetectFormat(data []byte) models.Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return models.FormatJSON
	}
	switch trimmed[0] {
	case '{', '[', '"':
		return models.FormatJSON
	}
	return models.FormatYAML
}

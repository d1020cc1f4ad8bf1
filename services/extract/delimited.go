package extract

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/upb/ciw-intake/models"
	"github.com/upb/ciw-intake/services"
	"github.com/upb/ciw-intake/services/pipeline"
	"go.uber.org/zap"
)

// Directive lines start with '#'. Any other '#' line is a comment.
const (
	directiveVersion   = "#ciw-version"
	directiveProtected = "#protected"
)

const maxLineBytes = 64 * 1024

// DelimitedExtractor reads the tab-delimited interchange file exported from
// the worksheet: one "tag<TAB>value" pair per line.
type DelimitedExtractor struct {
	supported map[string]bool
	logger    *zap.Logger
}

// NewDelimitedExtractor creates an extractor that accepts the given
// template versions in the #ciw-version header. With no versions, any
// header is accepted and the version gate is left to the pipeline.
func NewDelimitedExtractor(logger *zap.Logger, supportedVersions ...string) *DelimitedExtractor {
	supported := make(map[string]bool, len(supportedVersions))
	for _, v := range supportedVersions {
		supported[strings.TrimSpace(v)] = true
	}
	return &DelimitedExtractor{supported: supported, logger: logger}
}

// Extract reads path. A #protected marker yields ExtractPasswordProtected;
// an unsupported #ciw-version header or a line that is not a tag/value pair
// yields ExtractWrongVersion. I/O failures are returned as errors.
func (e *DelimitedExtractor) Extract(ctx context.Context, path string) ([]models.TaggedValue, pipeline.ExtractStatus, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pipeline.ExtractOK, services.WrapError(services.ErrFileNotFound, err)
		}
		return nil, pipeline.ExtractOK, services.WrapError(services.ErrExtractionFailed, err)
	}
	defer f.Close()

	var (
		values        []models.TaggedValue
		headerVersion string
		lineNo        int
	)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, pipeline.ExtractOK, err
		}
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			directive := strings.Fields(line)
			switch directive[0] {
			case directiveProtected:
				e.logger.Debug("worksheet is password protected", zap.String("path", path))
				return nil, pipeline.ExtractPasswordProtected, nil
			case directiveVersion:
				if len(directive) > 1 {
					headerVersion = directive[1]
				}
			}
			continue
		}

		tag, value, ok := strings.Cut(line, "\t")
		if !ok || strings.TrimSpace(tag) == "" {
			e.logger.Debug("line is not a tag/value pair",
				zap.String("path", path),
				zap.Int("line", lineNo))
			return nil, pipeline.ExtractWrongVersion, nil
		}
		values = append(values, models.TaggedValue{Tag: tag, Value: unescape(value)})
	}
	if err := scanner.Err(); err != nil {
		return nil, pipeline.ExtractOK, services.WrapError(services.ErrExtractionFailed,
			fmt.Errorf("failed to read %s: %w", path, err))
	}

	if headerVersion != "" {
		if len(e.supported) > 0 && !e.supported[headerVersion] {
			e.logger.Debug("unsupported worksheet template",
				zap.String("path", path),
				zap.String("version", headerVersion))
			return nil, pipeline.ExtractWrongVersion, nil
		}
		// The header stands in for a missing Version tag.
		values = append(values, models.TaggedValue{Tag: string(models.Version), Value: headerVersion})
	}

	return values, pipeline.ExtractOK, nil
}

// unescape decodes the \t, \n and \\ sequences the exporter writes for
// values that contain them.
func unescape(v string) string {
	if !strings.Contains(v, `\`) {
		return v
	}
	var b strings.Builder
	b.Grow(len(v))
	for i := 0; i < len(v); i++ {
		if v[i] != '\\' || i == len(v)-1 {
			b.WriteByte(v[i])
			continue
		}
		i++
		switch v[i] {
		case 't':
			b.WriteByte('\t')
		case 'n':
			b.WriteByte('\n')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte('\\')
			b.WriteByte(v[i])
		}
	}
	return b.String()
}

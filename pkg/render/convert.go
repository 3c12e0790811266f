package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	apperrors "github.com/matzehuels/attacktree/pkg/errors"
)

// Output formats.
const (
	FormatSVG = "svg"
	FormatPDF = "pdf"
	FormatPNG = "png"
	FormatDOT = "dot"
)

// Formats lists every supported output format.
var Formats = []string{FormatSVG, FormatPDF, FormatPNG, FormatDOT}

// ParseFormat validates a format name, case-insensitively.
func ParseFormat(s string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(s))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", apperrors.New(apperrors.ErrCodeInvalidFormat, "unknown format %q (must be one of %s)", s, strings.Join(Formats, ", "))
}

// converter is the external tool used for PDF and PNG output.
var converter = "rsvg-convert"

// ToPDF converts SVG bytes to PDF using rsvg-convert.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return rsvgConvert(ctx, svg, FormatPDF)
}

// ToPNG converts SVG bytes to PNG using rsvg-convert with the given scale factor.
// Scale of 2.0 produces a 2x resolution image.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return rsvgConvert(ctx, svg, FormatPNG, "-z", fmt.Sprintf("%.2f", scale))
}

// Available reports whether rsvg-convert is installed.
func Available() bool {
	_, err := exec.LookPath(converter)
	return err == nil
}

// rsvgConvert shells out to rsvg-convert for format conversion.
func rsvgConvert(ctx context.Context, svg []byte, format string, extraArgs ...string) ([]byte, error) {
	if !Available() {
		return nil, apperrors.New(apperrors.ErrCodeUnsupported,
			"%s export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin", format)
	}

	args := append([]string{"-f", format}, extraArgs...)
	cmd := exec.CommandContext(ctx, converter, args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "rsvg-convert: %s", strings.TrimSpace(errBuf.String()))
	}
	return out.Bytes(), nil
}

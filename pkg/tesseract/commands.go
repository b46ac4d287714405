package tesseract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Version returns the version of the installed tesseract binary.
func Version(ctx context.Context) (string, error) {
	out, stderr, err := execute(ctx, Input{}, []string{"--version"})
	if err != nil {
		return "", err
	}
	// tesseract <= 4 prints the version banner on stderr
	if len(out) == 0 {
		out = stderr
	}
	fields := strings.Fields(string(out))
	if len(fields) < 2 {
		return "", fmt.Errorf("unexpected version output: %q", string(out))
	}
	return fields[1], nil
}

// GetLanguages returns the installed traineddata languages,
// filtered against the set of known language and script codes.
func GetLanguages(ctx context.Context) ([]string, error) {
	out, _, err := execute(ctx, Input{}, []string{"--list-langs"})
	if err != nil {
		return nil, err
	}
	var langs []string
	for _, line := range strings.Split(string(out), "\n") {
		lang := strings.TrimSpace(line)
		if knownLanguages[lang] {
			langs = append(langs, lang)
		}
	}
	return langs, nil
}

// Parameters lists all Tesseract control parameters with their default
// value and a short description.
func Parameters(ctx context.Context) ([]Param, error) {
	out, _, err := execute(ctx, Input{}, []string{"--print-parameters"})
	if err != nil {
		return nil, err
	}
	return decodeParams(string(out)), nil
}

// ImageToText extracts the plain text of an image. The result is
// NFC-normalized UTF-8.
func ImageToText(ctx context.Context, in Input, opts ...Option) (string, error) {
	out, err := executeStdout(ctx, in, NewOptions(opts...))
	if err != nil {
		return "", err
	}
	return norm.NFC.String(string(out)), nil
}

// ImageToHOCR returns the hOCR (XHTML) representation of an image.
func ImageToHOCR(ctx context.Context, in Input, opts ...Option) (string, error) {
	out, err := executeStdout(ctx, in, NewOptions(opts...), "hocr")
	return string(out), err
}

// ImageToPDF generates a searchable PDF from an image.
func ImageToPDF(ctx context.Context, in Input, opts ...Option) ([]byte, error) {
	return executeStdout(ctx, in, NewOptions(opts...), "pdf")
}

// ImageToBoxes returns per-character bounding box estimates
// (`batch.nochop makebox`).
func ImageToBoxes(ctx context.Context, in Input, opts ...Option) ([]Box, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	o := NewOptions(opts...)
	argv := []string{in.token(), "stdout"}
	if o.Lang != "" {
		argv = append(argv, "-l", o.Lang)
	}
	argv = append(argv, "batch.nochop", "makebox")
	ctx, cancel := o.context(ctx)
	defer cancel()
	out, _, err := execute(ctx, in, argv)
	if err != nil {
		return nil, err
	}
	return decodeBoxes(string(out)), nil
}

// ImageToData returns box positions, confidences and line/page numbers
// for every layout element of the image (TSV output).
// The config var form works on tesseract 4.x as well, unlike the `tsv`
// configfile.
func ImageToData(ctx context.Context, in Input, opts ...Option) ([]Data, error) {
	o := NewOptions(append(opts, WithVar("tessedit_create_tsv", "1"))...)
	out, err := executeStdout(ctx, in, o)
	if err != nil {
		return nil, err
	}
	return decodeData(string(out)), nil
}

// ImageToOSD returns orientation and script detection information.
func ImageToOSD(ctx context.Context, in Input, opts ...Option) (OSD, error) {
	if err := in.validate(); err != nil {
		return OSD{}, err
	}
	o := NewOptions(opts...)
	argv := []string{in.token(), "stdout",
		"--dpi", strconv.Itoa(o.DPI), "--psm", "0", "--oem", strconv.Itoa(o.OEM)}
	ctx, cancel := o.context(ctx)
	defer cancel()
	out, _, err := execute(ctx, in, argv)
	if err != nil {
		return OSD{}, err
	}
	return decodeOSD(string(out)), nil
}

// Confidence returns the script confidence of an image (psm 0).
// The result is 0 when the engine reports none.
func Confidence(ctx context.Context, in Input, opts ...Option) (float64, error) {
	if err := in.validate(); err != nil {
		return 0, err
	}
	o := NewOptions(opts...)
	argv := []string{in.token(), "stdout", "-l", o.Lang,
		"--dpi", strconv.Itoa(o.DPI), "--psm", "0", "--oem", strconv.Itoa(o.OEM)}
	ctx, cancel := o.context(ctx)
	defer cancel()
	out, _, err := execute(ctx, in, argv)
	if err != nil {
		return 0, err
	}
	return matchFloat(scriptConfidenceRe, string(out)), nil
}

// Deskew returns the deskew angle of an image (psm 2). The angle is
// reported on stderr; 0 means no skew was detected.
func Deskew(ctx context.Context, in Input, opts ...Option) (float64, error) {
	if err := in.validate(); err != nil {
		return 0, err
	}
	o := NewOptions(opts...)
	argv := []string{in.token(), "stdout", "-l", o.Lang,
		"--dpi", strconv.Itoa(o.DPI), "--psm", "2", "--oem", strconv.Itoa(o.OEM)}
	ctx, cancel := o.context(ctx)
	defer cancel()
	_, stderr, err := execute(ctx, in, argv)
	if err != nil {
		return 0, err
	}
	return matchFloat(deskewAngleRe, string(stderr)), nil
}

// outputExts maps output configfile names to the file extensions
// Tesseract uses for them.
var outputExts = map[string]string{
	"txt":  ".txt",
	"hocr": ".hocr",
	"alto": ".xml",
	"pdf":  ".pdf",
	"tsv":  ".tsv",
}

// Run performs a single invocation producing multiple output formats at
// once. The outputs are written to a temporary directory; the returned map
// holds the produced file path per requested format. The caller must call
// the returned cleanup func to remove the directory.
func Run(ctx context.Context, in Input, basename string, formats []string, opts ...Option) (map[string]string, func(), error) {
	if err := in.validate(); err != nil {
		return nil, nil, err
	}
	if len(formats) == 0 {
		return nil, nil, fmt.Errorf("no output formats requested")
	}
	tmpDir, err := os.MkdirTemp("", "ocrs-")
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }
	o := NewOptions(opts...)
	base := filepath.Join(tmpDir, basename)
	argv := append([]string{in.token(), base}, o.args()...)
	argv = append(argv, formats...)
	ctx, cancel := o.context(ctx)
	defer cancel()
	if _, _, err := execute(ctx, in, argv); err != nil {
		cleanup()
		return nil, nil, err
	}
	produced := make(map[string]string, len(formats))
	for _, format := range formats {
		ext, ok := outputExts[format]
		if !ok {
			ext = "." + format
		}
		path := base + ext
		if _, err := os.Stat(path); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("output %q was not produced: %w", format, err)
		}
		produced[format] = path
	}
	return produced, cleanup, nil
}

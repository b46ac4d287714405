package tesseract

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Defaults applied to every operation unless overridden by an Option.
const (
	DefaultDPI     = 300
	DefaultPSM     = 3
	DefaultOEM     = 3
	DefaultTimeout = 30 * time.Second
)

// Options holds the per-invocation Tesseract settings.
type Options struct {
	DPI          int
	Lang         string
	PSM          int
	OEM          int
	Timeout      time.Duration
	UserWords    string
	UserPatterns string
	TessdataDir  string
	// Vars are passed as `-c name=value` config variables.
	Vars map[string]string
}

// Option modifies Options.
type Option func(*Options)

// WithDPI sets the image resolution in dots per inch.
func WithDPI(dpi int) Option {
	return func(o *Options) { o.DPI = dpi }
}

// WithLang sets the language(s), `+`-separated (e.g. "eng+por").
func WithLang(lang string) Option {
	return func(o *Options) { o.Lang = lang }
}

// WithPSM sets the page segmentation mode (0-13).
func WithPSM(psm int) Option {
	return func(o *Options) { o.PSM = psm }
}

// WithOEM sets the OCR engine mode (0-3).
func WithOEM(oem int) Option {
	return func(o *Options) { o.OEM = oem }
}

// WithTimeout bounds the subprocess runtime. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

// WithUserWords sets the location of a user words file.
func WithUserWords(path string) Option {
	return func(o *Options) { o.UserWords = path }
}

// WithUserPatterns sets the location of a user patterns file.
func WithUserPatterns(path string) Option {
	return func(o *Options) { o.UserPatterns = path }
}

// WithTessdataDir sets the directory holding traineddata files.
func WithTessdataDir(dir string) Option {
	return func(o *Options) { o.TessdataDir = dir }
}

// WithVar sets a Tesseract config variable (`-c name=value`).
func WithVar(name, value string) Option {
	return func(o *Options) {
		if o.Vars == nil {
			o.Vars = make(map[string]string)
		}
		o.Vars[name] = value
	}
}

// NewOptions returns Options populated with the package defaults,
// then modified by opts.
func NewOptions(opts ...Option) *Options {
	o := &Options{
		DPI:     DefaultDPI,
		Lang:    Languages,
		PSM:     DefaultPSM,
		OEM:     DefaultOEM,
		Timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// args renders the option flags in stable order. OSD-style calls build
// their own argv instead, as they omit the language and force their own
// segmentation mode.
func (o *Options) args() []string {
	a := make([]string, 0, 16)
	if o.Lang != "" {
		a = append(a, "-l", o.Lang)
	}
	if o.DPI > 0 {
		a = append(a, "--dpi", strconv.Itoa(o.DPI))
	}
	a = append(a, "--psm", strconv.Itoa(o.PSM), "--oem", strconv.Itoa(o.OEM))
	if o.UserWords != "" {
		a = append(a, "--user-words", o.UserWords)
	}
	if o.UserPatterns != "" {
		a = append(a, "--user-patterns", o.UserPatterns)
	}
	if o.TessdataDir != "" {
		a = append(a, "--tessdata-dir", o.TessdataDir)
	}
	for _, name := range sortedKeys(o.Vars) {
		a = append(a, "-c", name+"="+o.Vars[name])
	}
	return a
}

// Fingerprint returns a stable textual form of the options, suitable as
// part of a cache key.
func (o *Options) Fingerprint() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "l=%s;dpi=%d;psm=%d;oem=%d", o.Lang, o.DPI, o.PSM, o.OEM)
	for _, name := range sortedKeys(o.Vars) {
		fmt.Fprintf(&sb, ";%s=%s", name, o.Vars[name])
	}
	return sb.String()
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Package pdfproc implements the limited set of PDF operations this
// service needs: pulling embedded page images out for OCR and reading
// document metadata.
package pdfproc

import (
	"fmt"
	"io"
	"strconv"
	"time"

	pdfcpuapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Metadata summarizes a PDF document.
type Metadata struct {
	Author, Title, Subject string
	Created, Modified      time.Time
	PageCount              int
}

var pdfConf *model.Configuration

func init() {
	pdfConf = model.NewDefaultConfiguration()
}

// ExtractImages calls readFunc for every image embedded on the page with
// the given zero-based index.
func ExtractImages(rs io.ReadSeeker, pageIndex int, readFunc func(model.Image)) error {
	pageStr := []string{strconv.Itoa(pageIndex + 1)}
	return pdfcpuapi.ExtractImages(rs, pageStr, func(img model.Image, singleImgPerPage bool, maxPageDigits int) error {
		readFunc(img)
		return nil
	}, pdfConf)
}

// GetMetadata reads the document info dictionary and page count.
func GetMetadata(rs io.ReadSeeker) (Metadata, error) {
	info, err := pdfcpuapi.PDFInfo(rs, "", nil, nil)
	if err != nil {
		return Metadata{}, fmt.Errorf("reading PDF info: %w", err)
	}
	meta := Metadata{Author: info.Author, Title: info.Title, Subject: info.Subject, PageCount: info.PageCount}
	if mod, ok := types.DateTime(info.ModificationDate, true); ok {
		meta.Modified = mod
	}
	if created, ok := types.DateTime(info.CreationDate, true); ok {
		meta.Created = created
	}
	return meta, nil
}

package services

import (
	"bytes"
	"fmt"
	"strings"

	"tmm-bienestar/internal/api"
	"tmm-bienestar/internal/config"

	"github.com/disintegration/imaging"
)

// ReceiptProcessor validates receipt files before they leave the browser
// tier. The size limit is enforced here, not just stated in UI copy;
// oversized images are downscaled and re-encoded instead of being
// rejected outright, since phone photos of bank slips routinely blow past
// the limit.
type ReceiptProcessor struct {
	maxBytes int64
	maxDim   int
}

// NewReceiptProcessor creates a processor from the upload configuration.
func NewReceiptProcessor(cfg config.UploadConfig) *ReceiptProcessor {
	return &ReceiptProcessor{maxBytes: cfg.MaxReceiptBytes, maxDim: cfg.MaxImageDim}
}

// Prepare checks type and size and returns the upload-ready file. PDFs
// pass through untouched; images too large get downscaled to fit.
func (p *ReceiptProcessor) Prepare(file api.ReceiptUpload) (api.ReceiptUpload, error) {
	switch {
	case file.ContentType == "application/pdf":
		if int64(len(file.Data)) > p.maxBytes {
			return file, fmt.Errorf("el archivo supera el límite de %d MB", p.maxBytes/(1024*1024))
		}
		return file, nil
	case strings.HasPrefix(file.ContentType, "image/"):
		return p.prepareImage(file)
	default:
		return file, fmt.Errorf("formato no soportado: sube una imagen o un PDF")
	}
}

func (p *ReceiptProcessor) prepareImage(file api.ReceiptUpload) (api.ReceiptUpload, error) {
	img, err := imaging.Decode(bytes.NewReader(file.Data), imaging.AutoOrientation(true))
	if err != nil {
		return file, fmt.Errorf("no se pudo leer la imagen: %w", err)
	}

	bounds := img.Bounds()
	withinSize := int64(len(file.Data)) <= p.maxBytes
	withinDim := bounds.Dx() <= p.maxDim && bounds.Dy() <= p.maxDim
	if withinSize && withinDim {
		return file, nil
	}

	if !withinDim {
		img = imaging.Fit(img, p.maxDim, p.maxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return file, fmt.Errorf("no se pudo procesar la imagen: %w", err)
	}
	if int64(buf.Len()) > p.maxBytes {
		return file, fmt.Errorf("el archivo supera el límite de %d MB", p.maxBytes/(1024*1024))
	}

	file.Data = buf.Bytes()
	file.ContentType = "image/jpeg"
	if ext := strings.LastIndex(file.Filename, "."); ext > 0 {
		file.Filename = file.Filename[:ext] + ".jpg"
	} else {
		file.Filename += ".jpg"
	}
	return file, nil
}

package services

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"tmm-bienestar/internal/api"
	"tmm-bienestar/internal/config"

	"github.com/disintegration/imaging"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x += 10 {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestReceiptPDFPassesThrough(t *testing.T) {
	p := NewReceiptProcessor(config.UploadConfig{MaxReceiptBytes: 1024, MaxImageDim: 2000})

	in := api.ReceiptUpload{Filename: "comprobante.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4 ...")}
	out, err := p.Prepare(in)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if !bytes.Equal(out.Data, in.Data) || out.ContentType != "application/pdf" {
		t.Error("PDF must pass through untouched")
	}
}

func TestReceiptOversizedPDFRejected(t *testing.T) {
	p := NewReceiptProcessor(config.UploadConfig{MaxReceiptBytes: 10, MaxImageDim: 2000})

	in := api.ReceiptUpload{Filename: "comprobante.pdf", ContentType: "application/pdf", Data: make([]byte, 11)}
	if _, err := p.Prepare(in); err == nil {
		t.Error("Oversized PDF must be rejected")
	}
}

func TestReceiptUnknownTypeRejected(t *testing.T) {
	p := NewReceiptProcessor(config.UploadConfig{MaxReceiptBytes: 1024, MaxImageDim: 2000})

	in := api.ReceiptUpload{Filename: "datos.xlsx", ContentType: "application/vnd.ms-excel", Data: []byte("x")}
	if _, err := p.Prepare(in); err == nil {
		t.Error("Non image, non PDF uploads must be rejected")
	}
}

func TestReceiptSmallImagePassesThrough(t *testing.T) {
	p := NewReceiptProcessor(config.UploadConfig{MaxReceiptBytes: 5 * 1024 * 1024, MaxImageDim: 2000})

	data := pngBytes(t, 400, 300)
	in := api.ReceiptUpload{Filename: "comprobante.png", ContentType: "image/png", Data: data}
	out, err := p.Prepare(in)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if !bytes.Equal(out.Data, data) {
		t.Error("An image within limits must pass through unchanged")
	}
	if out.Filename != "comprobante.png" {
		t.Errorf("Filename must stay, got %q", out.Filename)
	}
}

func TestReceiptLargeImageDownscaled(t *testing.T) {
	p := NewReceiptProcessor(config.UploadConfig{MaxReceiptBytes: 5 * 1024 * 1024, MaxImageDim: 800})

	in := api.ReceiptUpload{Filename: "foto.png", ContentType: "image/png", Data: pngBytes(t, 2400, 1600)}
	out, err := p.Prepare(in)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	img, err := imaging.Decode(bytes.NewReader(out.Data))
	if err != nil {
		t.Fatalf("Output not decodable: %v", err)
	}
	if img.Bounds().Dx() > 800 || img.Bounds().Dy() > 800 {
		t.Errorf("Image not downscaled, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
	if out.ContentType != "image/jpeg" {
		t.Errorf("Re-encoded image should be JPEG, got %s", out.ContentType)
	}
	if !strings.HasSuffix(out.Filename, ".jpg") {
		t.Errorf("Filename should be rewritten to .jpg, got %q", out.Filename)
	}
}

func TestReceiptCorruptImageRejected(t *testing.T) {
	p := NewReceiptProcessor(config.UploadConfig{MaxReceiptBytes: 1024, MaxImageDim: 2000})

	in := api.ReceiptUpload{Filename: "roto.jpg", ContentType: "image/jpeg", Data: []byte("definitely not a jpeg")}
	if _, err := p.Prepare(in); err == nil {
		t.Error("Undecodable image must be rejected")
	}
}

package printshop

import (
	"context"
	"sync"
)

type recordingTelemetry struct {
	mu       sync.Mutex
	events   []string
	payloads []map[string]any
}

func (r *recordingTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	r.payloads = append(r.payloads, payload)
}

func (r *recordingTelemetry) has(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

var (
	pdfBytes  = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
	textBytes = []byte("just some notes, not a printable document")
)

func validOrderForm() OrderForm {
	return OrderForm{
		Name:        "Jane Doe",
		PhoneNumber: "5551234567",
		Documents:   []UploadedFile{NewUploadedFile("flyer.pdf", "application/pdf", pdfBytes)},
		Copies:      "3",
		PrintType:   string(PrintTypeBlackAndWhite),
	}
}

package printshop

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Order form field names as posted by the browser.
const (
	FieldName        = "name"
	FieldPhoneNumber = "phoneNumber"
	FieldDocument    = "document"
	FieldCopies      = "copies"
	FieldPrintType   = "printType"
)

// OrderFields lists the form fields in display order.
var OrderFields = []string{FieldName, FieldPhoneNumber, FieldDocument, FieldCopies, FieldPrintType}

// PrintType selects colour or monochrome output.
type PrintType string

const (
	PrintTypeColor         PrintType = "color"
	PrintTypeBlackAndWhite PrintType = "blackAndWhite"
)

// Label returns the human readable print type.
func (p PrintType) Label() string {
	switch p {
	case PrintTypeColor:
		return "Color"
	case PrintTypeBlackAndWhite:
		return "Black and White"
	default:
		return string(p)
	}
}

// AcceptedDocumentTypes are the MIME types allowed for uploads.
var AcceptedDocumentTypes = []string{"application/pdf", "image/jpeg", "image/png"}

// UploadedFile is a single uploaded document. ContentType is sniffed from
// the bytes; DeclaredType is what the browser sent.
type UploadedFile struct {
	Filename     string `json:"filename"`
	DeclaredType string `json:"declared_type,omitempty"`
	ContentType  string `json:"content_type"`
	Size         int64  `json:"size"`
	Data         []byte `json:"-"`
}

// NewUploadedFile builds a file reference and sniffs its content type.
func NewUploadedFile(filename, declaredType string, data []byte) UploadedFile {
	return UploadedFile{
		Filename:     filename,
		DeclaredType: declaredType,
		ContentType:  baseMediaType(mimetype.Detect(data).String()),
		Size:         int64(len(data)),
		Data:         data,
	}
}

func baseMediaType(ct string) string {
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = ct[:idx]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// OrderForm is the raw, untrusted form input.
type OrderForm struct {
	Name        string         `json:"name"`
	PhoneNumber string         `json:"phone_number"`
	Documents   []UploadedFile `json:"-"`
	Copies      string         `json:"copies"`
	PrintType   string         `json:"print_type"`
}

// DefaultOrderForm returns the values shown on a fresh form.
func DefaultOrderForm() OrderForm {
	return OrderForm{Copies: "1", PrintType: string(PrintTypeColor)}
}

// OrderSubmission is a fully validated order.
type OrderSubmission struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	PhoneNumber string       `json:"phone_number"`
	Document    UploadedFile `json:"document"`
	Copies      int          `json:"copies"`
	PrintType   PrintType    `json:"print_type"`
}

// FieldErrors maps a form field name to its error message.
type FieldErrors map[string]string

// Fields returns the failing field names sorted.
func (f FieldErrors) Fields() []string {
	out := make([]string, 0, len(f))
	for field := range f {
		out = append(out, field)
	}
	sort.Strings(out)
	return out
}

// ValidationError reports every failing field of an order form.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("printshop: order form invalid: %s", strings.Join(e.Fields.Fields(), ", "))
}

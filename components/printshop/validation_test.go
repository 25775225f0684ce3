package printshop

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderValidatorName(t *testing.T) {
	v := NewOrderValidator()
	assert.Equal(t, "Name must be at least 2 characters.", v.Name("").Message)
	assert.Equal(t, "Name must be at least 2 characters.", v.Name("J").Message)
	assert.True(t, v.Name("Jo").Valid())
	assert.Equal(t, "Jo", v.Name("Jo").Value)
}

func TestOrderValidatorPhoneNumber(t *testing.T) {
	v := NewOrderValidator()
	for _, bad := range []string{"", "555123456", "55512345678", "555-123-456", "55512345ab", " 5551234567"} {
		assert.Equal(t, "Invalid phone number. Must be 10 digits.", v.PhoneNumber(bad).Message, bad)
	}
	assert.True(t, v.PhoneNumber("5551234567").Valid())
}

func TestOrderValidatorCopies(t *testing.T) {
	v := NewOrderValidator()
	cases := map[string]string{
		"0":   "Number of copies must be at least 1.",
		"-1":  "Number of copies must be at least 1.",
		"101": "Maximum 100 copies allowed.",
		"2.5": "Number of copies must be a whole number.",
		"abc": "Number of copies must be a whole number.",
		"":    "Number of copies must be a whole number.",
		"NaN": "Number of copies must be a whole number.",
	}
	for raw, want := range cases {
		assert.Equal(t, want, v.Copies(raw).Message, raw)
	}

	for raw, want := range map[string]int{"1": 1, "100": 100, "42": 42, "7.0": 7} {
		res := v.Copies(raw)
		require.True(t, res.Valid(), raw)
		assert.Equal(t, want, res.Value, raw)
	}
}

func TestOrderValidatorDocument(t *testing.T) {
	v := NewOrderValidator()

	assert.Equal(t, "Document is required.", v.Document(nil).Message)
	assert.Equal(t, "Document is required.", v.Document([]UploadedFile{NewUploadedFile("empty.pdf", "application/pdf", nil)}).Message)
	assert.Equal(t, "Document is required.", v.Document([]UploadedFile{
		NewUploadedFile("a.pdf", "application/pdf", pdfBytes),
		NewUploadedFile("b.pdf", "application/pdf", pdfBytes),
	}).Message)

	for name, data := range map[string][]byte{"a.pdf": pdfBytes, "a.png": pngBytes, "a.jpg": jpegBytes} {
		res := v.Document([]UploadedFile{NewUploadedFile(name, "", data)})
		assert.True(t, res.Valid(), name)
		assert.Equal(t, name, res.Value.Filename)
	}

	// the declared type is ignored in favour of the sniffed bytes
	res := v.Document([]UploadedFile{NewUploadedFile("notes.pdf", "application/pdf", textBytes)})
	assert.Equal(t, "File must be a PDF, JPEG, or PNG.", res.Message)
}

func TestOrderValidatorPrintType(t *testing.T) {
	v := NewOrderValidator()
	assert.True(t, v.PrintType("color").Valid())
	assert.Equal(t, PrintTypeBlackAndWhite, v.PrintType("blackAndWhite").Value)
	assert.Equal(t, "Please select a print type.", v.PrintType("").Message)
	assert.Equal(t, "Please select a print type.", v.PrintType("sepia").Message)
}

func TestOrderValidatorValidate(t *testing.T) {
	v := NewOrderValidator()

	order, err := v.Validate(validOrderForm())
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", order.Name)
	assert.Equal(t, 3, order.Copies)
	assert.Equal(t, PrintTypeBlackAndWhite, order.PrintType)
	assert.Equal(t, "application/pdf", order.Document.ContentType)

	_, err = v.Validate(OrderForm{Copies: "0"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{FieldCopies, FieldDocument, FieldName, FieldPhoneNumber, FieldPrintType}, verr.Fields.Fields())
	assert.Equal(t, "Number of copies must be at least 1.", verr.Fields[FieldCopies])
	assert.Contains(t, verr.Error(), "order form invalid")
}

func TestDefaultOrderFormIsNotSubmittable(t *testing.T) {
	form := DefaultOrderForm()
	assert.Equal(t, "1", form.Copies)
	assert.Equal(t, string(PrintTypeColor), form.PrintType)

	_, err := NewOrderValidator().Validate(form)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.NotContains(t, verr.Fields, FieldCopies)
	assert.NotContains(t, verr.Fields, FieldPrintType)
}

func TestValidateOrderReturnsFieldErrors(t *testing.T) {
	order, errs := ValidateOrder(validOrderForm())
	assert.Nil(t, errs)
	assert.Equal(t, "5551234567", order.PhoneNumber)

	form := validOrderForm()
	form.PrintType = ""
	_, errs = ValidateOrder(form)
	assert.Equal(t, FieldErrors{FieldPrintType: "Please select a print type."}, errs)
}

package printshop

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/ettle/strcase"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// FieldResult is the outcome of a single field rule: either a parsed value
// or a message.
type FieldResult[T any] struct {
	Value   T
	Message string
}

// Valid reports whether the rule accepted the input.
func (r FieldResult[T]) Valid() bool {
	return r.Message == ""
}

type fieldRule struct {
	schema   map[string]any
	messages map[string]string
	fallback string
}

var orderFieldRules = map[string]fieldRule{
	FieldName: {
		schema:   map[string]any{"type": "string", "minLength": 2},
		fallback: "Name must be at least 2 characters.",
	},
	FieldPhoneNumber: {
		schema:   map[string]any{"type": "string", "pattern": "^[0-9]{10}$"},
		fallback: "Invalid phone number. Must be 10 digits.",
	},
	FieldDocument: {
		schema:   map[string]any{"type": "string", "enum": AcceptedDocumentTypes},
		fallback: "File must be a PDF, JPEG, or PNG.",
	},
	FieldCopies: {
		schema: map[string]any{"type": "integer", "minimum": 1, "maximum": 100},
		messages: map[string]string{
			"minimum": "Number of copies must be at least 1.",
			"maximum": "Maximum 100 copies allowed.",
		},
		fallback: "Number of copies must be a whole number.",
	},
	FieldPrintType: {
		schema:   map[string]any{"type": "string", "enum": []string{string(PrintTypeColor), string(PrintTypeBlackAndWhite)}},
		fallback: "Please select a print type.",
	},
}

const msgDocumentRequired = "Document is required."

// OrderValidator applies the order form rules. Each field is checked against
// its own compiled JSON schema so errors stay field scoped.
type OrderValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewOrderValidator builds a validator backed by jsonschema v5.
func NewOrderValidator() *OrderValidator {
	return &OrderValidator{compiled: make(map[string]*jsonschema.Schema)}
}

// Name requires at least two characters.
func (v *OrderValidator) Name(raw string) FieldResult[string] {
	if msg := v.check(FieldName, raw); msg != "" {
		return FieldResult[string]{Message: msg}
	}
	return FieldResult[string]{Value: raw}
}

// PhoneNumber requires exactly ten digits.
func (v *OrderValidator) PhoneNumber(raw string) FieldResult[string] {
	if msg := v.check(FieldPhoneNumber, raw); msg != "" {
		return FieldResult[string]{Message: msg}
	}
	return FieldResult[string]{Value: raw}
}

// Document requires exactly one PDF, JPEG or PNG file.
func (v *OrderValidator) Document(files []UploadedFile) FieldResult[UploadedFile] {
	if len(files) != 1 || files[0].Size == 0 {
		return FieldResult[UploadedFile]{Message: msgDocumentRequired}
	}
	if msg := v.check(FieldDocument, files[0].ContentType); msg != "" {
		return FieldResult[UploadedFile]{Message: msg}
	}
	return FieldResult[UploadedFile]{Value: files[0]}
}

// Copies requires a whole number between 1 and 100.
func (v *OrderValidator) Copies(raw string) FieldResult[int] {
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return FieldResult[int]{Message: orderFieldRules[FieldCopies].fallback}
	}
	if msg := v.check(FieldCopies, n); msg != "" {
		return FieldResult[int]{Message: msg}
	}
	return FieldResult[int]{Value: int(n)}
}

// PrintType requires one of the known print types.
func (v *OrderValidator) PrintType(raw string) FieldResult[PrintType] {
	if msg := v.check(FieldPrintType, raw); msg != "" {
		return FieldResult[PrintType]{Message: msg}
	}
	return FieldResult[PrintType]{Value: PrintType(raw)}
}

// Validate runs every field rule and returns the submission or a
// *ValidationError listing each failing field.
func (v *OrderValidator) Validate(form OrderForm) (OrderSubmission, error) {
	errs := FieldErrors{}
	name := v.Name(form.Name)
	collect(errs, FieldName, name.Message)
	phone := v.PhoneNumber(form.PhoneNumber)
	collect(errs, FieldPhoneNumber, phone.Message)
	document := v.Document(form.Documents)
	collect(errs, FieldDocument, document.Message)
	copies := v.Copies(form.Copies)
	collect(errs, FieldCopies, copies.Message)
	printType := v.PrintType(form.PrintType)
	collect(errs, FieldPrintType, printType.Message)
	if len(errs) > 0 {
		return OrderSubmission{}, &ValidationError{Fields: errs}
	}
	return OrderSubmission{
		Name:        name.Value,
		PhoneNumber: phone.Value,
		Document:    document.Value,
		Copies:      copies.Value,
		PrintType:   printType.Value,
	}, nil
}

var sharedValidator = NewOrderValidator()

// ValidateOrder validates form with a shared validator and returns either the
// submission or the failing fields.
func ValidateOrder(form OrderForm) (OrderSubmission, FieldErrors) {
	order, err := sharedValidator.Validate(form)
	var verr *ValidationError
	if errors.As(err, &verr) {
		return OrderSubmission{}, verr.Fields
	}
	return order, nil
}

func collect(errs FieldErrors, field, msg string) {
	if msg != "" {
		errs[field] = msg
	}
}

func (v *OrderValidator) check(field string, value any) string {
	rule := orderFieldRules[field]
	schema, err := v.schemaFor(field, rule)
	if err != nil {
		return rule.fallback
	}
	if err := schema.Validate(value); err != nil {
		if msg, ok := rule.messages[failedKeyword(err)]; ok {
			return msg
		}
		return rule.fallback
	}
	return ""
}

func (v *OrderValidator) schemaFor(field string, rule fieldRule) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[field]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	data, err := json.Marshal(rule.schema)
	if err != nil {
		return nil, fmt.Errorf("printshop: marshal schema %s: %w", field, err)
	}
	compiler := jsonschema.NewCompiler()
	name := strcase.ToSnake(field) + ".json"
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("printshop: load schema %s: %w", field, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("printshop: compile schema %s: %w", field, err)
	}
	v.mu.Lock()
	v.compiled[field] = compiled
	v.mu.Unlock()
	return compiled, nil
}

// failedKeyword returns the schema keyword of the deepest validation cause.
func failedKeyword(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return ""
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := ve.KeywordLocation
	if idx := strings.LastIndex(loc, "/"); idx >= 0 {
		return loc[idx+1:]
	}
	return loc
}

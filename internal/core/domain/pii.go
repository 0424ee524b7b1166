package domain

// MaskingRecord is the result of applying the PII redactor to a piece of
// text: the masked text plus a one-to-one placeholder -> original mapping.
// Records are request-scoped and never persisted.
type MaskingRecord struct {
	MaskedText string
	Mappings   map[string]string
}

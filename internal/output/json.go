package output

import (
	"encoding/json"

	"ddlsync/internal/core"
	"ddlsync/internal/extract"
	"ddlsync/internal/reconcile"
)

type jsonFormatter struct{}

func (jsonFormatter) FormatParse(r extract.Result) (string, error) {
	return marshalJSON(newParsePayload(FormatJSON, r))
}

func (jsonFormatter) FormatValidation(v extract.Validation) (string, error) {
	return marshalJSON(validationPayload{Format: string(FormatJSON), Valid: v.Valid, Errors: v.Errors})
}

func (jsonFormatter) FormatReconcile(r *reconcile.Result) (string, error) {
	return marshalJSON(newReconcilePayload(FormatJSON, r))
}

func (jsonFormatter) FormatTypes(d core.Dialect, types []core.ColumnType) (string, error) {
	return marshalJSON(newTypesPayload(FormatJSON, d, types))
}

func marshalJSON[T Payload](payload T) (string, error) {
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}

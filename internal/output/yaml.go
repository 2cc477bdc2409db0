package output

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"ddlsync/internal/core"
	"ddlsync/internal/extract"
	"ddlsync/internal/reconcile"
)

type yamlFormatter struct{}

func (yamlFormatter) FormatParse(r extract.Result) (string, error) {
	return marshalYAML(newParsePayload(FormatYAML, r))
}

func (yamlFormatter) FormatValidation(v extract.Validation) (string, error) {
	return marshalYAML(validationPayload{Format: string(FormatYAML), Valid: v.Valid, Errors: v.Errors})
}

func (yamlFormatter) FormatReconcile(r *reconcile.Result) (string, error) {
	return marshalYAML(newReconcilePayload(FormatYAML, r))
}

func (yamlFormatter) FormatTypes(d core.Dialect, types []core.ColumnType) (string, error) {
	return marshalYAML(newTypesPayload(FormatYAML, d, types))
}

func marshalYAML[T Payload](payload T) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(payload); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

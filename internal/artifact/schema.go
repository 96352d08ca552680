package artifact

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

var (
	schemasOnce sync.Once
	schemas     map[string]*gojsonschema.Schema
	schemasErr  error
)

// schemaFiles maps each artifact file to the schema it must satisfy.
var schemaFiles = map[string]string{
	ModelFile:             "schemas/rf_sla_model.schema.json",
	EncodersFile:          "schemas/label_encoders.schema.json",
	ScalerFile:            "schemas/minmax_scaler.schema.json",
	FeatureNamesFile:      "schemas/feature_names.schema.json",
	ThresholdFile:         "schemas/best_threshold.schema.json",
	FeatureImportanceFile: "schemas/feature_importances.schema.json",
}

func compileSchemas() (map[string]*gojsonschema.Schema, error) {
	schemasOnce.Do(func() {
		compiled := make(map[string]*gojsonschema.Schema, len(schemaFiles))
		for file, path := range schemaFiles {
			raw, err := schemaFS.ReadFile(path)
			if err != nil {
				schemasErr = fmt.Errorf("failed to read schema for %s: %w", file, err)
				return
			}
			schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
			if err != nil {
				schemasErr = fmt.Errorf("failed to compile schema for %s: %w", file, err)
				return
			}
			compiled[file] = schema
		}
		schemas = compiled
	})
	return schemas, schemasErr
}

// validateSchema checks data against the schema registered for file.
func validateSchema(file string, data []byte) error {
	compiled, err := compileSchemas()
	if err != nil {
		return err
	}

	schema, ok := compiled[file]
	if !ok {
		return nil
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return invalid(file, "not valid JSON: %v", err)
	}
	if result.Valid() {
		return nil
	}

	reasons := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		reasons = append(reasons, desc.String())
	}
	return invalid(file, "%s", strings.Join(reasons, "; "))
}

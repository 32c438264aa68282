package questionapi

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/kirillkom/question-paper-analyzer/internal/core/domain"
)

//go:embed openapi.yaml
var contractSpec []byte

const (
	schemaUpload  = "UploadResponse"
	schemaSummary = "SummaryResponse"
	schemaAnswer  = "AnswerResponse"
	schemaVideo   = "VideoResponse"
)

var (
	contractOnce sync.Once
	contractDoc  *openapi3.T
	contractErr  error
)

// Contract returns the parsed service contract. It is loaded and validated
// once per process.
func Contract() (*openapi3.T, error) {
	contractOnce.Do(func() {
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromData(contractSpec)
		if err != nil {
			contractErr = fmt.Errorf("load service contract: %w", err)
			return
		}
		if err := doc.Validate(context.Background()); err != nil {
			contractErr = fmt.Errorf("validate service contract: %w", err)
			return
		}
		contractDoc = doc
	})
	return contractDoc, contractErr
}

// validateBody checks a generically decoded JSON body against a named schema.
func validateBody(operation, schema string, body any) error {
	doc, err := Contract()
	if err != nil {
		return domain.WrapError(domain.ErrContract, operation, err)
	}
	ref, ok := doc.Components.Schemas[schema]
	if !ok || ref.Value == nil {
		return domain.WrapError(domain.ErrContract, operation, fmt.Errorf("schema %s missing", schema))
	}
	if err := ref.Value.VisitJSON(body); err != nil {
		return domain.WrapError(domain.ErrContract, operation, err)
	}
	return nil
}

package handler

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/faciam-dev/gforms/pkg/formschema"
	"github.com/faciam-dev/gforms/pkg/renderpolicy"
)

// fieldTypeInfo describes one supported field type and its default widget.
type fieldTypeInfo struct {
	Type          string   `json:"type"`
	DefaultWidget string   `json:"default_widget"`
	HasOptions    bool     `json:"has_options"`
	Widgets       []string `json:"widgets,omitempty"`
}

type fieldTypesOutput struct {
	Body struct {
		Items []fieldTypeInfo `json:"items"`
	}
}

// MetadataHandler serves the static vocabulary clients build schema editors
// from.
type MetadataHandler struct {
	Policy *renderpolicy.Store
}

func RegisterMetadata(api huma.API, h *MetadataHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "listFieldTypes",
		Method:      http.MethodGet,
		Path:        "/v1/metadata/field-types",
		Summary:     "List supported field types",
		Tags:        []string{"Metadata"},
	}, h.listFieldTypes)
}

var fieldTypes = []string{
	formschema.TypeText,
	formschema.TypeNumber,
	formschema.TypeTextarea,
	formschema.TypeSelect,
	formschema.TypeCheckbox,
	formschema.TypeDate,
}

func (h *MetadataHandler) listFieldTypes(ctx context.Context, _ *struct{}) (*fieldTypesOutput, error) {
	out := &fieldTypesOutput{}
	for _, t := range fieldTypes {
		info := fieldTypeInfo{
			Type:          t,
			DefaultWidget: formschema.DefaultWidget(t),
			HasOptions:    t == formschema.TypeSelect,
		}
		if h.Policy != nil {
			info.Widgets = h.Policy.Get().Suggest(renderpolicy.Ctx{Type: t})
		}
		out.Body.Items = append(out.Body.Items, info)
	}
	return out, nil
}

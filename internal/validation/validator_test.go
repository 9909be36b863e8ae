package validation_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gameshelfapp/gameshelf-server/internal/errors"
	"github.com/gameshelfapp/gameshelf-server/internal/validation"
)

type scoreRequest struct {
	WeightFactor float64 `json:"weight_factor" validate:"gte=0"`
	TagsPerGame  int     `json:"tags_per_game" validate:"gte=0,lte=100"`
	Language     string  `json:"language" validate:"omitempty,storelang"`
	Name         string  `json:"name" validate:"required"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	req := scoreRequest{
		WeightFactor: 2.5,
		TagsPerGame:  20,
		Language:     "english",
		Name:         "default",
	}

	assert.NoError(t, v.Validate(req))
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	//nolint:govet // fieldalignment: Minor memory optimization not worth the complexity in test code
	tests := []struct {
		name        string
		req         scoreRequest
		wantErrCode int
		wantErrMsg  string
	}{
		{
			name: "missing required field",
			req: scoreRequest{
				WeightFactor: 1,
				TagsPerGame:  10,
				Name:         "", // Missing
			},
			wantErrCode: http.StatusBadRequest,
			wantErrMsg:  "validation failed",
		},
		{
			name: "negative weight factor",
			req: scoreRequest{
				WeightFactor: -1,
				TagsPerGame:  10,
				Name:         "default",
			},
			wantErrCode: http.StatusBadRequest,
			wantErrMsg:  "validation failed",
		},
		{
			name: "tags per game over limit",
			req: scoreRequest{
				WeightFactor: 1,
				TagsPerGame:  500,
				Name:         "default",
			},
			wantErrCode: http.StatusBadRequest,
			wantErrMsg:  "validation failed",
		},
		{
			name: "unsupported language",
			req: scoreRequest{
				WeightFactor: 1,
				TagsPerGame:  10,
				Language:     "klingon",
				Name:         "default",
			},
			wantErrCode: http.StatusBadRequest,
			wantErrMsg:  "validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			assert.Error(t, err)

			var domainErr *errors.Error
			if assert.ErrorAs(t, err, &domainErr) {
				assert.Equal(t, tt.wantErrCode, domainErr.HTTPStatus())
				assert.Contains(t, domainErr.Message, tt.wantErrMsg)
			}
		})
	}
}

func TestValidator_StoreLangAcceptsAliases(t *testing.T) {
	v := validation.New()

	for _, code := range []string{"english", "schinese", "zh-Hans", "pt-BR", "system"} {
		req := scoreRequest{WeightFactor: 1, TagsPerGame: 1, Language: code, Name: "default"}
		assert.NoError(t, v.Validate(req), "language %q should validate", code)
	}
}

func TestValidator_FieldDetails(t *testing.T) {
	v := validation.New()

	req := scoreRequest{
		WeightFactor: 1,
		TagsPerGame:  10,
		Name:         "",
	}

	err := v.Validate(req)
	assert.Error(t, err)

	// Details keyed by JSON tag name "name", not struct field name "Name".
	var domainErr *errors.Error
	if assert.ErrorAs(t, err, &domainErr) {
		details, ok := domainErr.Details.(map[string]string)
		if assert.True(t, ok) {
			assert.Contains(t, details, "name")
			assert.NotContains(t, details, "Name")
		}
	}
}

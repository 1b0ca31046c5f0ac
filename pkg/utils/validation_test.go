package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleRequest struct {
	Name  string  `validate:"required,max=8"`
	Type  string  `validate:"omitempty,oneof=text image"`
	Width float64 `validate:"gt=0"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		input   sampleRequest
		wantErr string
	}{
		{"valid", sampleRequest{Name: "deck", Type: "text", Width: 10}, ""},
		{"missing name", sampleRequest{Width: 1}, "name is required"},
		{"bad type", sampleRequest{Name: "a", Type: "video", Width: 1}, "type must be one of: text image"},
		{"zero width", sampleRequest{Name: "a"}, "width must be greater than 0"},
		{"too long", sampleRequest{Name: "presentation", Width: 1}, "name must be at most 8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

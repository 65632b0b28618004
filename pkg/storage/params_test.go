package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseS3Params(t *testing.T) {
	tests := []struct {
		name    string
		input   map[string]any
		want    *S3Params
		wantErr bool
	}{
		{
			name:  "nil params returns empty struct",
			input: nil,
			want:  &S3Params{},
		},
		{
			name: "full params",
			input: map[string]any{
				"region":            "eu-central-1",
				"endpoint":          "http://localhost:9000",
				"access_key_id":     "AKIA123",
				"secret_access_key": "shh",
				"use_path_style":    true,
			},
			want: &S3Params{
				Region:          "eu-central-1",
				Endpoint:        "http://localhost:9000",
				AccessKeyID:     "AKIA123",
				SecretAccessKey: "shh",
				UsePathStyle:    true,
			},
		},
		{
			name: "wrong type errors",
			input: map[string]any{
				"use_path_style": "not-a-bool",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseS3Params(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAzureParams(t *testing.T) {
	got, err := ParseAzureParams(map[string]any{
		"account_name": "quarrydata",
		"sas_token":    "sv=2024",
	})
	require.NoError(t, err)
	assert.Equal(t, "quarrydata", got.AccountName)
	assert.Equal(t, "sv=2024", got.SASToken)
	assert.Empty(t, got.AccountKey)
}

func TestS3ParamsValidate(t *testing.T) {
	assert.Error(t, (&S3Params{}).Validate())
	assert.NoError(t, (&S3Params{Region: "us-east-1"}).Validate())
	assert.NoError(t, (&S3Params{Endpoint: "http://localhost:9000"}).Validate())
}

func TestAzureParamsValidate(t *testing.T) {
	assert.Error(t, (&AzureParams{}).Validate())
	assert.NoError(t, (&AzureParams{AccountName: "quarrydata"}).Validate())
}

package storage

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// S3Params holds the S3 provider settings stored in a connection's params
// map. Parsed from the raw map using mapstructure.
type S3Params struct {
	// Region of the bucket (e.g., "eu-central-1")
	Region string `mapstructure:"region"`

	// Endpoint for S3-compatible services (MinIO, etc.)
	Endpoint string `mapstructure:"endpoint,omitempty"`

	// AccessKeyID and SecretAccessKey; usually injected via ${VAR} expansion
	AccessKeyID     string `mapstructure:"access_key_id,omitempty"`
	SecretAccessKey string `mapstructure:"secret_access_key,omitempty"`

	// UsePathStyle forces path-style addressing (needed by most
	// S3-compatible endpoints)
	UsePathStyle bool `mapstructure:"use_path_style,omitempty"`
}

// Validate checks the fields a working S3 connection needs.
func (p *S3Params) Validate() error {
	if p.Region == "" && p.Endpoint == "" {
		return fmt.Errorf("s3 params need a region or an endpoint")
	}
	return nil
}

// AzureParams holds the Azure Blob Storage settings stored in a
// connection's params map.
type AzureParams struct {
	// AccountName of the storage account
	AccountName string `mapstructure:"account_name"`

	// AccountKey or SASToken; one of the two authenticates the account
	AccountKey string `mapstructure:"account_key,omitempty"`
	SASToken   string `mapstructure:"sas_token,omitempty"`

	// Endpoint override (Azurite, sovereign clouds)
	Endpoint string `mapstructure:"endpoint,omitempty"`
}

// Validate checks the fields a working Azure connection needs.
func (p *AzureParams) Validate() error {
	if p.AccountName == "" {
		return fmt.Errorf("azure params need an account_name")
	}
	return nil
}

// ParseS3Params decodes a connection's raw params map.
// A nil map yields an empty struct.
func ParseS3Params(params map[string]any) (*S3Params, error) {
	var p S3Params
	if params == nil {
		return &p, nil
	}
	if err := mapstructure.Decode(params, &p); err != nil {
		return nil, fmt.Errorf("invalid s3 params: %w", err)
	}
	return &p, nil
}

// ParseAzureParams decodes a connection's raw params map.
// A nil map yields an empty struct.
func ParseAzureParams(params map[string]any) (*AzureParams, error) {
	var p AzureParams
	if params == nil {
		return &p, nil
	}
	if err := mapstructure.Decode(params, &p); err != nil {
		return nil, fmt.Errorf("invalid azure params: %w", err)
	}
	return &p, nil
}
